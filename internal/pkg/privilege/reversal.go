package privilege

// Balance 账户中参与回退计算的字段
type Balance struct {
	CurrentAmount      int64
	TotalAmountPerYear int64
	CurrentPoint       int64
}

// Reversal 单条消费记录的回退输入
type Reversal struct {
	Amount       int64
	PointsEarned int64
	TierAtTime   Tier
}

// Reverse 计算删除一条消费记录后的余额。
// legacy 为 true 时余额按固定 150 取模回退，否则按记录当时等级的兑换比例。
// CurrentAmount 与 CurrentPoint 不会小于 0；等级不在此重新计算。
func Reverse(b Balance, r Reversal, legacy bool) Balance {
	divisor := LegacyReversalDivisor
	if !legacy {
		divisor = RateFor(r.TierAtTime)
	}

	out := Balance{
		TotalAmountPerYear: b.TotalAmountPerYear - r.Amount,
		CurrentAmount:      b.CurrentAmount - r.Amount%divisor,
		CurrentPoint:       b.CurrentPoint - r.PointsEarned,
	}
	if out.CurrentAmount < 0 {
		out.CurrentAmount = 0
	}
	if out.CurrentPoint < 0 {
		out.CurrentPoint = 0
	}
	return out
}
