package privilege

// 每 1 积分所需消费金额
var pointRates = map[Tier]int64{
	TierDiamond:  80,
	TierPlatinum: 100,
	TierGold:     130,
	TierSilver:   150,
}

// LegacyReversalDivisor 旧版删除消费时使用的固定除数
const LegacyReversalDivisor int64 = 150

// RateFor 返回等级对应的兑换比例，未知等级按 Silver 处理
func RateFor(tier Tier) int64 {
	if rate, ok := pointRates[tier]; ok {
		return rate
	}
	return pointRates[TierSilver]
}

// Accrue 将上次余额与本次消费合并换算积分。
// 调用方需传入本次消费后重新计算的等级。
func Accrue(currentRemainder, spendAmount int64, tier Tier) (pointsEarned, newRemainder int64) {
	rate := RateFor(tier)
	total := currentRemainder + spendAmount
	return total / rate, total % rate
}
