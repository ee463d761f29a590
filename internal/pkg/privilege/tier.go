package privilege

import "time"

// Tier 会员等级
type Tier string

const (
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
)

// 年度累计消费阈值
const (
	GoldThreshold     int64 = 50000
	PlatinumThreshold int64 = 100000
)

// MembershipTermYears 会员有效期（年），License 与新建账户共用
const MembershipTermYears = 1

// Valid 是否为已知等级
func (t Tier) Valid() bool {
	switch t {
	case TierSilver, TierGold, TierPlatinum, TierDiamond:
		return true
	}
	return false
}

// ComputeTier 根据年度累计消费计算等级。
// Diamond 在有效期内保持不变，过期后回落到消费阶梯；
// 消费阶梯本身永远不会产生 Diamond。
func ComputeTier(current Tier, totalAmountPerYear int64, now, expiryDate time.Time) Tier {
	if current == TierDiamond && !now.After(expiryDate) {
		return TierDiamond
	}

	switch {
	case totalAmountPerYear < GoldThreshold:
		return TierSilver
	case totalAmountPerYear < PlatinumThreshold:
		return TierGold
	default:
		return TierPlatinum
	}
}

// ExpiryFrom 从 t 起算的会员到期时间
func ExpiryFrom(t time.Time) time.Time {
	return t.AddDate(MembershipTermYears, 0, 0)
}
