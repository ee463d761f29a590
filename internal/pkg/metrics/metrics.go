package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrivilegeMetrics 会员积分相关指标
type PrivilegeMetrics struct {
	// 消费记录
	ExpenseTotal    *prometheus.CounterVec   // 消费录入/删除次数（按操作、结果）
	ExpenseAmount   *prometheus.CounterVec   // 消费金额（按等级）
	ExpenseDuration *prometheus.HistogramVec // 消费处理耗时（按操作）

	// 积分
	PointsEarnedTotal   *prometheus.CounterVec // 发放积分（按等级）
	PointsRedeemedTotal prometheus.Counter     // 兑换消耗积分
	RedemptionTotal     *prometheus.CounterVec // 兑换次数（按结果）

	// 等级与 License
	TierChangeTotal     *prometheus.CounterVec // 等级变化（按原等级、新等级）
	LicenseIssuedTotal  prometheus.Counter     // License 发放数
	DiamondExpiredTotal prometheus.Counter     // Diamond 到期降级数

	// 分布式锁
	LockAcquireTotal    *prometheus.CounterVec // 锁获取总数（按结果）
	LockAcquireDuration prometheus.Histogram   // 锁获取耗时
}

// NewPrivilegeMetrics 在给定 Registerer 上注册指标，reg 为 nil 时使用默认 Registerer
func NewPrivilegeMetrics(reg prometheus.Registerer) *PrivilegeMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrivilegeMetrics{
		ExpenseTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "privilege_expense_total",
				Help: "Total number of expense operations",
			},
			[]string{"op", "result"}, // op: add/delete, result: success/failed
		),
		ExpenseAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "privilege_expense_amount_total",
				Help: "Sum of recorded expense amounts",
			},
			[]string{"tier"},
		),
		ExpenseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "privilege_expense_duration_seconds",
				Help:    "Duration of expense operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),

		PointsEarnedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "privilege_points_earned_total",
				Help: "Total points credited to members",
			},
			[]string{"tier"},
		),
		PointsRedeemedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "privilege_points_redeemed_total",
				Help: "Total points spent on rewards",
			},
		),
		RedemptionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "privilege_redemption_total",
				Help: "Total number of reward redemptions",
			},
			[]string{"result"},
		),

		TierChangeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "privilege_tier_change_total",
				Help: "Total number of tier transitions",
			},
			[]string{"from", "to"},
		),
		LicenseIssuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "privilege_license_issued_total",
				Help: "Total number of licenses issued",
			},
		),
		DiamondExpiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "privilege_diamond_expired_total",
				Help: "Total number of Diamond memberships that lapsed",
			},
		),

		LockAcquireTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "privilege_lock_acquire_total",
				Help: "Total number of lock acquisition attempts",
			},
			[]string{"result"}, // result: success/failed
		),
		LockAcquireDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "privilege_lock_acquire_duration_seconds",
				Help:    "Duration of lock acquisition",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),
	}
}

var (
	defaultMetrics *PrivilegeMetrics
	once           sync.Once
)

// Default 获取注册在默认 Registerer 上的全局指标实例
func Default() *PrivilegeMetrics {
	once.Do(func() {
		defaultMetrics = NewPrivilegeMetrics(nil)
	})
	return defaultMetrics
}
