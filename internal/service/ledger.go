package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/pkg/lock"
	"github.com/qs3c/prv_line_server/internal/pkg/metrics"
	"github.com/qs3c/prv_line_server/internal/pkg/privilege"
	"github.com/qs3c/prv_line_server/internal/pkg/pubsub"
	"github.com/qs3c/prv_line_server/internal/repository"
)

// Ledger 会员账户写操作的公共部分：用户锁、事务、账户行锁和变更通知。
// locker、publisher、metrics 均可为 nil。
type Ledger struct {
	db        *gorm.DB
	locker    *lock.Locker
	publisher *pubsub.Publisher
	metrics   *metrics.PrivilegeMetrics
	now       func() time.Time
}

func NewLedger(db *gorm.DB, locker *lock.Locker, publisher *pubsub.Publisher, m *metrics.PrivilegeMetrics) *Ledger {
	return &Ledger{
		db:        db,
		locker:    locker,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// Now 当前 UTC 时间
func (l *Ledger) Now() time.Time {
	return l.now().UTC()
}

// Run 在用户锁内开启事务执行 fn，fn 返回错误时整体回滚
func (l *Ledger) Run(ctx context.Context, userID int64, fn func(tx *gorm.DB) error) error {
	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, lock.UserKey(userID))
		if err != nil {
			return err
		}
		defer unlock()
	}

	return l.db.WithContext(ctx).Transaction(fn)
}

// lockOrCreate 读取并锁定用户账户，不存在时先插入默认账户
func (l *Ledger) lockOrCreate(ctx context.Context, tx *gorm.DB, userID int64) (*model.Privilege, error) {
	repo := repository.NewPrivilegeRepository(tx)

	p, err := repo.GetByUserIDForUpdate(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := repo.CreateIfAbsent(ctx, newDefaultPrivilege(userID, l.Now()))
	if err != nil {
		return nil, err
	}
	if created {
		slog.Info("privilege created", "user_id", userID)
	}

	return repo.GetByUserIDForUpdate(ctx, userID)
}

// newDefaultPrivilege Silver，余额为 0，有效期一年
func newDefaultPrivilege(userID int64, now time.Time) *model.Privilege {
	return &model.Privilege{
		UserID:     userID,
		Tier:       string(privilege.TierSilver),
		ExpiryDate: privilege.ExpiryFrom(now),
	}
}

// notify 事务提交后推送账户变化，失败只记录日志
func (l *Ledger) notify(ctx context.Context, eventType, reason string, p *model.Privilege) {
	if l.publisher == nil || p == nil {
		return
	}

	evt := &pubsub.PrivilegeEvent{
		Type:         eventType,
		UserID:       p.UserID,
		Tier:         p.Tier,
		CurrentPoint: p.CurrentPoint,
		ExpiryDate:   p.ExpiryDate.Format(time.RFC3339),
		Reason:       reason,
	}
	if err := l.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("publish privilege event failed", "user_id", p.UserID, "reason", reason, "error", err)
	}
}

func (l *Ledger) observeTierChange(from, to string) {
	if l.metrics == nil || from == to {
		return
	}
	l.metrics.TierChangeTotal.WithLabelValues(from, to).Inc()
}
