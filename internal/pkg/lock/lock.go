package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"

	"github.com/qs3c/prv_line_server/internal/pkg/metrics"
)

const userLockPrefix = "privilege:lock:"

var ErrLockFailed = errors.New("failed to acquire lock")

// UserKey 单个用户会员账户的锁 key
func UserKey(userID int64) string {
	return fmt.Sprintf("%s%d", userLockPrefix, userID)
}

// Locker 基于 redsync 的分布式互斥锁
type Locker struct {
	sync    *redsync.Redsync
	expiry  time.Duration
	metrics *metrics.PrivilegeMetrics
}

// NewLocker 创建 Locker，m 可为 nil
func NewLocker(rdb *redis.Client, expiry time.Duration, m *metrics.PrivilegeMetrics) *Locker {
	if expiry <= 0 {
		expiry = 5 * time.Second
	}
	return &Locker{
		sync:    redsync.New(goredis.NewPool(rdb)),
		expiry:  expiry,
		metrics: m,
	}
}

// Lock 获取锁，返回的 unlock 必须调用
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	mutex := l.sync.NewMutex(key, redsync.WithExpiry(l.expiry))

	if err := mutex.LockContext(ctx); err != nil {
		l.observe("failed", start)
		slog.Error("acquire lock failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrLockFailed, key)
	}
	l.observe("success", start)

	return func() {
		// 解锁使用独立 context，请求取消后也要释放
		if ok, err := mutex.UnlockContext(context.Background()); !ok || err != nil {
			slog.Warn("release lock failed", "key", key, "error", err)
		}
	}, nil
}

func (l *Locker) observe(result string, start time.Time) {
	if l.metrics == nil {
		return
	}
	l.metrics.LockAcquireTotal.WithLabelValues(result).Inc()
	l.metrics.LockAcquireDuration.Observe(time.Since(start).Seconds())
}
