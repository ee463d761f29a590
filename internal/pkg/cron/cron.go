package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 10 * time.Minute

// DiamondSweeper 将已过期的 Diamond 会员降级
type DiamondSweeper interface {
	SweepExpiredDiamonds(ctx context.Context) (int64, error)
}

type Service struct {
	scheduler *cron.Cron
	sweeper   DiamondSweeper
	spec      string
}

// NewService spec 为带秒的 cron 表达式，例如 "0 5 0 * * *"
func NewService(sweeper DiamondSweeper, spec string) *Service {
	return &Service{
		scheduler: cron.New(cron.WithSeconds()),
		sweeper:   sweeper,
		spec:      spec,
	}
}

// Start 注册任务并启动调度
func (s *Service) Start() error {
	if _, err := s.scheduler.AddFunc(s.spec, s.sweep); err != nil {
		return fmt.Errorf("invalid diamond sweep spec %q: %w", s.spec, err)
	}
	s.scheduler.Start()
	slog.Info("[CRON] scheduler started", "diamond_sweep", s.spec)
	return nil
}

// Stop 停止调度，返回的 context 在运行中的任务结束后关闭
func (s *Service) Stop() context.Context {
	return s.scheduler.Stop()
}

// RunNow 立即执行一次降级扫描
func (s *Service) RunNow(ctx context.Context) (int64, error) {
	return s.sweeper.SweepExpiredDiamonds(ctx)
}

func (s *Service) sweep() {
	slog.Info("[CRON] starting diamond expiry sweep")
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweeper.SweepExpiredDiamonds(ctx)
	if err != nil {
		slog.Error("[CRON] diamond expiry sweep failed", "error", err)
		return
	}
	slog.Info("[CRON] diamond expiry sweep finished", "downgraded", n)
}
