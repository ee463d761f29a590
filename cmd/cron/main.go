package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/database"
	"github.com/qs3c/prv_line_server/internal/pkg/cron"
	"github.com/qs3c/prv_line_server/internal/pkg/lock"
	"github.com/qs3c/prv_line_server/internal/pkg/metrics"
	"github.com/qs3c/prv_line_server/internal/pkg/pubsub"
	"github.com/qs3c/prv_line_server/internal/repository"
	"github.com/qs3c/prv_line_server/internal/service"
)

var once = flag.Bool("once", false, "Run the diamond expiry sweep once and exit")

func main() {
	flag.Parse()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Server.Mode)

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		slog.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	m := metrics.Default()
	ledger := service.NewLedger(
		db,
		lock.NewLocker(rdb, time.Duration(cfg.Privilege.LockExpirySeconds)*time.Second, m),
		pubsub.NewPublisher(rdb),
		m,
	)
	privilegeService := service.NewPrivilegeService(
		ledger,
		repository.NewUserRepository(db),
		repository.NewPrivilegeRepository(db),
		repository.NewExpenseRepository(db),
	)

	scheduler := cron.NewService(privilegeService, cfg.Cron.DiamondSweepSpec)

	if *once {
		n, err := scheduler.RunNow(context.Background())
		if err != nil {
			slog.Error("diamond expiry sweep failed", "error", err)
			os.Exit(1)
		}
		slog.Info("diamond expiry sweep finished", "downgraded", n)
		return
	}

	if err := scheduler.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	slog.Info("received shutdown signal, waiting for running jobs")
	<-scheduler.Stop().Done()
	slog.Info("scheduler stopped")
}

func setupLogger(mode string) {
	var h slog.Handler
	if mode == "release" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}
