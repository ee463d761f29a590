package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/database"
	"github.com/qs3c/prv_line_server/internal/pkg/email"
	"github.com/qs3c/prv_line_server/internal/pkg/queue"
	"github.com/qs3c/prv_line_server/internal/worker"
)

func main() {
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

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		slog.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("redis connected")

	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	mailer := worker.NewMailer(mailQueue, email.NewService(&cfg.Email))

	// 创建 context 用于优雅关闭
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("mail worker started", "queue", cfg.Queue.MailQueue, "workers", cfg.Queue.MaxWorkers)
	mailer.Run(ctx, cfg.Queue.MaxWorkers)
	slog.Info("mail worker shutdown complete")
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
