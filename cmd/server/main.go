package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/api"
	"github.com/qs3c/prv_line_server/internal/api/handler"
	"github.com/qs3c/prv_line_server/internal/database"
	"github.com/qs3c/prv_line_server/internal/pkg/lock"
	"github.com/qs3c/prv_line_server/internal/pkg/metrics"
	"github.com/qs3c/prv_line_server/internal/pkg/oauth"
	"github.com/qs3c/prv_line_server/internal/pkg/oss"
	"github.com/qs3c/prv_line_server/internal/pkg/otp"
	"github.com/qs3c/prv_line_server/internal/pkg/pubsub"
	"github.com/qs3c/prv_line_server/internal/pkg/queue"
	"github.com/qs3c/prv_line_server/internal/pkg/ws"
	"github.com/qs3c/prv_line_server/internal/repository"
	"github.com/qs3c/prv_line_server/internal/service"
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

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		slog.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	slog.Info("redis connected")

	// 初始化 OSS（可选）
	var storage service.ImageStorage
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			slog.Warn("failed to init OSS client, product images disabled", "error", err)
		} else {
			storage = ossClient
			slog.Info("OSS client initialized")
		}
	}

	// 基础组件
	m := metrics.Default()
	locker := lock.NewLocker(rdb, time.Duration(cfg.Privilege.LockExpirySeconds)*time.Second, m)
	publisher := pubsub.NewPublisher(rdb)
	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	otpStore := otp.NewStore(
		rdb,
		time.Duration(cfg.OTP.TTLMinutes)*time.Minute,
		time.Duration(cfg.OTP.ResendCooldownSeconds)*time.Second,
		cfg.OTP.MaxAttempts,
	)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	pdpaRepo := repository.NewPdpaRepository(db)
	privilegeRepo := repository.NewPrivilegeRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	productRepo := repository.NewProductRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)

	// 初始化 Service
	ledger := service.NewLedger(db, locker, publisher, m)
	authService := service.NewAuthService(userRepo, cfg, oauth.NewStateStore(rdb))
	userService := service.NewUserService(userRepo)
	pdpaService := service.NewPdpaService(userRepo, pdpaRepo)
	otpService := service.NewOTPService(userRepo, otpStore, mailQueue, publisher, cfg.OTP.Length)
	privilegeService := service.NewPrivilegeService(ledger, userRepo, privilegeRepo, expenseRepo)
	expenseService := service.NewExpenseService(ledger, userRepo, expenseRepo, cfg.Privilege.LegacyReversal)
	rewardService := service.NewRewardService(ledger, privilegeService, productRepo, redemptionRepo, storage, cfg.Upload)

	// WebSocket Hub，账户变化经 Redis 广播后推送到各实例上的连接
	wsHub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := pubsub.NewSubscriber(rdb).Subscribe(ctx, wsHub.DispatchPrivilegeEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("privilege event subscription stopped", "error", err)
		}
	}()

	// 初始化 Handler
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService, pdpaService, otpService),
		handler.NewPrivilegeHandler(privilegeService),
		handler.NewRewardHandler(rewardService),
		handler.NewAdminHandler(expenseService, privilegeService, rewardService),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret),
		userService,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := rdb.Close(); err != nil {
		slog.Warn("failed to close redis", "error", err)
	}
	slog.Info("server stopped")
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
