package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"filelinkbot/api"
	"filelinkbot/bot"
	"filelinkbot/config"
	"filelinkbot/database"
	"filelinkbot/services"
	"filelinkbot/utils"
)

func main() {
	// بارگذاری تنظیمات
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// اطمینان از وجود دایرکتوری‌ها
	for _, path := range []string{cfg.DatabasePath, cfg.BoltPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	// شروع دیتابیس
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("close database", zap.Error(err))
		}
	}()
	logger.Info("database ready", zap.String("path", cfg.DatabasePath))

	stateStore, closeState, err := openStateStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeState()
	logger.Info("state store ready", zap.String("backend", cfg.StateBackend))

	// شروع ربات تلگرام
	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("username", tg.Self.UserName))

	batchRepo := database.NewBatchRepository(db)
	userRepo := database.NewUserRepository(db)

	batchSvc := services.NewBatchService(batchRepo, logger)
	userSvc := services.NewUserService(userRepo)
	channelSvc := services.NewChannelService(database.NewChannelRepository(db))
	statsSvc := services.NewStatsService(userSvc, batchRepo)
	ingest := services.NewIngestService(
		stateStore,
		bot.NewChannelBackup(tg, cfg.BackupChannelID),
		batchSvc,
		services.IngestOptions{RestartAllowed: cfg.BatchRestartAllowed},
		logger,
	)

	b := bot.New(bot.Deps{
		Client:   tg,
		Username: tg.Self.UserName,
		AdminID:  cfg.AdminID,
		Ingest:   ingest,
		Batches:  batchSvc,
		Channels: channelSvc,
		Users:    userSvc,
		Logger:   logger,
	})

	apiDeps := api.Deps{
		Updates:  b,
		Batches:  batchSvc,
		State:    ingest,
		Stats:    statsSvc,
		Channels: channelSvc,
		Logger:   logger,
	}
	if cfg.AdminAPIEnabled() {
		hash, err := utils.HashPassword(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		apiDeps.Auth = services.NewAuthService(cfg.AdminUsername, hash, cfg.JWTSecret)
	}

	// شروع API سرور
	server := api.NewServer(api.Config{
		Port:          cfg.APIPort,
		WebhookPath:   cfg.WebhookPath,
		WebhookSecret: cfg.WebhookSecret,
		AdminID:       cfg.AdminID,
	}, apiDeps)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if cfg.WebhookURL != "" {
		if err := bot.RegisterWebhook(tg, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
		logger.Info("receiving updates by webhook", zap.String("url", cfg.WebhookURL))
	} else {
		if err := bot.RemoveWebhook(tg); err != nil {
			return err
		}
		logger.Info("receiving updates by long polling")

		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Poll(ctx, tg)
		}()
	}

	serverErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("api server failed", zap.Error(err))
		}
		stop()
	}

	// متوقف کردن graceful
	if err := server.Stop(30 * time.Second); err != nil {
		logger.Error("stop api server", zap.Error(err))
	}
	wg.Wait()

	logger.Info("bot stopped cleanly")
	return nil
}

// openStateStore picks the durable admin state backend.
func openStateStore(cfg *config.Config, db *gorm.DB) (services.StateStore, func(), error) {
	if cfg.StateBackend == config.StateBackendBolt {
		store, err := database.OpenBoltStateStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return database.NewGormStateStore(db), func() {}, nil
}
