package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ParryPee/EzCensor/internal/app"
	"github.com/ParryPee/EzCensor/internal/common"
	"github.com/ParryPee/EzCensor/internal/ingest"
)

func main() {
	_ = godotenv.Load()
	cfg, err := common.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Error("close app", "error", cerr)
		}
	}()

	events, _, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        cfg.Files.InboxDir,
		AllowedExts: a.AllowedExts(),
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	}, logger)
	if err != nil {
		logger.Error("watcher start failed", "error", err)
		os.Exit(1)
	}

	pool := ingest.NewPool(ingest.PoolConfig{
		Workers:      cfg.Files.Workers,
		MaxFileBytes: cfg.MaxFileSizeBytes(),
		OutboxDir:    cfg.Files.OutboxDir,
	}, a.Processor, logger)

	logger.Info("ezcensord serving",
		"inbox", cfg.Files.InboxDir,
		"outbox", cfg.Files.OutboxDir,
		"model", cfg.Oracle.Model,
		"workers", cfg.Files.Workers,
	)

	if err := pool.Run(ctx, events); err != nil && ctx.Err() == nil {
		logger.Error("worker pool stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down...")
}
