package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ParryPee/EzCensor/internal/app"
	"github.com/ParryPee/EzCensor/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox directory and redact arriving files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil {
				logger.Warn("close app", "error", cerr)
			}
		}()

		events, _, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Root:        cfg.Files.InboxDir,
			AllowedExts: a.AllowedExts(),
			InitialScan: true,
			Debounce:    500 * time.Millisecond,
		}, logger)
		if err != nil {
			return err
		}

		pool := ingest.NewPool(ingest.PoolConfig{
			Workers:      cfg.Files.Workers,
			MaxFileBytes: cfg.MaxFileSizeBytes(),
			OutboxDir:    cfg.Files.OutboxDir,
		}, a.Processor, logger)

		logger.Info("watching inbox", "dir", cfg.Files.InboxDir, "workers", cfg.Files.Workers)
		return pool.Run(ctx, events)
	},
}
