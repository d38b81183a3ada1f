package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ParryPee/EzCensor/internal/app"
)

var processCmd = &cobra.Command{
	Use:   "process <file> [file...]",
	Short: "Run the redaction pipeline over one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil {
				logger.Warn("close app", "error", cerr)
			}
		}()

		for _, path := range args {
			st, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if st.Size() > cfg.MaxFileSizeBytes() {
				cmd.PrintErrf("%s: file exceeds the %d MB limit, skipped\n", path, cfg.Files.MaxFileSizeMB)
				exitCode = 1
				continue
			}

			out := a.Processor.ProcessFile(ctx, path)
			if !out.Success {
				cmd.PrintErrf("%s: %s\n", path, out.Message)
				exitCode = 1
				continue
			}
			if out.OutputPath != "" {
				cmd.Printf("%s: %s -> %s\n", path, out.Message, out.OutputPath)
			} else {
				cmd.Printf("%s: %s\n", path, out.Message)
			}
		}
		return nil
	},
}
