package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ParryPee/EzCensor/internal/app"
)

var (
	exportOut  string
	exportFrom string
	exportTo   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the run audit trail to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		var from, to *time.Time
		if exportFrom != "" {
			parsed, err := time.Parse("2006-01-02", exportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from date, use YYYY-MM-DD: %w", err)
			}
			from = &parsed
		}
		if exportTo != "" {
			parsed, err := time.Parse("2006-01-02", exportTo)
			if err != nil {
				return fmt.Errorf("invalid --to date, use YYYY-MM-DD: %w", err)
			}
			to = &parsed
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

		b, err := a.Export.ExportRunsXLSX(ctx, from, to)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		cmd.Printf("wrote %s (%d bytes)\n", exportOut, len(b))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "runs.xlsx", "output XLSX path")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "from date YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "to date YYYY-MM-DD")
}
