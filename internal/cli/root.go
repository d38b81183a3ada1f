// Package cli implements the ezcensor command line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ParryPee/EzCensor/internal/common"
)

const version = "0.1.0"

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "ezcensor",
	Short: "Locate and redact PII in documents and images",
	Long: "EzCensor locates personally identifiable information in txt, pdf and image\n" +
		"files using a local language model and produces redacted copies.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return 2
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = 0

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print ezcensor version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ezcensor version %s\n", version)
	},
}

// loadConfig loads .env, the YAML file and env overrides, and sets up
// the default logger.
func loadConfig() (*common.Config, *slog.Logger, error) {
	_ = godotenv.Load()
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
