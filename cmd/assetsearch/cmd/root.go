// Package cmd provides the CLI commands for assetsearch.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stratec/assetsearch/internal/logging"
)

var (
	configPath string
	debugMode  bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the assetsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assetsearch",
		Short: "Full-text search index for asset management data",
		Long: `Assetsearch maintains a full-text search index over the asset
management system-of-record: accounts, sites, servers, radios, software
and the rest of the inventory.

Run 'assetsearch serve' to start the indexing service and admin API, or
use 'search', 'reindex' and 'status' directly against a local index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: built-in defaults)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.assetsearch/logs/")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func setupLogging(*cobra.Command, []string) error {
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if debugMode {
		logCfg.Level = "debug"
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// Logging must never block the command itself
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
