package cmd

import (
	"github.com/spf13/cobra"

	appconfig "github.com/stratec/assetsearch/internal/config"
	"github.com/stratec/assetsearch/internal/ui"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the whole index from the entity database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindexCmd(cmd)
		},
	}
}

func runReindexCmd(cmd *cobra.Command) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	out := ui.New(cmd.OutOrStdout())

	if err := a.reindexer.ReindexAll(cmd.Context()); err != nil {
		out.Errorf("reindex failed: %v", err)
		return err
	}

	snap := a.tracker.Snapshot()
	out.Successf("reindex complete: %d record(s)", snap.GrandTotal)
	out.Progress(snap)
	return nil
}
