package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/stratec/assetsearch/internal/config"
	"github.com/stratec/assetsearch/internal/ui"
)

type searchOptions struct {
	entityType string
	format     string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the local index",
		Long: `Search the index with free-text syntax: bare terms, quoted phrases,
AND/OR, wildcards and prefixed attribute tokens.

Examples:
  assetsearch search "release 2.0"
  assetsearch search 'statusinstalled' --type Software
  assetsearch search 'berlin OR hamburg' --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchCmd(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.entityType, "type", "t", "", "Restrict to one entity type (e.g. Software)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearchCmd(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	hits, err := a.facade.SearchByType(ctx, query, opts.entityType)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	ui.New(cmd.OutOrStdout()).Hits(query, hits)
	return nil
}
