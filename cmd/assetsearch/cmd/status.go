package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	appconfig "github.com/stratec/assetsearch/internal/config"
	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index location, document count and reindex progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatusCmd(cmd)
		},
	}
}

func runStatusCmd(cmd *cobra.Command) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	out := ui.New(cmd.OutOrStdout())

	count, err := a.store.DocCount()
	if err != nil {
		out.Warningf("document count unavailable: %v", err)
	} else {
		out.Successf("index: %s (%s backend), %d document(s)",
			a.store.Dir(), cfg.Index.Backend, count)
	}

	// Reindex progress lives in the serving process; poll it if one runs
	if snap, err := fetchProgress(cfg.Server.Addr); err == nil {
		out.Progress(*snap)
	} else {
		out.Warningf("service not reachable at %s", cfg.Server.Addr)
	}
	return nil
}

// fetchProgress polls the admin API of a running serve process.
func fetchProgress(addr string) (*progress.Snapshot, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/reindex/progress", addr))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var snap progress.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
