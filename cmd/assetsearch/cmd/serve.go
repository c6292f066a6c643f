package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	appconfig "github.com/stratec/assetsearch/internal/config"
	"github.com/stratec/assetsearch/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the indexing service and admin API",
		Long: `Starts the indexing consumer, the scheduled bulk reindex and the
admin HTTP API. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.dispatcher.Start(ctx)
	defer a.dispatcher.Stop()

	// Hot-reload the index location when the config file changes
	if configPath != "" {
		watcher, err := appconfig.Watch(configPath, func(next *appconfig.Config) {
			if next.Index.Dir != a.store.Dir() {
				slog.Info("index_dir_changed",
					slog.String("from", a.store.Dir()),
					slog.String("to", next.Index.Dir))
				a.store.SetDir(next.Index.Dir)
			}
		}, slog.Default())
		if err != nil {
			slog.Warn("config_watch_unavailable", slog.String("error", err.Error()))
		} else {
			defer watcher.Stop()
		}
	}

	if cfg.Reindex.Interval > 0 {
		go runSchedule(ctx, a, cfg.Reindex.Interval)
	}

	srv := server.New(cfg.Server.Addr, a.facade, a.reindexer, a.tracker,
		a.dispatcher, a.store, slog.Default())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runSchedule triggers a full rebuild on a fixed interval. An overlapping
// trigger is rejected by the reindexer and simply skipped here.
func runSchedule(ctx context.Context, a *app, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.reindexer.ReindexAll(ctx); err != nil {
				slog.Warn("scheduled_reindex_skipped", slog.String("error", err.Error()))
			}
		}
	}
}
