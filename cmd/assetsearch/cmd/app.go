package cmd

import (
	"log/slog"

	"github.com/stratec/assetsearch/internal/config"
	"github.com/stratec/assetsearch/internal/docindex"
	"github.com/stratec/assetsearch/internal/indexer"
	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/queue"
	"github.com/stratec/assetsearch/internal/reindex"
	"github.com/stratec/assetsearch/internal/repo"
	"github.com/stratec/assetsearch/internal/search"
)

// app is the assembled indexing subsystem, shared by the commands.
type app struct {
	cfg        *config.Config
	store      docindex.Store
	tracker    *progress.Tracker
	service    *indexer.Service
	dispatcher *queue.Dispatcher
	repos      repo.Repositories
	reindexer  *reindex.Reindexer
	facade     *search.Facade
}

// buildApp wires every component from the configuration. withRepos
// controls whether the entity database is opened; search-only commands
// skip it.
func buildApp(cfg *config.Config, withRepos bool) (*app, error) {
	store, err := docindex.New(cfg.Index.Backend, cfg.Index.Dir)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker()
	service := indexer.NewService(store, tracker, slog.Default())
	dispatcher := queue.NewDispatcher(service, cfg.Queue.Size, slog.Default())

	a := &app{
		cfg:        cfg,
		store:      store,
		tracker:    tracker,
		service:    service,
		dispatcher: dispatcher,
		facade:     search.New(store),
	}

	if withRepos {
		repos, err := repo.OpenSQLite(cfg.Data.SQLitePath)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.repos = repos
		a.reindexer = reindex.New(repos, store, service, tracker, slog.Default())
	}
	return a, nil
}

// close releases the app's resources.
func (a *app) close() {
	if a.repos != nil {
		_ = a.repos.Close()
	}
	_ = a.store.Close()
}
