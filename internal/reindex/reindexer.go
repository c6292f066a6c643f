// Package reindex orchestrates full index rebuilds from the relational
// system-of-record.
package reindex

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/stratec/assetsearch/internal/docindex"
	apperrors "github.com/stratec/assetsearch/internal/errors"
	"github.com/stratec/assetsearch/internal/indexer"
	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/repo"
)

// ErrRunning rejects a reindex while another run is in flight.
var ErrRunning = apperrors.New(apperrors.ErrCodeReindexRunning, "a reindex run is already active", nil)

// snapshot holds all fetched records for one run, in replay order.
type snapshot struct {
	accounts           []repo.Account
	addresses          []repo.Address
	audioDevices       []repo.AudioDevice
	cities             []repo.City
	clients            []repo.Client
	countries          []repo.Country
	deploymentVariants []repo.DeploymentVariant
	installedSoftware  []repo.InstalledSoftware
	phoneIntegrations  []repo.PhoneIntegration
	projects           []repo.Project
	radios             []repo.Radio
	servers            []repo.Server
	serviceContracts   []repo.ServiceContract
	sites              []repo.Site
	software           []repo.Software
	upgradePlans       []repo.UpgradePlan
}

// Reindexer rebuilds the whole index: fetch everything, clear, replay.
type Reindexer struct {
	repos   repo.Repositories
	store   docindex.Store
	svc     *indexer.Service
	tracker *progress.Tracker
	log     *slog.Logger

	running atomic.Bool
}

// New wires a reindexer. The service must share the tracker so replayed
// writes count toward the run.
func New(repos repo.Repositories, store docindex.Store, svc *indexer.Service, tracker *progress.Tracker, log *slog.Logger) *Reindexer {
	if log == nil {
		log = slog.Default()
	}
	return &Reindexer{repos: repos, store: store, svc: svc, tracker: tracker, log: log}
}

// Running reports whether a run is in flight.
func (r *Reindexer) Running() bool {
	return r.running.Load()
}

// ReindexAll performs one full rebuild. A second call while one is active
// returns ErrRunning. If clearing the index fails the run aborts with no
// progress-tracker state change at all; once the tracker is started it is
// always finished, even when the replay loop aborts mid-way.
func (r *Reindexer) ReindexAll(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer r.running.Store(false)

	return r.run(ctx)
}

// Start begins a full rebuild on its own goroutine. The run slot is
// claimed before returning, so a concurrent caller sees ErrRunning
// immediately instead of a second acceptance. Run failures are logged.
func (r *Reindexer) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunning
	}

	go func() {
		defer r.running.Store(false)
		if err := r.run(ctx); err != nil {
			r.log.Error("reindex_failed", slog.String("error", err.Error()))
		}
	}()
	return nil
}

func (r *Reindexer) run(ctx context.Context) error {
	snap := r.fetchAll(ctx)
	totals := snap.totals()

	if err := r.store.ClearAll(ctx); err != nil {
		r.log.Error("reindex_clear_failed", slog.String("error", err.Error()))
		return err
	}

	r.tracker.Start(totals)
	defer r.tracker.Finish()

	if err := r.replay(ctx, snap); err != nil {
		r.log.Error("reindex_aborted", slog.String("error", err.Error()))
		return err
	}

	r.log.Info("reindex_complete",
		slog.Int64("records", r.tracker.Snapshot().GrandTotal))
	return nil
}

// fetchAll pulls every table concurrently. A failing repository logs a
// warning and contributes an empty list, never aborting the run.
func (r *Reindexer) fetchAll(ctx context.Context) *snapshot {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(label string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				r.log.Warn("reindex_fetch_failed",
					slog.String("entity", label),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}

	fetch(indexer.TypeAccount, func() (err error) {
		snap.accounts, err = r.repos.Accounts(gctx)
		return
	})
	fetch(indexer.TypeAddress, func() (err error) {
		snap.addresses, err = r.repos.Addresses(gctx)
		return
	})
	fetch(indexer.TypeAudioDevice, func() (err error) {
		snap.audioDevices, err = r.repos.AudioDevices(gctx)
		return
	})
	fetch(indexer.TypeCity, func() (err error) {
		snap.cities, err = r.repos.Cities(gctx)
		return
	})
	fetch(indexer.TypeClient, func() (err error) {
		snap.clients, err = r.repos.Clients(gctx)
		return
	})
	fetch(indexer.TypeCountry, func() (err error) {
		snap.countries, err = r.repos.Countries(gctx)
		return
	})
	fetch(indexer.TypeDeploymentVariant, func() (err error) {
		snap.deploymentVariants, err = r.repos.DeploymentVariants(gctx)
		return
	})
	fetch(indexer.TypeInstalledSoftware, func() (err error) {
		snap.installedSoftware, err = r.repos.InstalledSoftware(gctx)
		return
	})
	fetch(indexer.TypePhoneIntegration, func() (err error) {
		snap.phoneIntegrations, err = r.repos.PhoneIntegrations(gctx)
		return
	})
	fetch(indexer.TypeProject, func() (err error) {
		snap.projects, err = r.repos.Projects(gctx)
		return
	})
	fetch(indexer.TypeRadio, func() (err error) {
		snap.radios, err = r.repos.Radios(gctx)
		return
	})
	fetch(indexer.TypeServer, func() (err error) {
		snap.servers, err = r.repos.Servers(gctx)
		return
	})
	fetch(indexer.TypeServiceContract, func() (err error) {
		snap.serviceContracts, err = r.repos.ServiceContracts(gctx)
		return
	})
	fetch(indexer.TypeSite, func() (err error) {
		snap.sites, err = r.repos.Sites(gctx)
		return
	})
	fetch(indexer.TypeSoftware, func() (err error) {
		snap.software, err = r.repos.Software(gctx)
		return
	})
	fetch(indexer.TypeUpgradePlan, func() (err error) {
		snap.upgradePlans, err = r.repos.UpgradePlans(gctx)
		return
	})

	_ = g.Wait()
	return snap
}

// totals captures the per-type record counts in fixed type order.
func (s *snapshot) totals() []progress.Total {
	return []progress.Total{
		{Label: indexer.TypeAccount, Count: int64(len(s.accounts))},
		{Label: indexer.TypeAddress, Count: int64(len(s.addresses))},
		{Label: indexer.TypeAudioDevice, Count: int64(len(s.audioDevices))},
		{Label: indexer.TypeCity, Count: int64(len(s.cities))},
		{Label: indexer.TypeClient, Count: int64(len(s.clients))},
		{Label: indexer.TypeCountry, Count: int64(len(s.countries))},
		{Label: indexer.TypeDeploymentVariant, Count: int64(len(s.deploymentVariants))},
		{Label: indexer.TypeInstalledSoftware, Count: int64(len(s.installedSoftware))},
		{Label: indexer.TypePhoneIntegration, Count: int64(len(s.phoneIntegrations))},
		{Label: indexer.TypeProject, Count: int64(len(s.projects))},
		{Label: indexer.TypeRadio, Count: int64(len(s.radios))},
		{Label: indexer.TypeServer, Count: int64(len(s.servers))},
		{Label: indexer.TypeServiceContract, Count: int64(len(s.serviceContracts))},
		{Label: indexer.TypeSite, Count: int64(len(s.sites))},
		{Label: indexer.TypeSoftware, Count: int64(len(s.software))},
		{Label: indexer.TypeUpgradePlan, Count: int64(len(s.upgradePlans))},
	}
}

// replay writes every fetched record in fixed type order, records in
// natural fetch order. The first failed write aborts the remainder of the
// run; there is no partial-type retry.
func (r *Reindexer) replay(ctx context.Context, snap *snapshot) error {
	check := func(label, id string, st indexer.UpsertStatus) error {
		if st == indexer.StatusFailed {
			return apperrors.New(apperrors.ErrCodeIndexWrite, "bulk replay write failed", nil).
				WithDetail("entity", label).
				WithDetail("id", id)
		}
		return nil
	}

	for _, v := range snap.accounts {
		if err := check(indexer.TypeAccount, v.ID, r.svc.IndexAccount(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.addresses {
		if err := check(indexer.TypeAddress, v.ID, r.svc.IndexAddress(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.audioDevices {
		if err := check(indexer.TypeAudioDevice, v.ID, r.svc.IndexAudioDevice(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.cities {
		if err := check(indexer.TypeCity, v.ID, r.svc.IndexCity(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.clients {
		if err := check(indexer.TypeClient, v.ID, r.svc.IndexClient(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.countries {
		if err := check(indexer.TypeCountry, v.ID, r.svc.IndexCountry(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.deploymentVariants {
		if err := check(indexer.TypeDeploymentVariant, v.ID, r.svc.IndexDeploymentVariant(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.installedSoftware {
		if err := check(indexer.TypeInstalledSoftware, v.ID, r.svc.IndexInstalledSoftware(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.phoneIntegrations {
		if err := check(indexer.TypePhoneIntegration, v.ID, r.svc.IndexPhoneIntegration(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.projects {
		if err := check(indexer.TypeProject, v.ID, r.svc.IndexProject(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.radios {
		if err := check(indexer.TypeRadio, v.ID, r.svc.IndexRadio(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.servers {
		if err := check(indexer.TypeServer, v.ID, r.svc.IndexServer(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.serviceContracts {
		if err := check(indexer.TypeServiceContract, v.ID, r.svc.IndexServiceContract(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.sites {
		if err := check(indexer.TypeSite, v.ID, r.svc.IndexSite(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.software {
		if err := check(indexer.TypeSoftware, v.ID, r.svc.IndexSoftware(ctx, v)); err != nil {
			return err
		}
	}
	for _, v := range snap.upgradePlans {
		if err := check(indexer.TypeUpgradePlan, v.ID, r.svc.IndexUpgradePlan(ctx, v)); err != nil {
			return err
		}
	}
	return nil
}
