// Package queue funnels index writes from many producers through one
// consumer goroutine, which keeps the single-writer index uncontended and
// gives producers natural backpressure when the buffer fills.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	apperrors "github.com/stratec/assetsearch/internal/errors"
	"github.com/stratec/assetsearch/internal/indexer"
	"github.com/stratec/assetsearch/internal/repo"
)

// Job is one unit of index work. Each entity type has its own variant,
// chosen at the producer, so the consumer dispatches on a closed set
// instead of inspecting arbitrary payloads.
type Job interface {
	jobKind() string
}

type AccountJob struct{ Account repo.Account }
type AddressJob struct{ Address repo.Address }
type AudioDeviceJob struct{ AudioDevice repo.AudioDevice }
type CityJob struct{ City repo.City }
type ClientJob struct{ Client repo.Client }
type CountryJob struct{ Country repo.Country }
type DeploymentVariantJob struct{ DeploymentVariant repo.DeploymentVariant }
type InstalledSoftwareJob struct{ InstalledSoftware repo.InstalledSoftware }
type PhoneIntegrationJob struct{ PhoneIntegration repo.PhoneIntegration }
type ProjectJob struct{ Project repo.Project }
type RadioJob struct{ Radio repo.Radio }
type ServerJob struct{ Server repo.Server }
type ServiceContractJob struct{ ServiceContract repo.ServiceContract }
type SiteJob struct{ Site repo.Site }
type SoftwareJob struct{ Software repo.Software }
type UpgradePlanJob struct{ UpgradePlan repo.UpgradePlan }

// DeleteJob removes one document by ID.
type DeleteJob struct{ ID string }

func (AccountJob) jobKind() string           { return indexer.TypeAccount }
func (AddressJob) jobKind() string           { return indexer.TypeAddress }
func (AudioDeviceJob) jobKind() string       { return indexer.TypeAudioDevice }
func (CityJob) jobKind() string              { return indexer.TypeCity }
func (ClientJob) jobKind() string            { return indexer.TypeClient }
func (CountryJob) jobKind() string           { return indexer.TypeCountry }
func (DeploymentVariantJob) jobKind() string { return indexer.TypeDeploymentVariant }
func (InstalledSoftwareJob) jobKind() string { return indexer.TypeInstalledSoftware }
func (PhoneIntegrationJob) jobKind() string  { return indexer.TypePhoneIntegration }
func (ProjectJob) jobKind() string           { return indexer.TypeProject }
func (RadioJob) jobKind() string             { return indexer.TypeRadio }
func (ServerJob) jobKind() string            { return indexer.TypeServer }
func (ServiceContractJob) jobKind() string   { return indexer.TypeServiceContract }
func (SiteJob) jobKind() string              { return indexer.TypeSite }
func (SoftwareJob) jobKind() string          { return indexer.TypeSoftware }
func (UpgradePlanJob) jobKind() string       { return indexer.TypeUpgradePlan }
func (DeleteJob) jobKind() string            { return "Delete" }

// Dispatcher owns the bounded job channel and the single consumer.
type Dispatcher struct {
	jobs chan Job
	svc  *indexer.Service
	log  *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	quit      chan struct{}
	done      chan struct{}
}

// NewDispatcher creates a dispatcher with a buffer of size jobs.
func NewDispatcher(svc *indexer.Service, size int, log *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		jobs: make(chan Job, size),
		svc:  svc,
		log:  log,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Subsequent calls are no-ops.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		d.started.Store(true)
		go d.consume(ctx)
	})
}

// Enqueue blocks when the buffer is full, applying backpressure to the
// producer, until the job is accepted or ctx is canceled. A producer
// racing shutdown gets an error, never a panic: the job channel stays
// open and Stop signals through quit instead.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-d.quit:
		return apperrors.New(apperrors.ErrCodeInternal, "dispatcher stopped", nil)
	default:
	}

	select {
	case d.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return apperrors.New(apperrors.ErrCodeInternal, "dispatcher stopped", nil)
	}
}

// Stop ends the consumer after it drains the jobs already accepted.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
		if d.started.Load() {
			<-d.done
		} else {
			close(d.done)
		}
	})
}

// Pending reports how many jobs are buffered, for status output.
func (d *Dispatcher) Pending() int {
	return len(d.jobs)
}

func (d *Dispatcher) consume(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case job := <-d.jobs:
			d.handle(ctx, job)
		case <-d.quit:
			// Drain what producers got in before the stop signal
			for {
				select {
				case job := <-d.jobs:
					d.handle(ctx, job)
				default:
					return
				}
			}
		}
	}
}

// handle routes one job to its index wrapper. Write failures are already
// logged and swallowed inside the service; an unrecognized variant is
// logged as a warning and dropped, never fatal.
func (d *Dispatcher) handle(ctx context.Context, job Job) {
	switch j := job.(type) {
	case AccountJob:
		d.svc.IndexAccount(ctx, j.Account)
	case AddressJob:
		d.svc.IndexAddress(ctx, j.Address)
	case AudioDeviceJob:
		d.svc.IndexAudioDevice(ctx, j.AudioDevice)
	case CityJob:
		d.svc.IndexCity(ctx, j.City)
	case ClientJob:
		d.svc.IndexClient(ctx, j.Client)
	case CountryJob:
		d.svc.IndexCountry(ctx, j.Country)
	case DeploymentVariantJob:
		d.svc.IndexDeploymentVariant(ctx, j.DeploymentVariant)
	case InstalledSoftwareJob:
		d.svc.IndexInstalledSoftware(ctx, j.InstalledSoftware)
	case PhoneIntegrationJob:
		d.svc.IndexPhoneIntegration(ctx, j.PhoneIntegration)
	case ProjectJob:
		d.svc.IndexProject(ctx, j.Project)
	case RadioJob:
		d.svc.IndexRadio(ctx, j.Radio)
	case ServerJob:
		d.svc.IndexServer(ctx, j.Server)
	case ServiceContractJob:
		d.svc.IndexServiceContract(ctx, j.ServiceContract)
	case SiteJob:
		d.svc.IndexSite(ctx, j.Site)
	case SoftwareJob:
		d.svc.IndexSoftware(ctx, j.Software)
	case UpgradePlanJob:
		d.svc.IndexUpgradePlan(ctx, j.UpgradePlan)
	case DeleteJob:
		d.svc.DeleteDocument(ctx, j.ID)
	default:
		d.log.Warn("queue_payload_unrecognized",
			slog.String("code", apperrors.ErrCodeUnknownPayload),
			slog.String("kind", job.jobKind()))
	}
}
