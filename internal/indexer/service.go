// Package indexer turns entity records into index documents and applies
// the best-effort write policy: store failures are logged and swallowed so
// the originating data operation never fails because the index did.
package indexer

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/stratec/assetsearch/internal/docindex"
	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/repo"
)

// Display labels per entity type. The lower-cased normalized form is the
// document's type key; these drive progress labels and result presentation.
const (
	TypeAccount           = "Account"
	TypeAddress           = "Address"
	TypeAudioDevice       = "Audio Device"
	TypeCity              = "City"
	TypeClient            = "Client"
	TypeCountry           = "Country"
	TypeDeploymentVariant = "Deployment Variant"
	TypeInstalledSoftware = "Installed Software"
	TypePhoneIntegration  = "Phone Integration"
	TypeProject           = "Project"
	TypeRadio             = "Radio"
	TypeServer            = "Server"
	TypeServiceContract   = "Service Contract"
	TypeSite              = "Site"
	TypeSoftware          = "Software"
	TypeUpgradePlan       = "Upgrade Plan"
)

// TypeOrder is the fixed entity-type order for bulk replay and totals.
var TypeOrder = []string{
	TypeAccount,
	TypeAddress,
	TypeAudioDevice,
	TypeCity,
	TypeClient,
	TypeCountry,
	TypeDeploymentVariant,
	TypeInstalledSoftware,
	TypePhoneIntegration,
	TypeProject,
	TypeRadio,
	TypeServer,
	TypeServiceContract,
	TypeSite,
	TypeSoftware,
	TypeUpgradePlan,
}

// UpsertStatus reports how a single-document write concluded. Callers on
// the hot path ignore it; tests use it to observe the swallowed outcome.
type UpsertStatus int

const (
	// StatusIndexed means the write committed normally.
	StatusIndexed UpsertStatus = iota
	// StatusRecovered means the write committed after an orphaned-lock
	// recovery.
	StatusRecovered
	// StatusFailed means the write failed and was logged and dropped.
	StatusFailed
)

func (st UpsertStatus) String() string {
	switch st {
	case StatusIndexed:
		return "indexed"
	case StatusRecovered:
		return "recovered"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Service owns the per-entity document construction and write policy.
type Service struct {
	store   docindex.Store
	tracker *progress.Tracker
	log     *slog.Logger
}

// NewService wires the service to a store and a shared progress tracker.
// tracker may be nil when no bulk-run accounting is wanted.
func NewService(store docindex.Store, tracker *progress.Tracker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, tracker: tracker, log: log}
}

// upsert applies the swallow policy: failures are logged with the document
// identity and cause, then dropped. Successful writes count toward an
// active bulk run.
func (s *Service) upsert(ctx context.Context, doc *docindex.Document) UpsertStatus {
	before := s.store.Recoveries()
	if err := s.store.Upsert(ctx, doc); err != nil {
		s.log.Error("index_upsert_failed",
			slog.String("id", doc.ID),
			slog.String("type", doc.Type),
			slog.String("error", err.Error()))
		return StatusFailed
	}

	if s.tracker != nil && s.tracker.Active() {
		s.tracker.Inc(doc.TypeDisplay)
	}
	if s.store.Recoveries() > before {
		return StatusRecovered
	}
	return StatusIndexed
}

// DeleteDocument removes one document. Errors are logged and swallowed,
// matching the upsert policy.
func (s *Service) DeleteDocument(ctx context.Context, id string) {
	if err := s.store.Delete(ctx, id); err != nil {
		s.log.Error("index_delete_failed",
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
}

func (s *Service) IndexAccount(ctx context.Context, a repo.Account) UpsertStatus {
	doc := docindex.NewDocument(a.ID, TypeAccount, a.Name,
		a.Name, a.Number, a.Status,
		docindex.TokenWithPrefix("status", a.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexAddress(ctx context.Context, a repo.Address) UpsertStatus {
	doc := docindex.NewDocument(a.ID, TypeAddress, a.Street,
		a.Street, a.ZipCode, a.City, a.Country)
	return s.upsert(ctx, doc)
}

func (s *Service) IndexAudioDevice(ctx context.Context, d repo.AudioDevice) UpsertStatus {
	doc := docindex.NewDocument(d.ID, TypeAudioDevice, d.Name,
		d.Name, d.Model, d.SerialNumber, d.Status,
		docindex.TokenWithPrefix("status", d.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexCity(ctx context.Context, c repo.City) UpsertStatus {
	doc := docindex.NewDocument(c.ID, TypeCity, c.Name,
		c.Name, c.Region)
	return s.upsert(ctx, doc)
}

func (s *Service) IndexClient(ctx context.Context, c repo.Client) UpsertStatus {
	doc := docindex.NewDocument(c.ID, TypeClient, c.Name,
		c.Name, c.Version, c.Status,
		docindex.TokenWithPrefix("status", c.Status),
		docindex.TokenWithPrefix("active", strconv.FormatBool(c.Active)))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexCountry(ctx context.Context, c repo.Country) UpsertStatus {
	doc := docindex.NewDocument(c.ID, TypeCountry, c.Name,
		c.Name, c.Code)
	return s.upsert(ctx, doc)
}

func (s *Service) IndexDeploymentVariant(ctx context.Context, d repo.DeploymentVariant) UpsertStatus {
	doc := docindex.NewDocument(d.ID, TypeDeploymentVariant, d.Name,
		d.Name, d.Description)
	return s.upsert(ctx, doc)
}

func (s *Service) IndexInstalledSoftware(ctx context.Context, is repo.InstalledSoftware) UpsertStatus {
	doc := docindex.NewDocument(is.ID, TypeInstalledSoftware, is.Name,
		is.Name, is.Version, is.Status,
		docindex.TokenWithPrefix("status", is.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexPhoneIntegration(ctx context.Context, p repo.PhoneIntegration) UpsertStatus {
	doc := docindex.NewDocument(p.ID, TypePhoneIntegration, p.Name,
		p.Name, p.Vendor, p.Status,
		docindex.TokenWithPrefix("status", p.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexProject(ctx context.Context, p repo.Project) UpsertStatus {
	doc := docindex.NewDocument(p.ID, TypeProject, p.Name,
		p.Name, p.Number, p.Status,
		docindex.TokenWithPrefix("status", p.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexRadio(ctx context.Context, r repo.Radio) UpsertStatus {
	doc := docindex.NewDocument(r.ID, TypeRadio, r.Name,
		r.Name, r.SerialNumber, r.Status, r.FireZone,
		docindex.TokenWithPrefix("status", r.Status),
		docindex.TokenWithPrefix("firezone", r.FireZone))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexServer(ctx context.Context, sv repo.Server) UpsertStatus {
	doc := docindex.NewDocument(sv.ID, TypeServer, sv.Hostname,
		sv.Hostname, sv.IPAddress, sv.OS, sv.Status,
		docindex.TokenWithPrefix("status", sv.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexServiceContract(ctx context.Context, sc repo.ServiceContract) UpsertStatus {
	doc := docindex.NewDocument(sc.ID, TypeServiceContract, sc.Number,
		sc.Number, sc.Type, sc.Status,
		docindex.TokenWithPrefix("status", sc.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexSite(ctx context.Context, st repo.Site) UpsertStatus {
	doc := docindex.NewDocument(st.ID, TypeSite, st.Name,
		st.Name, st.Description, st.FireZone,
		docindex.TokenWithPrefix("firezone", st.FireZone))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexSoftware(ctx context.Context, sw repo.Software) UpsertStatus {
	doc := docindex.NewDocument(sw.ID, TypeSoftware, sw.Name,
		sw.Name, sw.Version, sw.Status,
		docindex.TokenWithPrefix("status", sw.Status))
	return s.upsert(ctx, doc)
}

func (s *Service) IndexUpgradePlan(ctx context.Context, u repo.UpgradePlan) UpsertStatus {
	doc := docindex.NewDocument(u.ID, TypeUpgradePlan, u.Name,
		u.Name, u.TargetVersion, u.Status,
		docindex.TokenWithPrefix("status", u.Status))
	return s.upsert(ctx, doc)
}
