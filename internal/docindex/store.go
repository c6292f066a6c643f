package docindex

import (
	"context"
	"fmt"
	"strings"
)

// MaxHits is the hard cap on hits returned by any single search.
const MaxHits = 50

// Backend names for the index store factory.
const (
	BackendBleve  = "bleve"
	BackendSQLite = "sqlite"
)

// Hit is one raw search result from the index, before facade shaping.
type Hit struct {
	ID          string
	Type        string
	TypeDisplay string
	Display     string
	Content     string
	Score       float64
}

// Query is a structured, backend-agnostic query. Type filters by the
// lower-cased entity-type key; Text is optional free text over the content.
type Query struct {
	Type string
	Text string
}

// Store is the document index store. Mutations are serialized behind a
// process-wide write lock; searches open independent read snapshots and
// never block on writers.
type Store interface {
	// Upsert atomically replaces any existing document with the same ID
	// and commits before returning. Errors are propagated (callers decide
	// whether to swallow them).
	Upsert(ctx context.Context, doc *Document) error

	// Delete removes the document with that ID. A blank ID is a no-op
	// with a warning.
	Delete(ctx context.Context, id string) error

	// ClearAll deletes every document and commits. Errors propagate to
	// the caller and may abort a bulk reindex.
	ClearAll(ctx context.Context) error

	// Search parses free-text query syntax against the content field.
	// Malformed queries yield an empty result, never an error. At most
	// MaxHits ranked hits are returned.
	Search(ctx context.Context, queryText string) ([]Hit, error)

	// SearchQuery executes a structured query with the same cap.
	SearchQuery(ctx context.Context, q Query) ([]Hit, error)

	// DocCount reports the number of stored documents.
	DocCount() (uint64, error)

	// Generation is a monotonic counter bumped on every committed
	// mutation. Used by callers to invalidate cached search results.
	Generation() uint64

	// SetDir redirects all subsequent operations to a new index location.
	// The path value itself is synchronized; in-flight operations on the
	// old path are not interrupted.
	SetDir(dir string)

	// Dir returns the current index location.
	Dir() string

	// Recoveries counts writes that succeeded only after an
	// orphaned-lock recovery. Backends without a lock file report zero.
	Recoveries() uint64

	Close() error
}

// New creates a Store for the named backend rooted at dir.
func New(backend, dir string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendBleve:
		return NewBleveStore(dir), nil
	case BackendSQLite:
		return NewSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unknown index backend %q (want %q or %q)", backend, BackendBleve, BackendSQLite)
	}
}
