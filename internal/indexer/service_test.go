package indexer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratec/assetsearch/internal/docindex"
	apperrors "github.com/stratec/assetsearch/internal/errors"
	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/repo"
)

// fakeStore records writes in memory and can be told to fail or to
// simulate a lock recovery.
type fakeStore struct {
	mu         sync.Mutex
	docs       map[string]*docindex.Document
	failUpsert bool
	recoverOne bool
	gen        uint64
	recoveries uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*docindex.Document)}
}

func (f *fakeStore) Upsert(_ context.Context, doc *docindex.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return apperrors.IndexWriteError("disk full", nil)
	}
	if f.recoverOne {
		f.recoveries++
		f.recoverOne = false
	}
	f.docs[doc.ID] = doc
	f.gen++
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return apperrors.IndexWriteError("disk full", nil)
	}
	delete(f.docs, id)
	f.gen++
	return nil
}

func (f *fakeStore) ClearAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = make(map[string]*docindex.Document)
	f.gen++
	return nil
}

func (f *fakeStore) Search(context.Context, string) ([]docindex.Hit, error) {
	return []docindex.Hit{}, nil
}

func (f *fakeStore) SearchQuery(context.Context, docindex.Query) ([]docindex.Hit, error) {
	return []docindex.Hit{}, nil
}

func (f *fakeStore) DocCount() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.docs)), nil
}

func (f *fakeStore) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen
}

func (f *fakeStore) Recoveries() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recoveries
}

func (f *fakeStore) SetDir(string) {}
func (f *fakeStore) Dir() string   { return "" }
func (f *fakeStore) Close() error  { return nil }

func (f *fakeStore) doc(id string) *docindex.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id]
}

var _ docindex.Store = (*fakeStore)(nil)

func TestService_IndexSoftware_DerivesTokens(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	st := svc.IndexSoftware(context.Background(), repo.Software{
		ID: "s1", Name: "Release", Version: "1.0", Status: "Installed",
	})

	assert.Equal(t, StatusIndexed, st)
	doc := store.doc("s1")
	require.NotNil(t, doc)
	assert.Equal(t, "software", doc.Type)
	assert.Equal(t, TypeSoftware, doc.TypeDisplay)
	assert.Equal(t, "Release", doc.Display)
	assert.Contains(t, doc.Content, "statusinstalled")
	assert.Contains(t, doc.Content, "1.0")
}

func TestService_IndexClient_ActiveToken(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	svc.IndexClient(context.Background(), repo.Client{
		ID: "c1", Name: "Dispatcher", Version: "3.2", Status: "Installed", Active: true,
	})

	doc := store.doc("c1")
	require.NotNil(t, doc)
	assert.Contains(t, doc.Content, "activetrue")
	assert.Contains(t, doc.Content, "statusinstalled")
}

func TestService_IndexRadio_FireZoneToken(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	svc.IndexRadio(context.Background(), repo.Radio{
		ID: "r1", Name: "TRX-9", SerialNumber: "SN-100", Status: "Active", FireZone: "Zone A",
	})

	doc := store.doc("r1")
	require.NotNil(t, doc)
	assert.Contains(t, doc.Content, "firezonezonea")
}

func TestService_BlankStatusYieldsNoToken(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	svc.IndexSoftware(context.Background(), repo.Software{ID: "s1", Name: "Release"})

	doc := store.doc("s1")
	require.NotNil(t, doc)
	assert.NotContains(t, doc.Content, "status")
}

func TestService_UpsertFailureIsSwallowed(t *testing.T) {
	// Given: a store that fails every write
	store := newFakeStore()
	store.failUpsert = true
	svc := NewService(store, nil, nil)

	// When: indexing
	st := svc.IndexAccount(context.Background(), repo.Account{ID: "a1", Name: "ACME"})

	// Then: the caller sees only the status hook, no error, no document
	assert.Equal(t, StatusFailed, st)
	assert.Nil(t, store.doc("a1"))
}

func TestService_RecoveredWriteReported(t *testing.T) {
	store := newFakeStore()
	store.recoverOne = true
	svc := NewService(store, nil, nil)

	st := svc.IndexAccount(context.Background(), repo.Account{ID: "a1", Name: "ACME"})
	assert.Equal(t, StatusRecovered, st)

	// Subsequent writes report plain success
	st = svc.IndexAccount(context.Background(), repo.Account{ID: "a2", Name: "Globex"})
	assert.Equal(t, StatusIndexed, st)
}

func TestService_CountsTowardActiveRunOnly(t *testing.T) {
	store := newFakeStore()
	tracker := progress.NewTracker()
	svc := NewService(store, tracker, nil)

	// Outside a run nothing is counted
	svc.IndexAccount(context.Background(), repo.Account{ID: "a1", Name: "ACME"})
	assert.Equal(t, int64(0), tracker.Snapshot().TotalDone)

	// Inside a run each successful write counts under its type label
	tracker.Start([]progress.Total{{Label: TypeAccount, Count: 2}})
	svc.IndexAccount(context.Background(), repo.Account{ID: "a2", Name: "Globex"})
	assert.Equal(t, int64(1), tracker.Snapshot().TotalDone)

	// Failed writes do not count
	store.failUpsert = true
	svc.IndexAccount(context.Background(), repo.Account{ID: "a3", Name: "Initech"})
	assert.Equal(t, int64(1), tracker.Snapshot().TotalDone)
}

func TestService_DeleteDocumentSwallowsErrors(t *testing.T) {
	store := newFakeStore()
	store.failUpsert = true
	svc := NewService(store, nil, nil)

	// Must not panic or surface the failure
	svc.DeleteDocument(context.Background(), "a1")
}
