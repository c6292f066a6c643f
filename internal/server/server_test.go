package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratec/assetsearch/internal/docindex"
	"github.com/stratec/assetsearch/internal/indexer"
	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/queue"
	"github.com/stratec/assetsearch/internal/reindex"
	"github.com/stratec/assetsearch/internal/repo"
	"github.com/stratec/assetsearch/internal/search"
)

type testEnv struct {
	srv        *Server
	store      docindex.Store
	dispatcher *queue.Dispatcher
	tracker    *progress.Tracker
	service    *indexer.Service
}

func newTestEnv(t *testing.T, repos repo.Repositories) *testEnv {
	t.Helper()

	store := docindex.NewBleveStore(t.TempDir())
	tracker := progress.NewTracker()
	service := indexer.NewService(store, tracker, nil)
	dispatcher := queue.NewDispatcher(service, 16, nil)
	dispatcher.Start(context.Background())
	t.Cleanup(dispatcher.Stop)

	reindexer := reindex.New(repos, store, service, tracker, nil)
	facade := search.New(store)

	srv := New("127.0.0.1:0", facade, reindexer, tracker, dispatcher, store, nil)
	return &testEnv{srv: srv, store: store, dispatcher: dispatcher, tracker: tracker, service: service}
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	env := newTestEnv(t, &repo.Static{})

	rec := env.do(http.MethodGet, "/api/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_SearchEndpoint(t *testing.T) {
	env := newTestEnv(t, &repo.Static{})
	env.service.IndexSoftware(context.Background(), repo.Software{
		ID: "s1", Name: "Release", Version: "1.0", Status: "Installed",
	})

	rec := env.do(http.MethodGet, "/api/search?q=release")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Hits  []search.SearchHit `json:"hits"`
		Count int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "s1", body.Hits[0].ID)
	assert.Equal(t, indexer.TypeSoftware, body.Hits[0].Type)
}

func TestServer_SearchMalformedQueryReturnsEmpty(t *testing.T) {
	env := newTestEnv(t, &repo.Static{})

	rec := env.do(http.MethodGet, "/api/search?q=%20broken%20%3A%3A%3A")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestServer_SearchWithTypeFilter(t *testing.T) {
	env := newTestEnv(t, &repo.Static{})
	ctx := context.Background()
	env.service.IndexSoftware(ctx, repo.Software{ID: "s1", Name: "Release"})
	env.service.IndexProject(ctx, repo.Project{ID: "p1", Name: "Release rollout"})

	rec := env.do(http.MethodGet, "/api/search?q=release&type=Project")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Hits []search.SearchHit `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Hits, 1)
	assert.Equal(t, "p1", body.Hits[0].ID)
}

func TestServer_ReindexAcceptedThenConflict(t *testing.T) {
	// Given: a repository set large enough that the run takes a moment
	software := make([]repo.Software, 200)
	for i := range software {
		software[i] = repo.Software{ID: string(rune('a' + i%26)) + "-" + string(rune('0'+i%10)), Name: "Release"}
	}
	env := newTestEnv(t, &repo.Static{SoftwareList: software})

	// When: triggering a rebuild
	rec := env.do(http.MethodPost, "/api/reindex")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Then: an overlapping trigger is rejected while the run is active
	conflictSeen := false
	for i := 0; i < 50; i++ {
		rec := env.do(http.MethodPost, "/api/reindex")
		if rec.Code == http.StatusConflict {
			conflictSeen = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	assert.True(t, conflictSeen)
}

func TestServer_ProgressSnapshot(t *testing.T) {
	env := newTestEnv(t, &repo.Static{})
	env.tracker.Start([]progress.Total{{Label: indexer.TypeSoftware, Count: 2}})
	env.tracker.Inc(indexer.TypeSoftware)

	rec := env.do(http.MethodGet, "/api/reindex/progress")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap progress.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.Active)
	assert.Equal(t, int64(2), snap.GrandTotal)
	assert.Equal(t, int64(1), snap.TotalDone)
	assert.Equal(t, 50, snap.Percent)
}

func TestServer_DeleteDocumentAlwaysNoContent(t *testing.T) {
	env := newTestEnv(t, &repo.Static{})
	env.service.IndexAccount(context.Background(), repo.Account{ID: "a1", Name: "ACME"})

	rec := env.do(http.MethodDelete, "/api/documents/a1")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Unknown ids answer the same: deletes are fire-and-forget
	rec = env.do(http.MethodDelete, "/api/documents/unknown")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
