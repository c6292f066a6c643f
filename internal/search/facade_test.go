package search

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratec/assetsearch/internal/docindex"
)

// countingStore serves canned hits and counts query executions.
type countingStore struct {
	mu      sync.Mutex
	hits    []docindex.Hit
	gen     uint64
	queries int
}

func (c *countingStore) SearchQuery(context.Context, docindex.Query) ([]docindex.Hit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	return c.hits, nil
}

func (c *countingStore) Search(ctx context.Context, text string) ([]docindex.Hit, error) {
	return c.SearchQuery(ctx, docindex.Query{Text: text})
}

func (c *countingStore) Upsert(context.Context, *docindex.Document) error { return nil }
func (c *countingStore) Delete(context.Context, string) error             { return nil }
func (c *countingStore) ClearAll(context.Context) error                   { return nil }
func (c *countingStore) DocCount() (uint64, error)                        { return 0, nil }
func (c *countingStore) Recoveries() uint64                               { return 0 }
func (c *countingStore) SetDir(string)                                    {}
func (c *countingStore) Dir() string                                      { return "" }
func (c *countingStore) Close() error                                     { return nil }

func (c *countingStore) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *countingStore) bumpGen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
}

func (c *countingStore) queryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries
}

var _ docindex.Store = (*countingStore)(nil)

func TestFacade_ShapesHits(t *testing.T) {
	store := &countingStore{hits: []docindex.Hit{{
		ID:          "s1",
		Type:        "software",
		TypeDisplay: "Software",
		Display:     "Release 1.0",
		Content:     "Release 1.0   Software Production statusproduction",
	}}}
	f := New(store)

	hits, err := f.Search(context.Background(), "release")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// Type prefers the display-case form
	assert.Equal(t, "Software", hits[0].Type)
	// Text prefers the stored display label
	assert.Equal(t, "Release 1.0", hits[0].Text)
	// Snippet drops the label and type from the front
	assert.Equal(t, "Production statusproduction", hits[0].Snippet)
}

func TestFacade_TextFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		hit  docindex.Hit
		want string
	}{
		{"display preferred", docindex.Hit{Display: "Label", Content: "c", ID: "i"}, "Label"},
		{"content fallback", docindex.Hit{Content: "Some content", ID: "i"}, "Some content"},
		{"id fallback", docindex.Hit{ID: "i"}, "i"},
		{"type last resort", docindex.Hit{TypeDisplay: "Software"}, "Software"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shapeHit(tt.hit).Text)
		})
	}
}

func TestFacade_SnippetTruncatesWithEllipsis(t *testing.T) {
	long := strings.Repeat("token ", 60)
	store := &countingStore{hits: []docindex.Hit{{
		ID: "s1", Display: "x", Content: long,
	}}}
	f := New(store)

	hits, err := f.Search(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	snippet := hits[0].Snippet
	assert.True(t, strings.HasSuffix(snippet, "…"))
	assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(snippet, "…"))), snippetMaxLen)
}

func TestFacade_ShortSnippetKeptWhole(t *testing.T) {
	hit := docindex.Hit{ID: "s1", Display: "Release", Content: "Release short text"}
	assert.Equal(t, "short text", shapeHit(hit).Snippet)
}

func TestFacade_CachesPerGeneration(t *testing.T) {
	// Given: a cached query result
	store := &countingStore{hits: []docindex.Hit{{ID: "s1", Display: "Release"}}}
	f := New(store)
	ctx := context.Background()

	_, err := f.Search(ctx, "release")
	require.NoError(t, err)
	_, err = f.Search(ctx, "release")
	require.NoError(t, err)

	// Then: the second identical query hit the cache
	assert.Equal(t, 1, store.queryCount())

	// When: a write commits (generation bump)
	store.bumpGen()
	_, err = f.Search(ctx, "release")
	require.NoError(t, err)

	// Then: the stale entry misses and the store is queried again
	assert.Equal(t, 2, store.queryCount())
}

func TestFacade_TypeFilterKeyedSeparately(t *testing.T) {
	store := &countingStore{hits: []docindex.Hit{{ID: "s1", Display: "Release"}}}
	f := New(store)
	ctx := context.Background()

	_, err := f.Search(ctx, "release")
	require.NoError(t, err)
	_, err = f.SearchByType(ctx, "release", "Software")
	require.NoError(t, err)

	// Different type filters must not share cache entries
	assert.Equal(t, 2, store.queryCount())
}
