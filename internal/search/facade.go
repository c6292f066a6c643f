// Package search shapes raw index hits into presentation-ready results.
package search

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stratec/assetsearch/internal/docindex"
)

// snippetMaxLen is the character cap before the ellipsis marker.
const snippetMaxLen = 160

// cacheSize bounds the result cache.
const cacheSize = 512

// SearchHit is one shaped result.
type SearchHit struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Text    string `json:"text"`
	Snippet string `json:"snippet"`
}

type cacheKey struct {
	query string
	typ   string
	gen   uint64
}

// Facade fronts the store with result shaping and a generation-keyed
// cache: every committed write bumps the store generation, so stale
// entries miss naturally and age out of the LRU.
type Facade struct {
	store docindex.Store
	cache *lru.Cache[cacheKey, []SearchHit]
}

// New creates a facade over the store.
func New(store docindex.Store) *Facade {
	// Only errors on non-positive size
	cache, _ := lru.New[cacheKey, []SearchHit](cacheSize)
	return &Facade{store: store, cache: cache}
}

// Search runs a free-text query. Malformed syntax yields an empty list,
// never an error.
func (f *Facade) Search(ctx context.Context, text string) ([]SearchHit, error) {
	return f.run(ctx, docindex.Query{Text: text})
}

// SearchByType runs a free-text query restricted to one entity type.
func (f *Facade) SearchByType(ctx context.Context, text, entityType string) ([]SearchHit, error) {
	return f.run(ctx, docindex.Query{Text: text, Type: entityType})
}

func (f *Facade) run(ctx context.Context, q docindex.Query) ([]SearchHit, error) {
	key := cacheKey{query: q.Text, typ: q.Type, gen: f.store.Generation()}
	if hits, ok := f.cache.Get(key); ok {
		return hits, nil
	}

	raw, err := f.store.SearchQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(raw))
	for _, h := range raw {
		hits = append(hits, shapeHit(h))
	}
	f.cache.Add(key, hits)
	return hits, nil
}

// shapeHit derives the presentation fields from a raw hit: type prefers
// the display-case form, text falls back through display, content, id and
// type, and the snippet is the normalized content with the label and type
// tokens stripped from the front, capped at 160 characters.
func shapeHit(h docindex.Hit) SearchHit {
	typ := h.TypeDisplay
	if typ == "" {
		typ = h.Type
	}

	text := h.Display
	if text == "" {
		text = h.Content
	}
	if text == "" {
		text = h.ID
	}
	if text == "" {
		text = typ
	}

	return SearchHit{
		ID:      h.ID,
		Type:    typ,
		Text:    text,
		Snippet: buildSnippet(h.Content, text, typ),
	}
}

// buildSnippet normalizes whitespace, strips the leading label and type
// tokens so the snippet doesn't repeat the headline, and truncates.
func buildSnippet(content, label, typ string) string {
	s := docindex.NormalizeWhitespace(content)
	s = stripPrefixFold(s, label)
	s = stripPrefixFold(s, typ)
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > snippetMaxLen {
		s = strings.TrimSpace(string(runes[:snippetMaxLen])) + "…"
	}
	return s
}

// stripPrefixFold removes prefix from s case-insensitively, once.
func stripPrefixFold(s, prefix string) string {
	s = strings.TrimSpace(s)
	if prefix == "" || len(s) < len(prefix) {
		return s
	}
	if strings.EqualFold(s[:len(prefix)], prefix) {
		return strings.TrimSpace(s[len(prefix):])
	}
	return s
}
