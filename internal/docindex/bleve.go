package docindex

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	apperrors "github.com/stratec/assetsearch/internal/errors"
)

// assetAnalyzerName is the name of the analyzer applied to document content.
const assetAnalyzerName = "asset_text"

// indexDirName is the Bleve index directory inside the store root.
const indexDirName = "documents.bleve"

// storedFields are fetched for every hit so the facade can shape results.
var storedFields = []string{"type", "type_display", "content", "display"}

// BleveStore implements Store on a disk-backed Bleve index.
//
// The index format permits only one writer at a time, so every mutation
// runs the full write protocol: take the process-wide mutex, acquire the
// write-lock file (with one orphaned-lock recovery attempt), open the index
// append-or-create, apply the operation, commit, close. Searches open an
// independent short-lived read-only snapshot and never touch the write path.
type BleveStore struct {
	writeMu sync.Mutex

	pathMu sync.RWMutex
	dir    string

	gen        atomic.Uint64
	recoveries atomic.Uint64
}

// bleveDocument is the document structure handed to Bleve for indexing.
type bleveDocument struct {
	Type        string `json:"type"`
	TypeDisplay string `json:"type_display"`
	Content     string `json:"content"`
	Display     string `json:"display"`
}

// NewBleveStore creates a store rooted at dir. The index is created lazily
// on the first mutation.
func NewBleveStore(dir string) *BleveStore {
	return &BleveStore{dir: dir}
}

// buildIndexMapping creates the index mapping: content analyzed with a
// unicode tokenizer plus lowercasing, type as an exact keyword, the display
// fields stored but not searchable.
func buildIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	err := im.AddCustomAnalyzer(assetAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	})
	if err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = assetAnalyzerName
	// Untagged query-string terms search the content field
	im.DefaultField = "content"

	content := bleve.NewTextFieldMapping()
	content.Analyzer = assetAnalyzerName

	typeField := bleve.NewKeywordFieldMapping()

	storedOnly := bleve.NewTextFieldMapping()
	storedOnly.Index = false

	dm := bleve.NewDocumentMapping()
	dm.AddFieldMappingsAt("content", content)
	dm.AddFieldMappingsAt("type", typeField)
	dm.AddFieldMappingsAt("type_display", storedOnly)
	dm.AddFieldMappingsAt("display", storedOnly)
	im.DefaultMapping = dm

	return im, nil
}

// SetDir redirects subsequent operations to a new index location.
func (s *BleveStore) SetDir(dir string) {
	s.pathMu.Lock()
	defer s.pathMu.Unlock()
	s.dir = dir
}

// Dir returns the current index location.
func (s *BleveStore) Dir() string {
	s.pathMu.RLock()
	defer s.pathMu.RUnlock()
	return s.dir
}

// Generation returns the committed-mutation counter.
func (s *BleveStore) Generation() uint64 {
	return s.gen.Load()
}

// Recoveries returns how many writes succeeded only after an orphaned
// write-lock recovery.
func (s *BleveStore) Recoveries() uint64 {
	return s.recoveries.Load()
}

// Close is a no-op: the store holds no persistent index handle.
func (s *BleveStore) Close() error {
	return nil
}

func (s *BleveStore) indexPath(dir string) string {
	return filepath.Join(dir, indexDirName)
}

// openWritable opens the on-disk index append-or-create.
func (s *BleveStore) openWritable(dir string) (bleve.Index, error) {
	path := s.indexPath(dir)
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		im, merr := buildIndexMapping()
		if merr != nil {
			return nil, merr
		}
		return bleve.New(path, im)
	}
	return idx, err
}

// withWriter runs fn under the full write protocol and bumps the generation
// counter on success.
func (s *BleveStore) withWriter(fn func(idx bleve.Index) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	dir := s.Dir()
	lock := newWriteLock(dir)
	recovered, err := lock.Acquire()
	if err != nil {
		return err
	}
	defer lock.Release()
	if recovered {
		s.recoveries.Add(1)
	}

	idx, err := s.openWritable(dir)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeIndexOpen, err)
	}
	defer func() { _ = idx.Close() }()

	if err := fn(idx); err != nil {
		return err
	}

	s.gen.Add(1)
	return nil
}

// Upsert atomically replaces any existing document with the same ID and
// commits before returning.
func (s *BleveStore) Upsert(ctx context.Context, doc *Document) error {
	if doc == nil || strings.TrimSpace(doc.ID) == "" {
		return apperrors.New(apperrors.ErrCodeEmptyDocID, "upsert requires a document id", nil)
	}

	return s.withWriter(func(idx bleve.Index) error {
		err := idx.Index(doc.ID, bleveDocument{
			Type:        doc.Type,
			TypeDisplay: doc.TypeDisplay,
			Content:     doc.Content,
			Display:     doc.Display,
		})
		if err != nil {
			return apperrors.IndexWriteError("failed to index document", err).WithDetail("id", doc.ID)
		}
		return nil
	})
}

// Delete removes the document with that ID. A blank ID is a no-op.
func (s *BleveStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		slog.Warn("index_delete_blank_id")
		return nil
	}

	return s.withWriter(func(idx bleve.Index) error {
		if err := idx.Delete(id); err != nil {
			return apperrors.IndexWriteError("failed to delete document", err).WithDetail("id", id)
		}
		return nil
	})
}

// ClearAll deletes every document in one batch and commits.
func (s *BleveStore) ClearAll(ctx context.Context) error {
	return s.withWriter(func(idx bleve.Index) error {
		count, err := idx.DocCount()
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeIndexClear, err)
		}
		if count == 0 {
			return nil
		}

		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
		res, err := idx.SearchInContext(ctx, req)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeIndexClear, err)
		}

		batch := idx.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := idx.Batch(batch); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeIndexClear, err)
		}
		return nil
	})
}

// Search parses the free-text syntax; a malformed query yields an empty
// result, never an error.
func (s *BleveStore) Search(ctx context.Context, queryText string) ([]Hit, error) {
	if strings.TrimSpace(queryText) == "" {
		return []Hit{}, nil
	}

	q, err := buildTextQuery(queryText)
	if err != nil {
		slog.Debug("search_query_malformed",
			slog.String("query", queryText),
			slog.String("error", err.Error()))
		return []Hit{}, nil
	}

	return s.runQuery(ctx, q)
}

// SearchQuery executes a structured query with the same hit cap.
func (s *BleveStore) SearchQuery(ctx context.Context, sq Query) ([]Hit, error) {
	cq := bleve.NewConjunctionQuery()
	clauses := 0

	if sq.Type != "" {
		tq := bleve.NewTermQuery(NormalizeToken(sq.Type))
		tq.SetField("type")
		cq.AddQuery(tq)
		clauses++
	}
	if strings.TrimSpace(sq.Text) != "" {
		text, err := buildTextQuery(sq.Text)
		if err != nil {
			return []Hit{}, nil
		}
		cq.AddQuery(text)
		clauses++
	}
	if clauses == 0 {
		return []Hit{}, nil
	}

	return s.runQuery(ctx, cq)
}

// DocCount reports the number of stored documents from a read snapshot.
func (s *BleveStore) DocCount() (uint64, error) {
	idx, err := s.openSnapshot()
	if err == bleve.ErrorIndexPathDoesNotExist {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeIndexOpen, err)
	}
	defer func() { _ = idx.Close() }()

	return idx.DocCount()
}

// openSnapshot opens an independent point-in-time read-only view. Readers
// observe whatever was last committed and never block on the write lock.
func (s *BleveStore) openSnapshot() (bleve.Index, error) {
	return bleve.OpenUsing(s.indexPath(s.Dir()), map[string]interface{}{
		"read_only": true,
	})
}

func (s *BleveStore) runQuery(ctx context.Context, q query.Query) ([]Hit, error) {
	idx, err := s.openSnapshot()
	if err == bleve.ErrorIndexPathDoesNotExist {
		// Nothing indexed yet
		return []Hit{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeIndexOpen, err)
	}
	defer func() { _ = idx.Close() }()

	req := bleve.NewSearchRequestOptions(q, MaxHits, 0, false)
	req.Fields = storedFields

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		slog.Debug("search_failed", slog.String("error", err.Error()))
		return []Hit{}, nil
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{
			ID:          h.ID,
			Type:        fieldString(h.Fields, "type"),
			TypeDisplay: fieldString(h.Fields, "type_display"),
			Display:     fieldString(h.Fields, "display"),
			Content:     fieldString(h.Fields, "content"),
			Score:       h.Score,
		})
	}
	return hits, nil
}

// fieldString extracts a stored string field from a search hit.
func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// Verify interface implementation
var _ Store = (*BleveStore)(nil)
