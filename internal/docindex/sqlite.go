package docindex

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	apperrors "github.com/stratec/assetsearch/internal/errors"
)

// dbFileName is the SQLite database file inside the store root.
const dbFileName = "documents.db"

// SQLiteStore implements Store on a SQLite FTS5 virtual table.
//
// This is the second index-service variant: WAL mode plus a busy timeout
// stand in for the Bleve backend's lock-file protocol, and FTS5 MATCH
// syntax stands in for the query-string parser (quoted phrases, AND/OR,
// trailing wildcard supported natively; unsupported syntax degrades to an
// empty result, never an error).
type SQLiteStore struct {
	writeMu sync.Mutex

	mu     sync.RWMutex
	db     *sql.DB
	dir    string
	closed bool

	gen atomic.Uint64
}

// NewSQLiteStore creates a store rooted at dir and initializes the schema.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	db, err := openDocDB(dir)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, dir: dir}, nil
}

// openDocDB opens the database in WAL mode and creates the FTS5 table.
func openDocDB(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS docs USING fts5(
		content,
		doc_id UNINDEXED,
		doc_type UNINDEXED,
		type_display UNINDEXED,
		display UNINDEXED,
		tokenize='unicode61'
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// SetDir closes the current database and redirects subsequent operations
// to a new index location.
func (s *SQLiteStore) SetDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil && !s.closed {
		_ = s.db.Close()
	}

	db, err := openDocDB(dir)
	if err != nil {
		slog.Error("index_dir_change_failed",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		s.closed = true
		s.dir = dir
		return
	}

	s.db = db
	s.dir = dir
	s.closed = false
}

// Dir returns the current index location.
func (s *SQLiteStore) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Generation returns the committed-mutation counter.
func (s *SQLiteStore) Generation() uint64 {
	return s.gen.Load()
}

// Recoveries is always zero: WAL mode needs no lock-file recovery.
func (s *SQLiteStore) Recoveries() uint64 {
	return 0
}

// Upsert replaces any existing document with the same ID in one
// transaction. FTS5 virtual tables don't support REPLACE, so delete first.
func (s *SQLiteStore) Upsert(ctx context.Context, doc *Document) error {
	if doc == nil || strings.TrimSpace(doc.ID) == "" {
		return apperrors.New(apperrors.ErrCodeEmptyDocID, "upsert requires a document id", nil)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return apperrors.New(apperrors.ErrCodeIndexWrite, "index is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.IndexWriteError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM docs WHERE doc_id = ?`, doc.ID); err != nil {
		return apperrors.IndexWriteError("failed to delete existing document", err).WithDetail("id", doc.ID)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO docs(content, doc_id, doc_type, type_display, display) VALUES (?, ?, ?, ?, ?)`,
		doc.Content, doc.ID, doc.Type, doc.TypeDisplay, doc.Display)
	if err != nil {
		return apperrors.IndexWriteError("failed to index document", err).WithDetail("id", doc.ID)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.IndexWriteError("failed to commit upsert", err)
	}

	s.gen.Add(1)
	return nil
}

// Delete removes the document with that ID. A blank ID is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		slog.Warn("index_delete_blank_id")
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return apperrors.New(apperrors.ErrCodeIndexWrite, "index is closed", nil)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM docs WHERE doc_id = ?`, id); err != nil {
		return apperrors.IndexWriteError("failed to delete document", err).WithDetail("id", id)
	}

	s.gen.Add(1)
	return nil
}

// ClearAll deletes every document in one statement.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return apperrors.New(apperrors.ErrCodeIndexClear, "index is closed", nil)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM docs`); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeIndexClear, err)
	}

	s.gen.Add(1)
	return nil
}

// Search executes the translated query. Malformed MATCH syntax yields an
// empty result, never an error.
func (s *SQLiteStore) Search(ctx context.Context, queryText string) ([]Hit, error) {
	return s.SearchQuery(ctx, Query{Text: queryText})
}

// SearchQuery executes a structured query with the MaxHits cap.
func (s *SQLiteStore) SearchQuery(ctx context.Context, q Query) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return []Hit{}, nil
	}

	text := strings.TrimSpace(q.Text)
	typeKey := NormalizeToken(q.Type)
	if text == "" && typeKey == "" {
		return []Hit{}, nil
	}

	var rows *sql.Rows
	var err error
	switch {
	case text != "" && typeKey != "":
		rows, err = s.db.QueryContext(ctx, `
			SELECT doc_id, doc_type, type_display, display, content, bm25(docs)
			FROM docs WHERE docs MATCH ? AND doc_type = ?
			ORDER BY bm25(docs) LIMIT ?`,
			translateMatchQuery(text), typeKey, MaxHits)
	case text != "":
		rows, err = s.db.QueryContext(ctx, `
			SELECT doc_id, doc_type, type_display, display, content, bm25(docs)
			FROM docs WHERE docs MATCH ?
			ORDER BY bm25(docs) LIMIT ?`,
			translateMatchQuery(text), MaxHits)
	default:
		rows, err = s.db.QueryContext(ctx, `
			SELECT doc_id, doc_type, type_display, display, content, 0.0
			FROM docs WHERE doc_type = ?
			ORDER BY doc_id LIMIT ?`,
			typeKey, MaxHits)
	}
	if err != nil {
		// FTS5 reports invalid match queries as errors; treat as no results
		if strings.Contains(err.Error(), "fts5") || strings.Contains(err.Error(), "syntax error") {
			slog.Debug("search_query_malformed",
				slog.String("query", text),
				slog.String("error", err.Error()))
			return []Hit{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var score float64
		if err := rows.Scan(&h.ID, &h.Type, &h.TypeDisplay, &h.Display, &h.Content, &score); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err)
		}
		// FTS5 bm25() is negative where lower is better; negate so higher
		// is better, consistent with the Bleve backend.
		h.Score = -score
		hits = append(hits, h)
	}
	if hits == nil {
		hits = []Hit{}
	}
	return hits, rows.Err()
}

// DocCount reports the number of stored documents.
func (s *SQLiteStore) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, nil
	}

	var count uint64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM docs`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInternal, err)
	}
	return count, nil
}

// Close checkpoints and closes the database. Idempotent.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// translateMatchQuery maps the free-text syntax onto FTS5 MATCH syntax.
// Queries containing quotes pass through untouched (FTS5 handles phrases
// itself). Bare terms are quoted so punctuation inside a term matches as a
// phrase, trailing * becomes an FTS5 prefix, a leading * is dropped, and
// field:value collapses to the prefixed keyword token form.
func translateMatchQuery(text string) string {
	if strings.Contains(text, `"`) {
		return text
	}

	var parts []string
	for _, tok := range strings.Fields(text) {
		if tok == "AND" || tok == "OR" || tok == "NOT" {
			parts = append(parts, tok)
			continue
		}

		tok = strings.ReplaceAll(tok, ":", "")
		prefix := strings.HasSuffix(tok, "*")
		tok = strings.Trim(tok, "*")
		if tok == "" {
			continue
		}

		quoted := `"` + strings.ReplaceAll(tok, `"`, "") + `"`
		if prefix {
			quoted += "*"
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " ")
}

// Verify interface implementation
var _ Store = (*SQLiteStore)(nil)
