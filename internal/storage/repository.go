package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glabrego/pkbrowse/internal/perkeep"
)

// CachedResult is a search result page stored under a canonical query key.
type CachedResult struct {
	Refs      []string
	Meta      map[string]perkeep.DescribedBlob
	FetchedAt time.Time
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS search_results (
  query_key TEXT PRIMARY KEY,
  refs TEXT NOT NULL,
  meta TEXT NOT NULL,
  fetched_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS query_history (
  query TEXT PRIMARY KEY,
  uses INTEGER NOT NULL DEFAULT 1,
  used_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ui_preferences (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) SaveResults(ctx context.Context, queryKey string, refs []string, meta map[string]perkeep.DescribedBlob) error {
	if refs == nil {
		refs = []string{}
	}
	if meta == nil {
		meta = map[string]perkeep.DescribedBlob{}
	}
	refsJSON, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("encode refs: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO search_results (query_key, refs, meta, fetched_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(query_key) DO UPDATE SET
  refs=excluded.refs,
  meta=excluded.meta,
  fetched_at=excluded.fetched_at
`, queryKey, string(refsJSON), string(metaJSON), r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save results for %s: %w", queryKey, err)
	}
	return nil
}

// LoadResults returns the cached page for queryKey. found is false when
// nothing was cached.
func (r *Repository) LoadResults(ctx context.Context, queryKey string) (CachedResult, bool, error) {
	var refsJSON, metaJSON, fetchedAt string
	err := r.db.QueryRowContext(ctx, `
SELECT refs, meta, fetched_at
FROM search_results
WHERE query_key = ?
`, queryKey).Scan(&refsJSON, &metaJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedResult{}, false, nil
	}
	if err != nil {
		return CachedResult{}, false, fmt.Errorf("query results for %s: %w", queryKey, err)
	}

	var cached CachedResult
	if err := json.Unmarshal([]byte(refsJSON), &cached.Refs); err != nil {
		return CachedResult{}, false, fmt.Errorf("decode cached refs: %w", err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &cached.Meta); err != nil {
		return CachedResult{}, false, fmt.Errorf("decode cached meta: %w", err)
	}
	cached.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return CachedResult{}, false, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	return cached, true, nil
}

// PruneResults drops cached pages fetched before cutoff.
func (r *Repository) PruneResults(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM search_results WHERE fetched_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune results: %w", err)
	}
	return n, nil
}

func (r *Repository) RecordQuery(ctx context.Context, query string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO query_history (query, uses, used_at)
VALUES (?, 1, ?)
ON CONFLICT(query) DO UPDATE SET
  uses=query_history.uses + 1,
  used_at=excluded.used_at
`, query, r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

// RecentQueries lists distinct queries, most recently used first.
func (r *Repository) RecentQueries(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT query
FROM query_history
ORDER BY used_at DESC, uses DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	queries := make([]string, 0, limit)
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return queries, nil
}

func (r *Repository) SetPreference(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ui_preferences (key, value)
VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`, key, value)
	if err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	return nil
}

func (r *Repository) Preference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM ui_preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load preference %s: %w", key, err)
	}
	return value, true, nil
}
