package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS pages (
	url        TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
)`

// PageCache is a TTL-bounded page store
type PageCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens or creates the cache database at path. A zero ttl keeps
// pages forever.
func Open(path string, ttl time.Duration) (*PageCache, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &PageCache{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Get returns the cached body of url if present and not expired
func (c *PageCache) Get(ctx context.Context, url string) (string, bool, error) {
	var body string
	var fetchedAt int64

	err := c.db.QueryRowContext(ctx,
		"SELECT body, fetched_at FROM pages WHERE url = ?", url,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached page: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return "", false, nil
	}

	return body, true, nil
}

// Put stores body for url, replacing any previous copy
func (c *PageCache) Put(ctx context.Context, url, body string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pages (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cached page: %w", err)
	}
	return nil
}

// Prune removes expired pages and returns how many were deleted
func (c *PageCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}

	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM pages WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database
func (c *PageCache) Close() error {
	return c.db.Close()
}
