package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the CategoryCache interface
type SQLiteCache struct {
	store   *sqlStore
	janitor *janitor
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS category_cache (
			batch_key TEXT PRIMARY KEY,
			labels TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on expires_at for faster cleanup
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_category_cache_expires_at ON category_cache(expires_at)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		store: &sqlStore{
			db:     db,
			logger: logger,
			upsert: func(entry *core.CategoryCacheEntry, labels string) sq.Sqlizer {
				return sq.Replace(tableName).
					Columns("batch_key", "labels", "created_at", "expires_at").
					Values(entry.BatchKey, labels, entry.CreatedAt.Unix(), entry.ExpiresAt.Unix())
			},
		},
	}
	cache.janitor = startJanitor(cache, cleanupFreq, logger)

	return cache, nil
}

// Get retrieves the entry for a batch key, nil when absent or expired
func (c *SQLiteCache) Get(ctx context.Context, batchKey string) (*core.CategoryCacheEntry, error) {
	return c.store.get(ctx, batchKey)
}

// Set stores a cache entry
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CategoryCacheEntry) error {
	return c.store.set(ctx, entry)
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, batchKey string) error {
	return c.store.delete(ctx, batchKey)
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	return c.store.cleanup(ctx)
}

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	c.janitor.stop()
	if err := c.store.db.Close(); err != nil {
		c.store.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
