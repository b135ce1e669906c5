package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CategoryCache interface
type MySQLCache struct {
	store   *sqlStore
	janitor *janitor
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(ctx context.Context, dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}

	db, err := sql.Open("mysql", parsed.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS category_cache (
			batch_key CHAR(64) PRIMARY KEY,
			labels TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_category_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("Connected to MySQL category cache", zap.String("addr", parsed.Addr), zap.String("db", parsed.DBName))

	cache := &MySQLCache{
		store: &sqlStore{
			db:     db,
			logger: logger,
			upsert: func(entry *core.CategoryCacheEntry, labels string) sq.Sqlizer {
				return sq.Insert(tableName).
					Columns("batch_key", "labels", "created_at", "expires_at").
					Values(entry.BatchKey, labels, entry.CreatedAt.Unix(), entry.ExpiresAt.Unix()).
					Suffix("ON DUPLICATE KEY UPDATE labels = VALUES(labels), created_at = VALUES(created_at), expires_at = VALUES(expires_at)")
			},
		},
	}
	cache.janitor = startJanitor(cache, cleanupFreq, logger)

	return cache, nil
}

// Get retrieves the entry for a batch key, nil when absent or expired
func (c *MySQLCache) Get(ctx context.Context, batchKey string) (*core.CategoryCacheEntry, error) {
	return c.store.get(ctx, batchKey)
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.CategoryCacheEntry) error {
	return c.store.set(ctx, entry)
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, batchKey string) error {
	return c.store.delete(ctx, batchKey)
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	return c.store.cleanup(ctx)
}

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	c.janitor.stop()
	if err := c.store.db.Close(); err != nil {
		c.store.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
