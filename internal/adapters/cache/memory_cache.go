package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the CategoryCache interface
type MemoryCache struct {
	entries map[string]*core.CategoryCacheEntry
	mu      sync.RWMutex
	logger  *zap.Logger
	janitor *janitor
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := &MemoryCache{
		entries: make(map[string]*core.CategoryCacheEntry),
		logger:  logger,
	}
	cache.janitor = startJanitor(cache, cleanupFreq, logger)
	return cache
}

// Get retrieves the entry for a batch key, nil when absent or expired
func (c *MemoryCache) Get(ctx context.Context, batchKey string) (*core.CategoryCacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[batchKey]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, nil
	}

	return cloneEntry(entry), nil
}

// Set stores a cache entry
func (c *MemoryCache) Set(ctx context.Context, entry *core.CategoryCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.BatchKey] = cloneEntry(entry)
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, batchKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, batchKey)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	c.janitor.stop()
}

func cloneEntry(entry *core.CategoryCacheEntry) *core.CategoryCacheEntry {
	clone := *entry
	clone.Labels = append([]core.CategoryLabel(nil), entry.Labels...)
	return &clone
}
