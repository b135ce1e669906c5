package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"
)

// ValkeyCache is a Valkey implementation of the CategoryCache interface.
// Expiry is delegated to the server.
type ValkeyCache struct {
	client    valkey.Client
	keyPrefix string
	logger    *zap.Logger
}

type valkeyEntry struct {
	Labels    []core.CategoryLabel `json:"labels"`
	CreatedAt time.Time            `json:"created_at"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// NewValkeyCache connects to a Valkey server and verifies it with a ping
func NewValkeyCache(ctx context.Context, address, password, keyPrefix string, logger *zap.Logger) (*ValkeyCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{address},
		Password:         password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	logger.Info("Connected to Valkey category cache", zap.String("address", address))

	return NewValkeyCacheWithClient(client, keyPrefix, logger), nil
}

// NewValkeyCacheWithClient wraps an existing client
func NewValkeyCacheWithClient(client valkey.Client, keyPrefix string, logger *zap.Logger) *ValkeyCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValkeyCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Get retrieves the entry for a batch key, nil when absent or expired
func (c *ValkeyCache) Get(ctx context.Context, batchKey string) (*core.CategoryCacheEntry, error) {
	data, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(batchKey)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var stored valkeyEntry
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cached entry: %w", err)
	}

	return &core.CategoryCacheEntry{
		BatchKey:  batchKey,
		Labels:    stored.Labels,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Set stores a cache entry with the remaining lifetime as server-side expiry
func (c *ValkeyCache) Set(ctx context.Context, entry *core.CategoryCacheEntry) error {
	seconds := int64(time.Until(entry.ExpiresAt).Seconds())
	if seconds < 1 {
		return nil
	}

	data, err := json.Marshal(valkeyEntry{
		Labels:    entry.Labels,
		CreatedAt: entry.CreatedAt,
		ExpiresAt: entry.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	cmd := c.client.B().Set().Key(c.key(entry.BatchKey)).Value(string(data)).ExSeconds(seconds).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *ValkeyCache) Delete(ctx context.Context, batchKey string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(c.key(batchKey)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op: keys expire on the server
func (c *ValkeyCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the client
func (c *ValkeyCache) Stop() {
	c.client.Close()
}

func (c *ValkeyCache) key(batchKey string) string {
	return c.keyPrefix + batchKey
}
