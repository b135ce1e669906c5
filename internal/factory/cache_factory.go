package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-review-triage/internal/adapters/cache"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates category caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCategoryCache creates a category cache based on the configuration.
// A disabled cache yields nil, which the classifier treats as no memoization.
func (f *CacheFactory) CreateCategoryCache(ctx context.Context) (core.CategoryCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}
	if !cacheCfg.Enabled {
		f.logger.Info("Category cache disabled")
		return nil, nil
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, cacheCfg.CleanupFrequency), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, f.logger, cacheCfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(ctx, cacheCfg.MySQLDSN, f.logger, cacheCfg.CleanupFrequency)
	case "valkey":
		return cache.NewValkeyCache(ctx, cacheCfg.ValkeyAddress, cacheCfg.ValkeyPassword, cacheCfg.ValkeyKeyPrefix, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}
