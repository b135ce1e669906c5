package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/llm-review-triage/internal/core"
)

type stoppableCache interface {
	core.CategoryCache
	Stop()
}

func backends(t *testing.T) map[string]stoppableCache {
	t.Helper()

	sqlite, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), nil, time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}

	return map[string]stoppableCache{
		"memory": NewMemoryCache(nil, time.Hour),
		"sqlite": sqlite,
	}
}

func entry(key string, ttl time.Duration) *core.CategoryCacheEntry {
	now := time.Now()
	return &core.CategoryCacheEntry{
		BatchKey:  key,
		Labels:    []core.CategoryLabel{core.CategoryBM, core.CategoryUnclassified, core.CategoryUX},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	for name, cache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer cache.Stop()
			ctx := context.Background()

			missing, err := cache.Get(ctx, "absent")
			if err != nil || missing != nil {
				t.Fatalf("Get(absent) = %v, %v, want nil, nil", missing, err)
			}

			want := entry("batch-1", time.Hour)
			if err := cache.Set(ctx, want); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err := cache.Get(ctx, "batch-1")
			if err != nil || got == nil {
				t.Fatalf("Get = %v, %v", got, err)
			}
			if len(got.Labels) != len(want.Labels) {
				t.Fatalf("labels = %v, want %v", got.Labels, want.Labels)
			}
			for i := range want.Labels {
				if got.Labels[i] != want.Labels[i] {
					t.Errorf("label[%d] = %q, want %q", i, got.Labels[i], want.Labels[i])
				}
			}

			// overwrite keeps a single entry per key
			updated := entry("batch-1", time.Hour)
			updated.Labels = []core.CategoryLabel{core.CategoryContent}
			if err := cache.Set(ctx, updated); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, _ = cache.Get(ctx, "batch-1")
			if got == nil || len(got.Labels) != 1 || got.Labels[0] != core.CategoryContent {
				t.Errorf("after overwrite Get = %+v", got)
			}

			if err := cache.Delete(ctx, "batch-1"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if got, _ := cache.Get(ctx, "batch-1"); got != nil {
				t.Errorf("Get after Delete = %+v, want nil", got)
			}
		})
	}
}

func TestCacheExpiry(t *testing.T) {
	for name, cache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer cache.Stop()
			ctx := context.Background()

			if err := cache.Set(ctx, entry("expired", -time.Minute)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := cache.Set(ctx, entry("fresh", time.Hour)); err != nil {
				t.Fatalf("Set: %v", err)
			}

			if got, _ := cache.Get(ctx, "expired"); got != nil {
				t.Errorf("expired entry returned: %+v", got)
			}

			if err := cache.Cleanup(ctx); err != nil {
				t.Fatalf("Cleanup: %v", err)
			}
			if got, _ := cache.Get(ctx, "fresh"); got == nil {
				t.Error("Cleanup removed a fresh entry")
			}
		})
	}
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	cache := NewMemoryCache(nil, time.Hour)
	defer cache.Stop()
	ctx := context.Background()

	e := entry("k", time.Hour)
	_ = cache.Set(ctx, e)
	e.Labels[0] = core.CategoryTechnical

	got, _ := cache.Get(ctx, "k")
	if got.Labels[0] != core.CategoryBM {
		t.Error("cache entry aliased the caller's slice")
	}
}

func TestCategoryClassifierWithSQLiteCache(t *testing.T) {
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), nil, time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	defer cache.Stop()

	gen := &countingGenerator{answer: "Operations"}
	classifier := core.NewCategoryClassifier(gen, cache, nil, nil, core.CategoryOptions{
		CacheEnabled: true,
		CacheTTL:     time.Hour,
	})

	contents := []string{"event rewards never arrived", "maintenance took all day"}
	classifier.Classify(context.Background(), contents)
	classifier.Classify(context.Background(), contents)

	if gen.calls != len(contents) {
		t.Errorf("generator called %d times, want %d", gen.calls, len(contents))
	}
}

type countingGenerator struct {
	answer string
	calls  int
}

func (g *countingGenerator) Generate(context.Context, *core.GenerationRequest) (*core.Generation, error) {
	g.calls++
	return &core.Generation{Text: g.answer}, nil
}
