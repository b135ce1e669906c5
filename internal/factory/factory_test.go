package factory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mikey/llm-review-triage/internal/adapters/cache"
	"github.com/mikey/llm-review-triage/internal/adapters/notify"
	"github.com/mikey/llm-review-triage/internal/adapters/offline"
	"github.com/mikey/llm-review-triage/internal/adapters/report"
	"github.com/mikey/llm-review-triage/internal/config"
	"go.uber.org/zap"
)

func newTestConfig(t *testing.T, overrides map[string]interface{}) *config.Config {
	t.Helper()
	cfg := config.NewFromViper(config.NewEmptyViper())
	for key, value := range overrides {
		cfg.Set(key, value)
	}
	return cfg
}

func TestLLMFactory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{"offline", ProviderOffline, false},
		{"openai without key", ProviderOpenAI, true},
		{"gemini without key", ProviderGemini, true},
		{"unknown provider", "mystery", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t, map[string]interface{}{"llm.provider": tt.provider})
			gen, err := NewLLMFactory(cfg, zap.NewNop()).CreateTextGenerator(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %T", gen)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTextGenerator: %v", err)
			}
			if _, ok := gen.(*offline.Generator); !ok {
				t.Errorf("got %T, want *offline.Generator", gen)
			}
		})
	}
}

func TestOpenAIFactoryWithKey(t *testing.T) {
	cfg := newTestConfig(t, map[string]interface{}{
		"llm.provider":   ProviderOpenAI,
		"openai.api_key": "sk-test",
	})
	gen, err := NewLLMFactory(cfg, zap.NewNop()).CreateTextGenerator(context.Background())
	if err != nil {
		t.Fatalf("CreateTextGenerator: %v", err)
	}
	if gen == nil {
		t.Fatal("expected a generator")
	}
}

func TestCacheFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		c, err := NewCacheFactory(newTestConfig(t, nil), zap.NewNop()).CreateCategoryCache(ctx)
		if err != nil {
			t.Fatalf("CreateCategoryCache: %v", err)
		}
		mem, ok := c.(*cache.MemoryCache)
		if !ok {
			t.Fatalf("got %T, want *cache.MemoryCache", c)
		}
		mem.Stop()
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := newTestConfig(t, map[string]interface{}{"cache.enabled": false})
		c, err := NewCacheFactory(cfg, zap.NewNop()).CreateCategoryCache(ctx)
		if err != nil {
			t.Fatalf("CreateCategoryCache: %v", err)
		}
		if c != nil {
			t.Errorf("got %T, want nil", c)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cache.db")
		cfg := newTestConfig(t, map[string]interface{}{
			"cache.type":        "sqlite",
			"cache.sqlite_path": path,
		})
		c, err := NewCacheFactory(cfg, zap.NewNop()).CreateCategoryCache(ctx)
		if err != nil {
			t.Fatalf("CreateCategoryCache: %v", err)
		}
		sqlite, ok := c.(*cache.SQLiteCache)
		if !ok {
			t.Fatalf("got %T, want *cache.SQLiteCache", c)
		}
		sqlite.Stop()
	})

	t.Run("unsupported", func(t *testing.T) {
		cfg := newTestConfig(t, map[string]interface{}{"cache.type": "floppy"})
		if _, err := NewCacheFactory(cfg, zap.NewNop()).CreateCategoryCache(ctx); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestReportFactory(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{"text", &report.TextWriter{}, false},
		{"JSON", &report.JSONWriter{}, false},
		{"md", &report.MarkdownWriter{}, false},
		{"html", &report.HTMLWriter{}, false},
		{"pdf", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := newTestConfig(t, map[string]interface{}{"report.format": tt.format})
			w, err := NewReportFactory(cfg).CreateReportWriter()
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateReportWriter: %v", err)
			}
			if got, want := typeName(w), typeName(tt.want); got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}

func TestNotifierFactory(t *testing.T) {
	n, err := NewNotifierFactory(newTestConfig(t, nil), zap.NewNop()).CreateReplyNotifier()
	if err != nil {
		t.Fatalf("CreateReplyNotifier: %v", err)
	}
	if _, ok := n.(*notify.NoneNotifier); !ok {
		t.Errorf("got %T, want *notify.NoneNotifier", n)
	}

	cfg := newTestConfig(t, map[string]interface{}{
		"notify.type":    "smtp",
		"notify.smtp.to": []string{"support@example.test"},
	})
	n, err = NewNotifierFactory(cfg, zap.NewNop()).CreateReplyNotifier()
	if err != nil {
		t.Fatalf("CreateReplyNotifier(smtp): %v", err)
	}
	if _, ok := n.(*notify.SMTPNotifier); !ok {
		t.Errorf("got %T, want *notify.SMTPNotifier", n)
	}

	cfg = newTestConfig(t, map[string]interface{}{"notify.type": "pigeon"})
	if _, err := NewNotifierFactory(cfg, zap.NewNop()).CreateReplyNotifier(); err == nil {
		t.Error("expected an error for an unknown notifier")
	}
}

func TestServiceFactoryUsesConfiguredEstimator(t *testing.T) {
	cfg := newTestConfig(t, map[string]interface{}{"analysis.upvote_cap": 100.0})
	est := NewServiceFactory(cfg, zap.NewNop()).CreateEstimator()

	// upvotes are capped at 100, so 100 and 500 must score the same
	if a, b := est.Estimate(1, 100), est.Estimate(1, 500); a != b {
		t.Errorf("Estimate(1,100) = %v, Estimate(1,500) = %v", a, b)
	}
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
