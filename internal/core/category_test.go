package core

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestParseCategoryLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want CategoryLabel
	}{
		{"BM", CategoryBM},
		{"  Technical\n", CategoryTechnical},
		{"Operations", CategoryOperations},
		{"UX", CategoryUX},
		{"Content", CategoryContent},
		{"BM.", CategoryUnclassified},
		{"bm", CategoryUnclassified},
		{"", CategoryUnclassified},
		{"The category is UX", CategoryUnclassified},
		{"Unclassified", CategoryUnclassified},
	}

	for _, tt := range tests {
		if got := ParseCategoryLabel(tt.raw); got != tt.want {
			t.Errorf("ParseCategoryLabel(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestBatchKey(t *testing.T) {
	a := BatchKey([]string{"ab", "c"})
	b := BatchKey([]string{"a", "bc"})
	if a == b {
		t.Error("BatchKey should distinguish item boundaries")
	}
	if BatchKey([]string{"x", "y"}) == BatchKey([]string{"y", "x"}) {
		t.Error("BatchKey should depend on order")
	}
	if BatchKey([]string{"x", "y"}) != BatchKey([]string{"x", "y"}) {
		t.Error("BatchKey should be deterministic")
	}
}

func TestCategoryClassifierLabelsEveryItem(t *testing.T) {
	gen := &scriptedGenerator{answers: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "refund"):
			return "BM", nil
		case strings.Contains(prompt, "crash"):
			return " Technical ", nil
		case strings.Contains(prompt, "offline"):
			return "", errGeneratorDown
		}
		return "Something else.", nil
	}}
	c := NewCategoryClassifier(gen, nil, nil, nil, CategoryOptions{})

	contents := []string{"I want a refund", "crash after update", "servers offline", "love it"}
	got := c.Classify(context.Background(), contents)

	want := []CategoryLabel{CategoryBM, CategoryTechnical, CategoryUnclassified, CategoryUnclassified}
	if len(got) != len(want) {
		t.Fatalf("Classify returned %d labels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCategoryClassifierEmptyInput(t *testing.T) {
	gen := constantGenerator("BM")
	c := NewCategoryClassifier(gen, newMapCache(), nil, nil, CategoryOptions{CacheEnabled: true})

	got := c.Classify(context.Background(), nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("Classify(nil) = %v, want empty slice", got)
	}
	if gen.calls() != 0 {
		t.Errorf("generator called %d times for empty input", gen.calls())
	}
}

func TestCategoryClassifierMemoizesBatch(t *testing.T) {
	gen := constantGenerator("UX")
	cache := newMapCache()
	c := NewCategoryClassifier(gen, cache, nil, nil, CategoryOptions{
		CacheEnabled: true,
		CacheTTL:     time.Hour,
	})

	contents := []string{"menu is confusing", "buttons too small"}
	first := c.Classify(context.Background(), contents)
	calls := gen.calls()
	if calls != len(contents) {
		t.Fatalf("first run made %d calls, want %d", calls, len(contents))
	}

	second := c.Classify(context.Background(), contents)
	if gen.calls() != calls {
		t.Errorf("second run made %d extra calls, want none", gen.calls()-calls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cached label[%d] = %q, want %q", i, second[i], first[i])
		}
	}
}

func TestCategoryClassifierSkipsCacheOnFailure(t *testing.T) {
	cache := newMapCache()
	c := NewCategoryClassifier(failingGenerator(), cache, nil, nil, CategoryOptions{CacheEnabled: true})

	c.Classify(context.Background(), []string{"anything"})
	if cache.size() != 0 {
		t.Errorf("cache holds %d entries after a failed batch, want 0", cache.size())
	}
}

func TestCategoryClassifierInvalidation(t *testing.T) {
	gen := constantGenerator("Content")
	cache := newMapCache()
	c := NewCategoryClassifier(gen, cache, nil, nil, CategoryOptions{
		CacheEnabled:         true,
		InvalidateOnNewBatch: true,
	})
	ctx := context.Background()

	batchA := []string{"not enough quests"}
	batchB := []string{"story is too short"}

	c.Classify(ctx, batchA)
	c.Classify(ctx, batchB)
	if _, ok := cache.entries[BatchKey(batchA)]; ok {
		t.Error("previous batch should be evicted when a new batch arrives")
	}
	if _, ok := cache.entries[BatchKey(batchB)]; !ok {
		t.Error("current batch should be cached")
	}

	c.Invalidate(ctx)
	if cache.size() != 0 {
		t.Errorf("cache holds %d entries after Invalidate, want 0", cache.size())
	}

	before := gen.calls()
	c.Classify(ctx, batchB)
	if gen.calls() == before {
		t.Error("classification after Invalidate should call the generator again")
	}
}
