package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var errGeneratorDown = errors.New("generator down")

// scriptedGenerator answers by matching a substring of the last user message
type scriptedGenerator struct {
	mu       sync.Mutex
	answers  func(prompt string) (string, error)
	requests []*GenerationRequest
}

func (g *scriptedGenerator) Generate(ctx context.Context, req *GenerationRequest) (*Generation, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := req.Messages[len(req.Messages)-1].Content
	text, err := g.answers(prompt)
	if err != nil {
		return nil, err
	}
	return &Generation{Text: text, Model: "scripted"}, nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func failingGenerator() *scriptedGenerator {
	return &scriptedGenerator{answers: func(string) (string, error) {
		return "", errGeneratorDown
	}}
}

func constantGenerator(text string) *scriptedGenerator {
	return &scriptedGenerator{answers: func(string) (string, error) {
		return text, nil
	}}
}

// mapCache is an in-test CategoryCache
type mapCache struct {
	mu      sync.Mutex
	entries map[string]*CategoryCacheEntry
	deletes []string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*CategoryCacheEntry)}
}

func (c *mapCache) Get(_ context.Context, key string) (*CategoryCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, nil
	}
	return entry, nil
}

func (c *mapCache) Set(_ context.Context, entry *CategoryCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.BatchKey] = entry
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes = append(c.deletes, key)
	return nil
}

func (c *mapCache) Cleanup(context.Context) error { return nil }

func (c *mapCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type fixedSentiment float64

func (f fixedSentiment) Score(string) float64 { return float64(f) }

// wordRewriter replaces whole substrings, enough to observe rewriting
type wordRewriter map[string]string

func (w wordRewriter) Find(text string) []string {
	var hits []string
	for term := range w {
		if strings.Contains(text, term) {
			hits = append(hits, term)
		}
	}
	return hits
}

func (w wordRewriter) Rewrite(text string) string {
	for term, repl := range w {
		text = strings.ReplaceAll(text, term, repl)
	}
	return text
}
