package core

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/llm-review-triage/internal/utils"
	"go.uber.org/zap"
)

const defaultCategoryCacheTTL = 24 * time.Hour

const categorySystemPrompt = "Return only the category word."

const categoryPromptFormat = `You are a customer-support agent for a game service. For the review below, return the problem category that fits best as exactly one word out of 'BM', 'Technical', 'Operations', 'UX', 'Content' (BM means business model: pricing, payments and monetization). Return only that single word with no explanation, sentence or period. Review: "%s"`

// CategoryOptions tunes category requests and memoization
type CategoryOptions struct {
	Temperature          float32
	MaxTokens            int
	MaxContentSize       int
	RequestTimeout       time.Duration
	CacheEnabled         bool
	CacheTTL             time.Duration
	InvalidateOnNewBatch bool
}

// CategoryClassifier assigns one problem category per review. Results are
// memoized per batch: the same ordered contents never reach the model twice.
type CategoryClassifier struct {
	generator     TextGenerator
	cache         CategoryCache
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	opts          CategoryOptions

	mu      sync.Mutex
	lastKey string
}

// NewCategoryClassifier creates a new category classifier
func NewCategoryClassifier(
	generator TextGenerator,
	cache CategoryCache,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	opts CategoryOptions,
) *CategoryClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}
	return &CategoryClassifier{
		generator:     generator,
		cache:         cache,
		textProcessor: textProcessor,
		logger:        logger,
		opts:          opts,
	}
}

// BatchKey identifies an ordered sequence of review contents
func BatchKey(contents []string) string {
	h := sha256.New()
	var size [8]byte
	for _, content := range contents {
		binary.BigEndian.PutUint64(size[:], uint64(len(content)))
		h.Write(size[:])
		h.Write([]byte(content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BuildCategoryPrompt formats the user instruction for one review
func BuildCategoryPrompt(content string) string {
	return fmt.Sprintf(categoryPromptFormat, content)
}

// Classify returns one label per content, in input order. A failed or
// off-list answer yields Unclassified for that item only.
func (c *CategoryClassifier) Classify(ctx context.Context, contents []string) []CategoryLabel {
	if len(contents) == 0 {
		return []CategoryLabel{}
	}

	key := BatchKey(contents)
	c.startBatch(ctx, key)

	if labels, ok := c.lookup(ctx, key, len(contents)); ok {
		c.logger.Debug("Category cache hit", zap.String("batch_key", key), zap.Int("size", len(labels)))
		return labels
	}

	labels := make([]CategoryLabel, len(contents))
	failures := 0
	for i, content := range contents {
		label, err := c.classifyOne(ctx, content)
		if err != nil {
			failures++
			c.logger.Warn("Category classification failed",
				zap.Int("index", i),
				zap.Error(err))
		}
		labels[i] = label
	}

	// Only fully answered batches are memoized, so a transient outage is retried next run
	if failures == 0 {
		c.store(ctx, key, labels)
	}

	return labels
}

// Invalidate drops the memoized labels of the current batch
func (c *CategoryClassifier) Invalidate(ctx context.Context) {
	c.mu.Lock()
	key := c.lastKey
	c.lastKey = ""
	c.mu.Unlock()

	if key != "" {
		c.drop(ctx, key)
	}
}

func (c *CategoryClassifier) classifyOne(ctx context.Context, content string) (CategoryLabel, error) {
	if c.generator == nil {
		return CategoryUnclassified, fmt.Errorf("no text generator configured")
	}

	processed := c.textProcessor.ProcessText(content, c.opts.MaxContentSize)

	ctx, cancel := withRequestTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	gen, err := c.generator.Generate(ctx, &GenerationRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: categorySystemPrompt},
			{Role: RoleUser, Content: BuildCategoryPrompt(processed)},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return CategoryUnclassified, fmt.Errorf("failed to generate category: %w", err)
	}

	return ParseCategoryLabel(gen.Text), nil
}

// startBatch records the batch key and, when a different batch shows up,
// evicts the previous one
func (c *CategoryClassifier) startBatch(ctx context.Context, key string) {
	c.mu.Lock()
	previous := c.lastKey
	c.lastKey = key
	c.mu.Unlock()

	if c.opts.InvalidateOnNewBatch && previous != "" && previous != key {
		c.drop(ctx, previous)
	}
}

func (c *CategoryClassifier) lookup(ctx context.Context, key string, size int) ([]CategoryLabel, bool) {
	if !c.cacheActive() {
		return nil, false
	}

	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Category cache lookup failed", zap.String("batch_key", key), zap.Error(err))
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	if len(entry.Labels) != size {
		c.logger.Warn("Ignoring category cache entry with wrong size",
			zap.String("batch_key", key),
			zap.Int("expected", size),
			zap.Int("cached", len(entry.Labels)))
		return nil, false
	}

	labels := make([]CategoryLabel, size)
	copy(labels, entry.Labels)
	return labels, true
}

func (c *CategoryClassifier) store(ctx context.Context, key string, labels []CategoryLabel) {
	if !c.cacheActive() {
		return
	}

	ttl := c.opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCategoryCacheTTL
	}

	now := time.Now()
	entry := &CategoryCacheEntry{
		BatchKey:  key,
		Labels:    append([]CategoryLabel(nil), labels...),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := c.cache.Set(ctx, entry); err != nil {
		c.logger.Error("Failed to update category cache", zap.Error(err))
	}
}

func (c *CategoryClassifier) drop(ctx context.Context, key string) {
	if !c.cacheActive() {
		return
	}
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.Warn("Failed to invalidate category cache entry", zap.String("batch_key", key), zap.Error(err))
		return
	}
	c.logger.Debug("Invalidated category cache entry", zap.String("batch_key", key))
}

func (c *CategoryClassifier) cacheActive() bool {
	return c.opts.CacheEnabled && c.cache != nil
}
