package core

import (
	"context"
)

// Role tags a message sent to a text generator
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged instruction
type Message struct {
	Role    Role
	Content string
}

// GenerationRequest describes a single text-generation call
type GenerationRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Generation is the raw output of a text generator
type Generation struct {
	Text  string
	Model string
	ID    string
}

// TextGenerator defines the interface for interacting with LLM services.
// Output is untrusted: callers must parse it defensively.
type TextGenerator interface {
	// Generate runs one completion request
	Generate(ctx context.Context, req *GenerationRequest) (*Generation, error)
}

// CategoryCache defines the interface for memoizing category results per batch
type CategoryCache interface {
	// Get retrieves the entry stored for a batch key
	Get(ctx context.Context, batchKey string) (*CategoryCacheEntry, error)

	// Set stores an entry
	Set(ctx context.Context, entry *CategoryCacheEntry) error

	// Delete removes an entry
	Delete(ctx context.Context, batchKey string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// SentimentScorer rates the polarity of a text in [-1, 1]
type SentimentScorer interface {
	Score(text string) float64
}

// TextRewriter rewrites informal vocabulary into neutral register
type TextRewriter interface {
	Find(text string) []string
	Rewrite(text string) string
}
