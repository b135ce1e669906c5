package ports

import (
	"context"
	"io"

	"github.com/mikey/llm-review-triage/internal/core"
)

// ReviewLoader defines the interface for reading review exports
type ReviewLoader interface {
	// Load reads reviews from a stream
	Load(ctx context.Context, r io.Reader) ([]core.Review, error)

	// LoadFile reads reviews from a file path
	LoadFile(ctx context.Context, path string) ([]core.Review, error)
}
