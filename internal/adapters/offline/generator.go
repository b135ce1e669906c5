package offline

import (
	"context"
	"errors"

	"github.com/mikey/llm-review-triage/internal/core"
)

// ErrOffline is returned by every call of the offline generator
var ErrOffline = errors.New("text generation is disabled in offline mode")

// Generator is a TextGenerator that never answers. Urgency falls back to the
// estimator and every category becomes Unclassified.
type Generator struct{}

// NewGenerator creates an offline generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate always fails with ErrOffline
func (g *Generator) Generate(ctx context.Context, _ *core.GenerationRequest) (*core.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrOffline
}
