package factory

import (
	"context"
	"errors"

	"github.com/mikey/llm-review-triage/internal/adapters/gemini"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// GeminiFactory creates Gemini text generators
type GeminiFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger) *GeminiFactory {
	return &GeminiFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextGenerator creates a Gemini client
func (f *GeminiFactory) CreateTextGenerator(ctx context.Context) (core.TextGenerator, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, errors.New("gemini API key is required (set GEMINI_API_KEY)")
	}

	return gemini.NewGeminiClient(ctx, geminiCfg.APIKey, geminiCfg.ModelName, f.logger)
}
