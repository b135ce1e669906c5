package factory

import (
	"context"
	"fmt"

	"github.com/mikey/llm-review-triage/internal/adapters/offline"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// Supported llm.provider values
const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
	ProviderOffline = "offline"
)

// LLMFactory creates text generators
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextGenerator creates a text generator for the configured provider
func (f *LLMFactory) CreateTextGenerator(ctx context.Context) (core.TextGenerator, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Creating text generator", zap.String("provider", llmConfig.Provider))

	switch llmConfig.Provider {
	case ProviderOpenAI:
		return NewOpenAIFactory(f.cfg, f.logger).CreateTextGenerator()
	case ProviderGemini:
		return NewGeminiFactory(f.cfg, f.logger).CreateTextGenerator(ctx)
	case ProviderBedrock:
		return NewBedrockFactory(f.cfg, f.logger).CreateTextGenerator(ctx)
	case ProviderOffline:
		f.logger.Warn("Offline provider selected, urgency will come from the estimator only")
		return offline.NewGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
