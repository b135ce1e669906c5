package factory

import (
	"errors"

	"github.com/mikey/llm-review-triage/internal/adapters/openai"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// OpenAIFactory creates OpenAI text generators
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextGenerator creates an OpenAI chat completion client
func (f *OpenAIFactory) CreateTextGenerator() (core.TextGenerator, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, errors.New("openai API key is required (set OPENAI_API_KEY)")
	}

	return openai.NewOpenAIClient(openaiCfg.APIKey, openaiCfg.BaseURL, openaiCfg.ModelName, f.logger)
}
