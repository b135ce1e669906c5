package factory

import (
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/mikey/llm-review-triage/internal/lexicon"
	"github.com/mikey/llm-review-triage/internal/sentiment"
	"github.com/mikey/llm-review-triage/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory creates the text helpers shared by the classifiers
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateRewriter loads the informal-vocabulary lexicon, merging reply.lexicon_file
// over the built-in terms when one is configured
func (f *TextProcessorFactory) CreateRewriter() (core.TextRewriter, error) {
	path := f.cfg.GetReply().LexiconFile
	if path == "" {
		return lexicon.Default(f.logger), nil
	}
	return lexicon.LoadFile(path, f.logger)
}

// CreateSentimentScorer returns nil when analysis.sentiment is off
func (f *TextProcessorFactory) CreateSentimentScorer() core.SentimentScorer {
	if !f.cfg.GetAnalysis().Sentiment {
		return nil
	}
	return sentiment.NewAnalyzer()
}
