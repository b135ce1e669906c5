package factory

import (
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/mikey/llm-review-triage/internal/utils"
	"go.uber.org/zap"
)

// ServiceFactory assembles the classifiers and the triage service from configuration
type ServiceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, logger *zap.Logger) *ServiceFactory {
	return &ServiceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEstimator creates the rating/upvote urgency estimator
func (f *ServiceFactory) CreateEstimator() *core.Estimator {
	analysis := f.cfg.GetAnalysis()
	return core.NewEstimator(analysis.RatingMax, analysis.UpvoteCap)
}

// CreateUrgencyClassifier creates the urgency classifier
func (f *ServiceFactory) CreateUrgencyClassifier(
	generator core.TextGenerator,
	estimator *core.Estimator,
	textProcessor *utils.TextProcessor,
) (*core.UrgencyClassifier, error) {
	llmCfg, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}
	urgencyCfg := f.cfg.GetUrgency()

	return core.NewUrgencyClassifier(generator, estimator, textProcessor, f.logger, core.UrgencyOptions{
		Temperature:    urgencyCfg.Temperature,
		MaxTokens:      urgencyCfg.MaxTokens,
		MaxContentSize: llmCfg.MaxContentSize,
		RequestTimeout: llmCfg.RequestTimeout,
	}), nil
}

// CreateCategoryClassifier creates the category classifier; a nil cache disables memoization
func (f *ServiceFactory) CreateCategoryClassifier(
	generator core.TextGenerator,
	cache core.CategoryCache,
	textProcessor *utils.TextProcessor,
) (*core.CategoryClassifier, error) {
	llmCfg, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}
	categoryCfg := f.cfg.GetCategory()

	return core.NewCategoryClassifier(generator, cache, textProcessor, f.logger, core.CategoryOptions{
		Temperature:          categoryCfg.Temperature,
		MaxTokens:            categoryCfg.MaxTokens,
		MaxContentSize:       llmCfg.MaxContentSize,
		RequestTimeout:       llmCfg.RequestTimeout,
		CacheEnabled:         cacheCfg.Enabled && cache != nil,
		CacheTTL:             cacheCfg.TTL,
		InvalidateOnNewBatch: categoryCfg.InvalidateOnNewBatch,
	}), nil
}

// CreateReplyGenerator creates the reply generator
func (f *ServiceFactory) CreateReplyGenerator(
	generator core.TextGenerator,
	rewriter core.TextRewriter,
	textProcessor *utils.TextProcessor,
) (*core.ReplyGenerator, error) {
	llmCfg, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}
	replyCfg := f.cfg.GetReply()

	return core.NewReplyGenerator(generator, rewriter, textProcessor, f.logger, core.ReplyOptions{
		Temperature:    replyCfg.Temperature,
		MaxTokens:      replyCfg.MaxTokens,
		MaxContentSize: llmCfg.MaxContentSize,
		RequestTimeout: llmCfg.RequestTimeout,
	}), nil
}

// CreateTriageService wires the classifiers into the triage service
func (f *ServiceFactory) CreateTriageService(
	urgency *core.UrgencyClassifier,
	categories *core.CategoryClassifier,
	replies *core.ReplyGenerator,
	sentiment core.SentimentScorer,
) *core.TriageService {
	analysis := f.cfg.GetAnalysis()
	return core.NewTriageService(urgency, categories, replies, sentiment, f.logger, core.AnalysisOptions{
		DefaultBatchSize: analysis.DefaultBatchSize,
		MaxBatchSize:     analysis.MaxBatchSize,
	})
}
