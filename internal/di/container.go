package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-review-triage/internal/adapters/loader"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/mikey/llm-review-triage/internal/factory"
	"github.com/mikey/llm-review-triage/internal/ports"
	"github.com/mikey/llm-review-triage/internal/utils"
)

// BuildContainer creates a dependency injection container around an already
// loaded configuration and logger
func BuildContainer(cfg *config.Config, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}

	if err := registerApplication(container); err != nil {
		return nil, err
	}
	return container, nil
}

// registerApplication registers every component that only depends on
// *config.Config and *zap.Logger
func registerApplication(container *dig.Container) error {
	// Register factories
	providers := []interface{}{
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewTextProcessorFactory,
		factory.NewServiceFactory,
		factory.NewReportFactory,
		factory.NewNotifierFactory,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return err
		}
	}

	// Register text generator
	if err := container.Provide(func(f *factory.LLMFactory) (core.TextGenerator, error) {
		return f.CreateTextGenerator(context.Background())
	}); err != nil {
		return err
	}

	// Register category cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.CategoryCache, error) {
		return f.CreateCategoryCache(context.Background())
	}); err != nil {
		return err
	}

	// Register text helpers
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) (core.TextRewriter, error) {
		return f.CreateRewriter()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) core.SentimentScorer {
		return f.CreateSentimentScorer()
	}); err != nil {
		return err
	}

	// Register classifiers
	if err := container.Provide(func(f *factory.ServiceFactory) *core.Estimator {
		return f.CreateEstimator()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		generator core.TextGenerator,
		estimator *core.Estimator,
		tp *utils.TextProcessor,
	) (*core.UrgencyClassifier, error) {
		return f.CreateUrgencyClassifier(generator, estimator, tp)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		generator core.TextGenerator,
		cache core.CategoryCache,
		tp *utils.TextProcessor,
	) (*core.CategoryClassifier, error) {
		return f.CreateCategoryClassifier(generator, cache, tp)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		generator core.TextGenerator,
		rewriter core.TextRewriter,
		tp *utils.TextProcessor,
	) (*core.ReplyGenerator, error) {
		return f.CreateReplyGenerator(generator, rewriter, tp)
	}); err != nil {
		return err
	}

	// Register triage service
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		urgency *core.UrgencyClassifier,
		categories *core.CategoryClassifier,
		replies *core.ReplyGenerator,
		sentiment core.SentimentScorer,
	) *core.TriageService {
		return f.CreateTriageService(urgency, categories, replies, sentiment)
	}); err != nil {
		return err
	}

	// Register outer ports
	if err := container.Provide(func(logger *zap.Logger) ports.ReviewLoader {
		return loader.NewCSVLoader(logger)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ReportFactory) (ports.ReportWriter, error) {
		return f.CreateReportWriter()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.NotifierFactory) (ports.ReplyNotifier, error) {
		return f.CreateReplyNotifier()
	}); err != nil {
		return err
	}

	return nil
}
