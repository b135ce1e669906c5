package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-review-triage/internal/adapters/bedrock"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// BedrockFactory creates Bedrock text generators
type BedrockFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewBedrockFactory creates a new Bedrock factory
func NewBedrockFactory(cfg *config.Config, logger *zap.Logger) *BedrockFactory {
	return &BedrockFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextGenerator creates a Bedrock runtime client using the default AWS credential chain
func (f *BedrockFactory) CreateTextGenerator(ctx context.Context) (core.TextGenerator, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(bedrockCfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return bedrock.NewBedrockClient(
		bedrockruntime.NewFromConfig(awsCfg),
		bedrockCfg.ModelID,
		bedrockCfg.TopP,
		f.logger,
	), nil
}
