package openai

import (
	"context"
	"fmt"

	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the TextGenerator interface using OpenAI
type OpenAIClient struct {
	client    *openai.Client
	modelName string
	logger    *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. An empty baseURL keeps the
// public API endpoint.
func NewOpenAIClient(apiKey, baseURL, modelName string, logger *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientCfg),
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Generate runs one chat completion
func (c *OpenAIClient) Generate(ctx context.Context, req *core.GenerationRequest) (*core.Generation, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("OpenAI completion received",
		zap.String("id", resp.ID),
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	model := resp.Model
	if model == "" {
		model = c.modelName
	}

	return &core.Generation{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
		ID:    resp.ID,
	}, nil
}

func chatRole(role core.Role) string {
	if role == core.RoleSystem {
		return openai.ChatMessageRoleSystem
	}
	return openai.ChatMessageRoleUser
}
