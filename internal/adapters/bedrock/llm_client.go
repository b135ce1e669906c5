package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

const anthropicVersion = "bedrock-2023-05-31"

// InvokeModelAPI is the part of the Bedrock runtime client used here
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient is an implementation of the TextGenerator interface using Amazon Bedrock
type BedrockClient struct {
	client  InvokeModelAPI
	modelID string
	topP    float32
	logger  *zap.Logger
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(client InvokeModelAPI, modelID string, topP float32, logger *zap.Logger) *BedrockClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BedrockClient{
		client:  client,
		modelID: modelID,
		topP:    topP,
		logger:  logger,
	}
}

// Generate invokes the model with a payload shaped for its family
func (c *BedrockClient) Generate(ctx context.Context, req *core.GenerationRequest) (*core.Generation, error) {
	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, id, err := c.parseResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock response received", zap.String("model_id", c.modelID), zap.Int("length", len(text)))

	return &core.Generation{Text: text, Model: c.modelID, ID: id}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *BedrockClient) buildPayload(req *core.GenerationRequest) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		var system []string
		var messages []anthropicMessage
		for _, m := range req.Messages {
			if m.Role == core.RoleSystem {
				system = append(system, m.Content)
				continue
			}
			messages = append(messages, anthropicMessage{Role: "user", Content: m.Content})
		}
		body := map[string]interface{}{
			"anthropic_version": anthropicVersion,
			"max_tokens":        req.MaxTokens,
			"temperature":       req.Temperature,
			"top_p":             c.topP,
			"messages":          messages,
		}
		if len(system) > 0 {
			body["system"] = strings.Join(system, "\n")
		}
		return json.Marshal(body)
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": flattenPrompt(req.Messages),
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": req.MaxTokens,
				"temperature":   req.Temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      flattenPrompt(req.Messages),
			"max_tokens":  req.MaxTokens,
			"temperature": req.Temperature,
			"top_p":       c.topP,
		})
	}
}

func (c *BedrockClient) parseResponse(body []byte) (string, string, error) {
	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			ID      string `json:"id"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var sb strings.Builder
		for _, block := range claudeResp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", "", fmt.Errorf("empty response from Claude model")
		}
		return sb.String(), claudeResp.ID, nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, "", nil
	default:
		var genericResp struct {
			Generation string `json:"generation"`
			Completion string `json:"completion"`
			Output     string `json:"output"`
			Text       string `json:"text"`
			Outputs    []struct {
				Text string `json:"text"`
			} `json:"outputs"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, candidate := range []string{genericResp.Generation, genericResp.Completion, genericResp.Output, genericResp.Text} {
			if candidate != "" {
				return candidate, "", nil
			}
		}
		if len(genericResp.Outputs) > 0 && genericResp.Outputs[0].Text != "" {
			return genericResp.Outputs[0].Text, "", nil
		}
		return "", "", fmt.Errorf("empty response from Bedrock model %s", c.modelID)
	}
}

// flattenPrompt joins message contents for models without a chat schema
func flattenPrompt(messages []core.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// isAnthropicModel checks if the model is an Anthropic Claude model,
// including cross-region inference profiles such as us.anthropic.*
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.Contains(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.Contains(c.modelID, "amazon.titan")
}
