package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/llm-review-triage/internal/utils"
	"go.uber.org/zap"
)

const urgencySystemPrompt = "Return only JSON, exactly like the examples."

const urgencyPromptFormat = `You are an experienced customer-support analyst for a game service. Read the entire review below carefully and, based on the star rating, the upvote count and the overall context and wording of the review, objectively assess how urgently the company needs to respond to it.
Even without specific keywords, weigh every factor the context suggests: service stability, reliability, financial harm, inconvenience to many users, repeatedly reported issues and emotional appeals.
Give a high score when the rating is low, the upvote count is high, or the text itself conveys urgency; give a low score to simple opinions or suggestions that are not recurring issues.
Return the result strictly as JSON like the examples below.
Example: {"urgency":0.97,"reason":"1-star review with many upvotes that strongly demands a refund"}
Example: {"urgency":0.5,"reason":"A suggestion about game systems, low need for urgent response"}
Return only the JSON with no code block, explanation or other text.
Rating: %s stars, Upvotes: %d
Review: "%s"`

// UrgencyOptions tunes the urgency request
type UrgencyOptions struct {
	Temperature    float32
	MaxTokens      int
	MaxContentSize int
	RequestTimeout time.Duration
}

// UrgencyClassifier scores review urgency with a text generator and falls back
// to the deterministic estimator whenever the model answer is unusable
type UrgencyClassifier struct {
	generator     TextGenerator
	estimator     *Estimator
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	opts          UrgencyOptions
}

// NewUrgencyClassifier creates a new urgency classifier
func NewUrgencyClassifier(
	generator TextGenerator,
	estimator *Estimator,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	opts UrgencyOptions,
) *UrgencyClassifier {
	if estimator == nil {
		estimator = DefaultEstimator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}
	return &UrgencyClassifier{
		generator:     generator,
		estimator:     estimator,
		textProcessor: textProcessor,
		logger:        logger,
		opts:          opts,
	}
}

// BuildUrgencyPrompt formats the user instruction for one review
func BuildUrgencyPrompt(review *Review, content string) string {
	rating := strconv.FormatFloat(review.Rating, 'f', -1, 64)
	return fmt.Sprintf(urgencyPromptFormat, rating, review.UpvoteCount, content)
}

// Classify returns the urgency of a review. Failures are absorbed: the
// estimator score is returned with the analysis-failed reason.
func (c *UrgencyClassifier) Classify(ctx context.Context, review *Review) UrgencyAssessment {
	score, reason, err := c.classify(ctx, review)
	if err != nil {
		fallback := c.estimator.EstimateReview(review)
		c.logger.Warn("Urgency analysis failed, using estimator",
			zap.Int("review_id", review.ID),
			zap.Float64("fallback_urgency", fallback),
			zap.Error(err))
		return UrgencyAssessment{
			Score:  fallback,
			Reason: AnalysisFailedReason,
			Source: SourceEstimator,
		}
	}

	c.logger.Debug("Urgency analyzed",
		zap.Int("review_id", review.ID),
		zap.Float64("urgency", score))

	return UrgencyAssessment{Score: score, Reason: reason, Source: SourceModel}
}

func (c *UrgencyClassifier) classify(ctx context.Context, review *Review) (float64, string, error) {
	if c.generator == nil {
		return 0, "", fmt.Errorf("no text generator configured")
	}

	content := c.textProcessor.ProcessText(review.Content, c.opts.MaxContentSize)

	ctx, cancel := withRequestTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	gen, err := c.generator.Generate(ctx, &GenerationRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: urgencySystemPrompt},
			{Role: RoleUser, Content: BuildUrgencyPrompt(review, content)},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to generate urgency: %w", err)
	}

	return ParseUrgencyResponse(gen.Text)
}

type urgencyPayload struct {
	Urgency *float64 `json:"urgency"`
	Reason  *string  `json:"reason"`
}

// ParseUrgencyResponse extracts (urgency, reason) from near-JSON model output:
// trim, strip a leading code fence, turn single quotes into double quotes,
// keep the text between the first '{' and the last '}', then decode.
// A missing urgency reads as 0 and a missing reason as the analysis-failed
// sentinel. An urgency outside [0, 1] is rejected.
func ParseUrgencyResponse(raw string) (float64, string, error) {
	out := strings.TrimSpace(raw)

	if strings.HasPrefix(out, "```") {
		parts := strings.Split(out, "```")
		out = strings.TrimSpace(parts[1])
	}

	out = strings.ReplaceAll(out, "'", "\"")

	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end < start {
		return 0, "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	out = out[start : end+1]

	var payload urgencyPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	urgency := 0.0
	if payload.Urgency != nil {
		urgency = *payload.Urgency
	}
	if urgency < 0 || urgency > 1 {
		return 0, "", fmt.Errorf("%w: urgency %v out of range", ErrMalformedResponse, urgency)
	}

	reason := AnalysisFailedReason
	if payload.Reason != nil && strings.TrimSpace(*payload.Reason) != "" {
		reason = strings.TrimSpace(*payload.Reason)
	}

	return urgency, reason, nil
}

func withRequestTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
