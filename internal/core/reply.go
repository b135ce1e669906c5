package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/llm-review-triage/internal/utils"
	"go.uber.org/zap"
)

// SanitizationMandate is embedded verbatim in every reply instruction
const SanitizationMandate = "Any slang, profanity, or informal or metaphorical expression (for example '현질', '현금박치기', '쪼렙', '오지게', 'whaling', 'noob', 'hella') must never be repeated verbatim: always rewrite it into official, neutral terms such as 'paid purchase', 'in-game payment', 'beginner' and 'very', and refer to profanity only as 'inappropriate language'."

const replySystemPrompt = "You are a customer-support agent for a game service and you must always rewrite informal language into neutral, official terms when replying. " + SanitizationMandate

const replyPromptFormat = `Review: "%s"
Reply style: %s
Answer the review above as an official and neutral customer-support response.
The reply must acknowledge the inconvenience, apologize, explain the cause where possible, give the next step or point to the support channel, and close politely.
%s`

// ReplyOptions tunes the reply request
type ReplyOptions struct {
	Temperature    float32
	MaxTokens      int
	MaxContentSize int
	RequestTimeout time.Duration
}

// ReplyGenerator drafts style-conditioned, sanitized support replies
type ReplyGenerator struct {
	generator     TextGenerator
	rewriter      TextRewriter
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	opts          ReplyOptions
}

// NewReplyGenerator creates a new reply generator
func NewReplyGenerator(
	generator TextGenerator,
	rewriter TextRewriter,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	opts ReplyOptions,
) *ReplyGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}
	return &ReplyGenerator{
		generator:     generator,
		rewriter:      rewriter,
		textProcessor: textProcessor,
		logger:        logger,
		opts:          opts,
	}
}

// BuildReplyPrompt formats the reply instruction for a review and style
func BuildReplyPrompt(content string, style ReplyStyle) string {
	return fmt.Sprintf(replyPromptFormat, content, style.Instruction(), SanitizationMandate)
}

// Generate drafts a reply to the review content in the given style
func (g *ReplyGenerator) Generate(ctx context.Context, content string, style ReplyStyle) (string, error) {
	gen, err := g.GenerateReply(ctx, content, style)
	if err != nil {
		return "", err
	}
	return gen.Text, nil
}

// GenerateReply is Generate that also reports which model answered.
// Unlike urgency analysis, failures are returned to the caller.
func (g *ReplyGenerator) GenerateReply(ctx context.Context, content string, style ReplyStyle) (*Generation, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if style.Instruction() == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	if g.generator == nil {
		return nil, fmt.Errorf("%w: no text generator configured", ErrReplyFailed)
	}

	processed := g.textProcessor.ProcessText(content, g.opts.MaxContentSize)

	ctx, cancel := withRequestTimeout(ctx, g.opts.RequestTimeout)
	defer cancel()

	gen, err := g.generator.Generate(ctx, &GenerationRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: replySystemPrompt},
			{Role: RoleUser, Content: BuildReplyPrompt(processed, style)},
		},
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReplyFailed, err)
	}

	text := strings.TrimSpace(gen.Text)
	if text == "" {
		return nil, ErrEmptyReply
	}

	if g.rewriter != nil {
		if hits := g.rewriter.Find(text); len(hits) > 0 {
			g.logger.Warn("Reply contained informal terms, rewriting",
				zap.Strings("terms", hits),
				zap.String("style", string(style)))
			text = g.rewriter.Rewrite(text)
		}
	}

	return &Generation{Text: text, Model: gen.Model, ID: gen.ID}, nil
}
