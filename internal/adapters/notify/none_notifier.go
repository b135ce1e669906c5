package notify

import (
	"context"

	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// NoneNotifier only logs the draft; it is used when no delivery channel is configured
type NoneNotifier struct {
	logger *zap.Logger
}

// NewNoneNotifier creates a notifier that delivers nothing
func NewNoneNotifier(logger *zap.Logger) *NoneNotifier {
	return &NoneNotifier{logger: logger}
}

// Notify logs the draft subject and returns
func (n *NoneNotifier) Notify(ctx context.Context, draft *core.ReplyDraft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Debug("Reply draft not delivered, no notifier configured",
		zap.String("subject", Subject(draft)))
	return nil
}
