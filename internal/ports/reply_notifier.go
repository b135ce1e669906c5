package ports

import (
	"context"

	"github.com/mikey/llm-review-triage/internal/core"
)

// ReplyNotifier defines the interface for delivering reply drafts
type ReplyNotifier interface {
	// Notify delivers a draft to the support team
	Notify(ctx context.Context, draft *core.ReplyDraft) error
}
