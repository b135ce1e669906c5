package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikey/llm-review-triage/internal/core"
)

// Subject returns the one-line summary used as mail subject and chat headline
func Subject(draft *core.ReplyDraft) string {
	return fmt.Sprintf("[%s] Reply draft for review #%d (urgency %.2f)",
		draft.Review.Category, draft.Review.ID, draft.Review.Urgency.Score)
}

// Body renders the draft together with the review it answers
func Body(draft *core.ReplyDraft) string {
	var b strings.Builder

	b.WriteString(draft.Text)
	b.WriteString("\n\n-- \n")
	fmt.Fprintf(&b, "Style: %s\n", draft.Style)
	if draft.Model != "" {
		fmt.Fprintf(&b, "Model: %s\n", draft.Model)
	}
	fmt.Fprintf(&b, "Review #%d, %g stars, %d upvotes, %s\n",
		draft.Review.ID, draft.Review.Rating, draft.Review.UpvoteCount,
		draft.Review.Timestamp.Format("2006-01-02 15:04"))
	if draft.Review.Urgency.Reason != "" {
		fmt.Fprintf(&b, "Urgency reason: %s\n", draft.Review.Urgency.Reason)
	}
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimSpace(draft.Review.Content), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func generatedAt(draft *core.ReplyDraft) time.Time {
	if draft.GeneratedAt.IsZero() {
		return time.Now()
	}
	return draft.GeneratedAt
}
