package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mikey/llm-review-triage/internal/core"
)

// TextWriter renders an aligned plain-text table
type TextWriter struct{}

// NewTextWriter creates a new text report writer
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// Write renders the top reviews and the batch stats
func (tw *TextWriter) Write(w io.Writer, result *core.BatchResult, top int) error {
	ranked := rows(result, top)

	fmt.Fprintf(w, "Run %s: %d reviews analyzed, top %d by urgency\n\n", result.RunID, len(result.Reviews), len(ranked))

	t := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(t, "#\tDATE\tRATING\tUPVOTES\tURGENCY\tCATEGORY\tREASON\tREVIEW")
	for _, r := range ranked {
		fmt.Fprintf(t, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.Rank,
			r.Timestamp.Format(timeLayout),
			formatRating(r.Rating),
			r.Upvotes,
			formatUrgency(r.Urgency),
			r.Category,
			singleLine(r.Reason),
			singleLine(r.Content))
	}
	if err := t.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	sections := []struct {
		title   string
		buckets []bucket
	}{
		{"Rating distribution", ratingBuckets(result.Stats)},
		{"Category distribution", categoryBuckets(result.Stats)},
	}
	for _, section := range sections {
		fmt.Fprintf(w, "\n%s\n", section.title)
		t = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, b := range section.buckets {
			fmt.Fprintf(t, "  %s\t%d\n", b.Label, b.Count)
		}
		if err := t.Flush(); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if result.Stats.EstimatorFallbacks > 0 {
		fmt.Fprintf(w, "\n%d of %d urgency scores came from the rating/upvote estimator\n",
			result.Stats.EstimatorFallbacks, len(result.Reviews))
	}

	return nil
}
