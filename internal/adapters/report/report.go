package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/llm-review-triage/internal/core"
)

const timeLayout = "2006-01-02 15:04"

// Supported output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Formats lists every supported output format
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatHTML}

// row is the presentation view of one ranked review
type row struct {
	Rank      int
	ID        int
	Timestamp time.Time
	Rating    float64
	Upvotes   int
	Content   string
	Urgency   float64
	Reason    string
	Source    core.AssessmentSource
	Category  core.CategoryLabel
	Sentiment float64
}

type bucket struct {
	Label string
	Count int
}

// rows returns the top n reviews of a result; n <= 0 selects all of them
func rows(result *core.BatchResult, n int) []row {
	if n <= 0 {
		n = len(result.Reviews)
	}
	top := core.Top(result, n)

	out := make([]row, 0, len(top))
	for i, r := range top {
		out = append(out, row{
			Rank:      i + 1,
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Rating:    r.Rating,
			Upvotes:   r.UpvoteCount,
			Content:   r.Content,
			Urgency:   r.Urgency.Score,
			Reason:    r.Urgency.Reason,
			Source:    r.Urgency.Source,
			Category:  r.Category,
			Sentiment: r.Sentiment,
		})
	}
	return out
}

func ratingBuckets(stats core.BatchStats) []bucket {
	ratings := make([]int, 0, len(stats.RatingHistogram))
	for rating := range stats.RatingHistogram {
		ratings = append(ratings, rating)
	}
	sort.Ints(ratings)

	out := make([]bucket, 0, len(ratings))
	for _, rating := range ratings {
		out = append(out, bucket{Label: strconv.Itoa(rating) + "★", Count: stats.RatingHistogram[rating]})
	}
	return out
}

func categoryBuckets(stats core.BatchStats) []bucket {
	labels := append(append([]core.CategoryLabel(nil), core.ClassifiableCategories...), core.CategoryUnclassified)

	out := make([]bucket, 0, len(labels))
	for _, label := range labels {
		if count := stats.CategoryDistribution[label]; count > 0 {
			out = append(out, bucket{Label: string(label), Count: count})
		}
	}
	return out
}

func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64) + "★"
}

func formatUrgency(urgency float64) string {
	return fmt.Sprintf("%.2f", urgency)
}

// singleLine collapses all whitespace runs, newlines included, to one space
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
