package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/mikey/llm-review-triage/internal/sentiment"
)

// JSONWriter renders the report as an indented JSON document
type JSONWriter struct{}

// NewJSONWriter creates a new JSON report writer
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

type jsonReview struct {
	Rank          int       `json:"rank"`
	ID            int       `json:"id"`
	Timestamp     time.Time `json:"at"`
	Rating        float64   `json:"score"`
	Upvotes       int       `json:"thumbsUpCount"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	Urgency       float64   `json:"urgency"`
	UrgencyReason string    `json:"reason"`
	UrgencySource string    `json:"urgency_source"`
	Sentiment     float64   `json:"sentiment"`
	Mood          string    `json:"sentiment_label"`
}

type jsonStats struct {
	RatingHistogram      map[int]int    `json:"rating_histogram"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	EstimatorFallbacks   int            `json:"estimator_fallbacks"`
}

type jsonReport struct {
	RunID      string       `json:"run_id"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
	Analyzed   int          `json:"analyzed"`
	Top        []jsonReview `json:"top"`
	Stats      jsonStats    `json:"stats"`
}

// Write renders the top reviews and the batch stats
func (jw *JSONWriter) Write(w io.Writer, result *core.BatchResult, top int) error {
	ranked := rows(result, top)

	doc := jsonReport{
		RunID:      result.RunID,
		AnalyzedAt: result.AnalyzedAt,
		Analyzed:   len(result.Reviews),
		Top:        make([]jsonReview, 0, len(ranked)),
		Stats: jsonStats{
			RatingHistogram:      result.Stats.RatingHistogram,
			CategoryDistribution: make(map[string]int, len(result.Stats.CategoryDistribution)),
			EstimatorFallbacks:   result.Stats.EstimatorFallbacks,
		},
	}

	for _, r := range ranked {
		doc.Top = append(doc.Top, jsonReview{
			Rank:          r.Rank,
			ID:            r.ID,
			Timestamp:     r.Timestamp,
			Rating:        r.Rating,
			Upvotes:       r.Upvotes,
			Content:       r.Content,
			Category:      string(r.Category),
			Urgency:       math.Round(r.Urgency*1000) / 1000,
			UrgencyReason: r.Reason,
			UrgencySource: string(r.Source),
			Sentiment:     math.Round(r.Sentiment*1000) / 1000,
			Mood:          sentiment.Label(r.Sentiment),
		})
	}
	for label, count := range result.Stats.CategoryDistribution {
		doc.Stats.CategoryDistribution[string(label)] = count
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
