package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the number of reviews analyzed when no limit is given
	DefaultBatchSize = 10
	// DefaultMaxBatchSize caps a batch, every review costs two sequential model calls
	DefaultMaxBatchSize = 50
)

// AnalysisOptions bounds the size of one analysis run
type AnalysisOptions struct {
	DefaultBatchSize int
	MaxBatchSize     int
}

// TriageService is the core service for review triage
type TriageService struct {
	urgency    *UrgencyClassifier
	categories *CategoryClassifier
	replies    *ReplyGenerator
	sentiment  SentimentScorer
	logger     *zap.Logger
	opts       AnalysisOptions
}

// NewTriageService creates a new triage service
func NewTriageService(
	urgency *UrgencyClassifier,
	categories *CategoryClassifier,
	replies *ReplyGenerator,
	sentiment SentimentScorer,
	logger *zap.Logger,
	opts AnalysisOptions,
) *TriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultBatchSize <= 0 {
		opts.DefaultBatchSize = DefaultBatchSize
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	return &TriageService{
		urgency:    urgency,
		categories: categories,
		replies:    replies,
		sentiment:  sentiment,
		logger:     logger,
		opts:       opts,
	}
}

// Analyze categorizes and scores the first limit reviews one at a time and
// returns them ranked by urgency, most urgent first. Reviews with blank
// content are skipped before the limit applies. A failure on one review
// never aborts the batch; only cancellation does.
func (s *TriageService) Analyze(ctx context.Context, reviews []Review, limit int) (*BatchResult, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))

	usable := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		if strings.TrimSpace(review.Content) == "" {
			logger.Warn("Skipping review with blank content", zap.Int("review_id", review.ID))
			continue
		}
		usable = append(usable, review)
	}
	if len(usable) == 0 {
		return nil, ErrNoReviews
	}

	size := s.batchSize(limit, len(usable))
	batch := usable[:size]

	logger.Info("Starting review analysis",
		zap.Int("batch_size", size),
		zap.Int("available", len(usable)))

	contents := make([]string, size)
	for i := range batch {
		contents[i] = batch[i].Content
	}
	labels := s.categories.Classify(ctx, contents)

	analyzed := make([]AnalyzedReview, 0, size)
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis interrupted after %d of %d reviews: %w", i, size, err)
		}

		review := batch[i]
		item := AnalyzedReview{
			Review:   review,
			Category: labels[i],
			Urgency:  s.urgency.Classify(ctx, &review),
		}
		if s.sentiment != nil {
			item.Sentiment = s.sentiment.Score(review.Content)
		}
		analyzed = append(analyzed, item)
	}

	RankByUrgency(analyzed)

	result := &BatchResult{
		RunID:      runID,
		AnalyzedAt: time.Now(),
		Reviews:    analyzed,
		Stats:      computeStats(analyzed),
	}

	logger.Info("Review analysis complete",
		zap.Int("analyzed", len(analyzed)),
		zap.Int("estimator_fallbacks", result.Stats.EstimatorFallbacks))

	return result, nil
}

// DraftReply generates a reply for an analyzed review
func (s *TriageService) DraftReply(ctx context.Context, review AnalyzedReview, style ReplyStyle) (*ReplyDraft, error) {
	if s.replies == nil {
		return nil, fmt.Errorf("%w: reply generator not configured", ErrReplyFailed)
	}

	gen, err := s.replies.GenerateReply(ctx, review.Content, style)
	if err != nil {
		s.logger.Error("Failed to draft reply",
			zap.Int("review_id", review.ID),
			zap.String("style", string(style)),
			zap.Error(err))
		return nil, err
	}

	return &ReplyDraft{
		Review:      review,
		Style:       style,
		Text:        gen.Text,
		GeneratedAt: time.Now(),
		Model:       gen.Model,
	}, nil
}

// InvalidateCategories forgets the memoized categories of the last batch
func (s *TriageService) InvalidateCategories(ctx context.Context) {
	s.categories.Invalidate(ctx)
}

// Top returns the n most urgent reviews of a ranked result
func Top(result *BatchResult, n int) []AnalyzedReview {
	if result == nil || n <= 0 {
		return nil
	}
	if n > len(result.Reviews) {
		n = len(result.Reviews)
	}
	return result.Reviews[:n]
}

// RankByUrgency sorts reviews by urgency score, highest first
func RankByUrgency(reviews []AnalyzedReview) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Urgency.Score > reviews[j].Urgency.Score
	})
}

func (s *TriageService) batchSize(limit, available int) int {
	if limit <= 0 {
		limit = s.opts.DefaultBatchSize
	}
	if limit > s.opts.MaxBatchSize {
		s.logger.Warn("Requested batch exceeds the maximum, clamping",
			zap.Int("requested", limit),
			zap.Int("max", s.opts.MaxBatchSize))
		limit = s.opts.MaxBatchSize
	}
	if limit > available {
		limit = available
	}
	return limit
}

func computeStats(reviews []AnalyzedReview) BatchStats {
	stats := BatchStats{
		RatingHistogram:      make(map[int]int),
		CategoryDistribution: make(map[CategoryLabel]int),
	}
	for _, r := range reviews {
		stats.RatingHistogram[int(math.Round(r.Rating))]++
		stats.CategoryDistribution[r.Category]++
		if r.Urgency.Source == SourceEstimator {
			stats.EstimatorFallbacks++
		}
	}
	return stats
}
