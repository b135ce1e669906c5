package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestService(gen TextGenerator, opts AnalysisOptions) *TriageService {
	return NewTriageService(
		NewUrgencyClassifier(gen, nil, nil, nil, UrgencyOptions{}),
		NewCategoryClassifier(gen, nil, nil, nil, CategoryOptions{}),
		NewReplyGenerator(gen, nil, nil, nil, ReplyOptions{}),
		fixedSentiment(-0.5),
		nil,
		opts,
	)
}

func sampleReviews() []Review {
	return []Review{
		{ID: 1, Content: "환불해주세요 결제 오류", Rating: 1, UpvoteCount: 500},
		{ID: 2, Content: "재밌어요", Rating: 5, UpvoteCount: 0},
		{ID: 3, Content: "그냥 그래요", Rating: 3, UpvoteCount: 10},
	}
}

func TestAnalyzeWithFailingModelRanksByEstimator(t *testing.T) {
	svc := newTestService(failingGenerator(), AnalysisOptions{})

	result, err := svc.Analyze(context.Background(), sampleReviews(), 0)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	wantOrder := []int{1, 3, 2}
	if len(result.Reviews) != len(wantOrder) {
		t.Fatalf("got %d reviews, want %d", len(result.Reviews), len(wantOrder))
	}
	for i, id := range wantOrder {
		r := result.Reviews[i]
		if r.ID != id {
			t.Errorf("position %d: review %d, want %d", i, r.ID, id)
		}
		if r.Urgency.Reason != AnalysisFailedReason || r.Urgency.Source != SourceEstimator {
			t.Errorf("review %d urgency = %+v, want estimator fallback", r.ID, r.Urgency)
		}
		if r.Category != CategoryUnclassified {
			t.Errorf("review %d category = %q, want Unclassified", r.ID, r.Category)
		}
		if r.Sentiment != -0.5 {
			t.Errorf("review %d sentiment = %v, want -0.5", r.ID, r.Sentiment)
		}
	}

	if result.Stats.EstimatorFallbacks != 3 {
		t.Errorf("EstimatorFallbacks = %d, want 3", result.Stats.EstimatorFallbacks)
	}
	if result.Stats.CategoryDistribution[CategoryUnclassified] != 3 {
		t.Errorf("CategoryDistribution = %v", result.Stats.CategoryDistribution)
	}
	if result.Stats.RatingHistogram[1] != 1 || result.Stats.RatingHistogram[5] != 1 || result.Stats.RatingHistogram[3] != 1 {
		t.Errorf("RatingHistogram = %v", result.Stats.RatingHistogram)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
}

func TestAnalyzeUsesModelAnswers(t *testing.T) {
	gen := &scriptedGenerator{answers: func(prompt string) (string, error) {
		if strings.Contains(prompt, "category") {
			if strings.Contains(prompt, "결제") {
				return "BM", nil
			}
			return "Content", nil
		}
		switch {
		case strings.Contains(prompt, "재밌어요"):
			return `{"urgency":0.9,"reason":"model says so"}`, nil
		case strings.Contains(prompt, "그냥"):
			return `{"urgency":0.5,"reason":"meh"}`, nil
		}
		return `{"urgency":0.1,"reason":"calm"}`, nil
	}}
	svc := newTestService(gen, AnalysisOptions{})

	result, err := svc.Analyze(context.Background(), sampleReviews(), 10)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	wantOrder := []int{2, 3, 1}
	for i, id := range wantOrder {
		if result.Reviews[i].ID != id {
			t.Errorf("position %d: review %d, want %d", i, result.Reviews[i].ID, id)
		}
	}
	if result.Reviews[2].Category != CategoryBM {
		t.Errorf("review 1 category = %q, want BM", result.Reviews[2].Category)
	}
	if result.Stats.EstimatorFallbacks != 0 {
		t.Errorf("EstimatorFallbacks = %d, want 0", result.Stats.EstimatorFallbacks)
	}
}

func TestAnalyzeOrderIsNonIncreasing(t *testing.T) {
	reviews := make([]Review, 0, 30)
	for i := 0; i < 30; i++ {
		reviews = append(reviews, Review{
			ID:          i,
			Content:     "review",
			Rating:      float64(i%5 + 1),
			UpvoteCount: (i * 37) % 1200,
		})
	}
	svc := newTestService(failingGenerator(), AnalysisOptions{})

	result, err := svc.Analyze(context.Background(), reviews, 30)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for i := 1; i < len(result.Reviews); i++ {
		if result.Reviews[i].Urgency.Score > result.Reviews[i-1].Urgency.Score {
			t.Fatalf("urgency increases at position %d: %v > %v", i,
				result.Reviews[i].Urgency.Score, result.Reviews[i-1].Urgency.Score)
		}
	}
}

func TestAnalyzeBatchSizing(t *testing.T) {
	reviews := make([]Review, 80)
	for i := range reviews {
		reviews[i] = Review{ID: i, Content: "x", Rating: 3}
	}

	tests := []struct {
		name  string
		input []Review
		limit int
		want  int
	}{
		{"default limit", reviews, 0, DefaultBatchSize},
		{"explicit limit", reviews, 7, 7},
		{"clamped to max", reviews, 500, DefaultMaxBatchSize},
		{"fewer reviews than limit", reviews[:4], 10, 4},
	}

	svc := newTestService(failingGenerator(), AnalysisOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Analyze(context.Background(), tt.input, tt.limit)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if len(result.Reviews) != tt.want {
				t.Errorf("analyzed %d reviews, want %d", len(result.Reviews), tt.want)
			}
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	svc := newTestService(failingGenerator(), AnalysisOptions{})

	if _, err := svc.Analyze(context.Background(), nil, 10); !errors.Is(err, ErrNoReviews) {
		t.Errorf("empty batch error = %v, want ErrNoReviews", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Analyze(ctx, sampleReviews(), 10); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled analysis error = %v, want context.Canceled", err)
	}
}

func TestAnalyzeSkipsBlankContent(t *testing.T) {
	gen := constantGenerator(`{"urgency":0.9,"reason":"model answer"}`)
	svc := newTestService(gen, AnalysisOptions{})

	if _, err := svc.Analyze(context.Background(), []Review{{ID: 1, Content: "   "}, {ID: 2, Content: "\n\t"}}, 0); !errors.Is(err, ErrNoReviews) {
		t.Errorf("blank-only batch error = %v, want ErrNoReviews", err)
	}
	if gen.calls() != 0 {
		t.Errorf("generator called %d times for blank reviews, want 0", gen.calls())
	}

	reviews := []Review{
		{ID: 1, Content: "  ", Rating: 1},
		{ID: 2, Content: "로그인 오류", Rating: 1},
		{ID: 3, Content: "재밌어요", Rating: 5},
	}
	result, err := svc.Analyze(context.Background(), reviews, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Reviews) != 1 || result.Reviews[0].ID != 2 {
		t.Errorf("analyzed %+v, want only review 2", result.Reviews)
	}
	if gen.calls() != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls())
	}
}

func TestTop(t *testing.T) {
	result := &BatchResult{Reviews: make([]AnalyzedReview, 5)}

	tests := []struct {
		n    int
		want int
	}{
		{3, 3},
		{5, 5},
		{10, 5},
		{0, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := Top(result, tt.n); len(got) != tt.want {
			t.Errorf("Top(%d) returned %d reviews, want %d", tt.n, len(got), tt.want)
		}
	}
	if Top(nil, 3) != nil {
		t.Error("Top(nil) should be nil")
	}
}

func TestDraftReply(t *testing.T) {
	svc := newTestService(constantGenerator("We apologize for the inconvenience."), AnalysisOptions{})
	review := AnalyzedReview{Review: Review{ID: 9, Content: "로그인이 안돼요"}}

	draft, err := svc.DraftReply(context.Background(), review, StyleSupport)
	if err != nil {
		t.Fatalf("DraftReply: %v", err)
	}
	if draft.Text != "We apologize for the inconvenience." || draft.Style != StyleSupport || draft.Review.ID != 9 {
		t.Errorf("unexpected draft: %+v", draft)
	}
	if draft.Model != "scripted" {
		t.Errorf("Model = %q, want scripted", draft.Model)
	}

	failing := newTestService(failingGenerator(), AnalysisOptions{})
	if _, err := failing.DraftReply(context.Background(), review, StyleSupport); !errors.Is(err, ErrReplyFailed) {
		t.Errorf("DraftReply error = %v, want ErrReplyFailed", err)
	}
}
