package core

import (
	"math"
	"testing"
)

func TestEstimateUrgency(t *testing.T) {
	tests := []struct {
		name    string
		rating  float64
		upvotes float64
		want    float64
	}{
		{"worst case", 1, 1000, 1.0},
		{"best case", 5, 0, 0.0},
		{"neutral no votes", 3, 0, 0.175},
		{"one star no votes", 1, 0, 0.35},
		{"five star saturated votes", 5, 5000, 0.65},
		{"half cap", 5, 500, 0.325},
		{"nan rating is neutral", math.NaN(), 0, 0.175},
		{"negative upvotes count as zero", 3, -20, 0.175},
		{"rating above scale", 7, 0, 0.0},
		{"rating below scale", -2, 0, 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateUrgency(tt.rating, tt.upvotes)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateUrgency(%v, %v) = %v, want %v", tt.rating, tt.upvotes, got, tt.want)
			}
		})
	}
}

func TestEstimateUrgencyBoundsAndMonotonicity(t *testing.T) {
	ratings := []float64{1, 1.5, 2, 3, 4, 4.5, 5}
	upvotes := []float64{0, 1, 10, 100, 500, 999, 1000, 20000}

	for _, r := range ratings {
		prev := -1.0
		for _, u := range upvotes {
			got := EstimateUrgency(r, u)
			if got < 0 || got > 1 {
				t.Fatalf("EstimateUrgency(%v, %v) = %v, outside [0, 1]", r, u, got)
			}
			if got < prev {
				t.Errorf("urgency decreased with more upvotes at rating %v: %v -> %v", r, prev, got)
			}
			prev = got
		}
	}

	for _, u := range upvotes {
		prev := 2.0
		for _, r := range ratings {
			got := EstimateUrgency(r, u)
			if got > prev {
				t.Errorf("urgency increased with a better rating at %v upvotes: %v -> %v", u, prev, got)
			}
			prev = got
		}
	}
}

func TestNewEstimatorDefaults(t *testing.T) {
	e := NewEstimator(1, 0)
	if e.RatingMax != DefaultRatingMax || e.UpvoteCap != DefaultUpvoteCap {
		t.Fatalf("NewEstimator(1, 0) = %+v, want defaults", e)
	}

	e = NewEstimator(10, 100)
	if got := e.Estimate(10, 100); got != 0.65 {
		t.Errorf("custom scale Estimate(10, 100) = %v, want 0.65", got)
	}
}
