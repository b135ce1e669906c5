package core

import (
	"math"
)

const (
	// DefaultRatingMax is the top of the star-rating scale
	DefaultRatingMax = 5.0
	// DefaultUpvoteCap is the upvote count at which the upvote term saturates
	DefaultUpvoteCap = 1000.0
	// NeutralRating replaces a rating that is not a number
	NeutralRating = 3.0

	ratingWeight = 0.35
	upvoteWeight = 0.65
)

// Estimator computes an urgency score from rating and upvotes alone.
// It never calls out and never fails.
type Estimator struct {
	RatingMax float64
	UpvoteCap float64
}

// NewEstimator creates an estimator, replacing unusable bounds with defaults
func NewEstimator(ratingMax, upvoteCap float64) *Estimator {
	if !(ratingMax > 1) || math.IsInf(ratingMax, 0) {
		ratingMax = DefaultRatingMax
	}
	if !(upvoteCap > 0) || math.IsInf(upvoteCap, 0) {
		upvoteCap = DefaultUpvoteCap
	}
	return &Estimator{RatingMax: ratingMax, UpvoteCap: upvoteCap}
}

// DefaultEstimator returns an estimator on a 1-5 scale with a 1000 upvote cap
func DefaultEstimator() *Estimator {
	return NewEstimator(DefaultRatingMax, DefaultUpvoteCap)
}

// Estimate returns 0.35*ratingTerm + 0.65*upvoteTerm rounded to 3 decimals,
// where a lower rating and more upvotes both raise the score.
func (e *Estimator) Estimate(rating, upvotes float64) float64 {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		rating = NeutralRating
	}
	if math.IsNaN(upvotes) || math.IsInf(upvotes, 0) || upvotes < 0 {
		upvotes = 0
	}

	scoreTerm := clampUnit((e.RatingMax - rating) / (e.RatingMax - 1))
	upvoteTerm := math.Min(upvotes/e.UpvoteCap, 1.0)

	score := ratingWeight*scoreTerm + upvoteWeight*upvoteTerm
	return clampUnit(math.Round(score*1000) / 1000)
}

// EstimateReview applies Estimate to a review's rating and upvote count
func (e *Estimator) EstimateReview(review *Review) float64 {
	return e.Estimate(review.Rating, float64(review.UpvoteCount))
}

// EstimateUrgency is Estimate with the default 5-star scale and 1000 upvote cap
func EstimateUrgency(rating, upvotes float64) float64 {
	return DefaultEstimator().Estimate(rating, upvotes)
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
