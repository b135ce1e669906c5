package core

import (
	"fmt"
	"strings"
	"time"
)

// AnalysisFailedReason is attached to an urgency assessment whenever the model
// could not produce a usable answer.
const AnalysisFailedReason = "analysis failed"

// Review represents one customer review loaded from an export
type Review struct {
	ID          int
	Content     string
	Rating      float64
	UpvoteCount int
	Timestamp   time.Time
}

// AssessmentSource records which scorer produced an urgency assessment
type AssessmentSource string

const (
	SourceModel     AssessmentSource = "model"
	SourceEstimator AssessmentSource = "estimator"
)

// UrgencyAssessment represents how urgently a review needs a support response
type UrgencyAssessment struct {
	Score  float64
	Reason string
	Source AssessmentSource
}

// CategoryLabel is the problem domain a review belongs to
type CategoryLabel string

const (
	CategoryBM           CategoryLabel = "BM"
	CategoryTechnical    CategoryLabel = "Technical"
	CategoryOperations   CategoryLabel = "Operations"
	CategoryUX           CategoryLabel = "UX"
	CategoryContent      CategoryLabel = "Content"
	CategoryUnclassified CategoryLabel = "Unclassified"
)

// ClassifiableCategories lists the labels the model may answer with
var ClassifiableCategories = []CategoryLabel{
	CategoryBM,
	CategoryTechnical,
	CategoryOperations,
	CategoryUX,
	CategoryContent,
}

// ParseCategoryLabel maps raw model output to a label. Only an exact match of
// one of the classifiable labels is accepted; everything else is Unclassified.
func ParseCategoryLabel(raw string) CategoryLabel {
	out := strings.TrimSpace(raw)
	for _, label := range ClassifiableCategories {
		if out == string(label) {
			return label
		}
	}
	return CategoryUnclassified
}

// ReplyStyle selects the tone of a generated support reply
type ReplyStyle string

const (
	StyleEmpathy   ReplyStyle = "empathy"
	StyleRootCause ReplyStyle = "root-cause"
	StyleSupport   ReplyStyle = "support"
	StyleDetailed  ReplyStyle = "detailed"
)

var styleInstructions = map[ReplyStyle]string{
	StyleEmpathy:   "A reply that empathizes with the user's feelings as much as possible and acknowledges the inconvenience they experienced.",
	StyleRootCause: "A reply that explains the cause of the problem in detail.",
	StyleSupport:   "A reply centered on letting the user know that the customer support center can help resolve the problem, including how to reach it.",
	StyleDetailed:  "A reply that covers empathy, the cause of the problem, the planned actions and the support channel in as much detail as possible.",
}

// ReplyStyles lists every supported reply style in presentation order
var ReplyStyles = []ReplyStyle{StyleEmpathy, StyleRootCause, StyleSupport, StyleDetailed}

// Instruction returns the natural-language expansion of the style
func (s ReplyStyle) Instruction() string {
	return styleInstructions[s]
}

// ParseReplyStyle resolves user input to a reply style
func ParseReplyStyle(s string) (ReplyStyle, error) {
	style := ReplyStyle(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := styleInstructions[style]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
	return style, nil
}

// AnalyzedReview is a review augmented with its derived assessments
type AnalyzedReview struct {
	Review
	Category  CategoryLabel
	Urgency   UrgencyAssessment
	Sentiment float64
}

// BatchStats summarizes one analysis run
type BatchStats struct {
	RatingHistogram      map[int]int
	CategoryDistribution map[CategoryLabel]int
	EstimatorFallbacks   int
}

// BatchResult represents the ranked output of one analysis run
type BatchResult struct {
	RunID      string
	AnalyzedAt time.Time
	Reviews    []AnalyzedReview
	Stats      BatchStats
}

// ReplyDraft represents a generated support reply for one review
type ReplyDraft struct {
	Review      AnalyzedReview
	Style       ReplyStyle
	Text        string
	GeneratedAt time.Time
	Model       string
}

// CategoryCacheEntry holds the memoized labels of one review batch
type CategoryCacheEntry struct {
	BatchKey  string
	Labels    []CategoryLabel
	CreatedAt time.Time
	ExpiresAt time.Time
}
