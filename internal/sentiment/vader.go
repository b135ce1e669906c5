package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
)

const labelThreshold = 0.20

var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// Analyzer scores text polarity with VADER. The lexicon is English, so text
// in other languages mostly scores neutral.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer creates a VADER analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound polarity in [-1, 1]
func (a *Analyzer) Score(text string) float64 {
	text = strings.TrimSpace(urlPattern.ReplaceAllString(text, ""))
	if text == "" {
		return 0
	}
	return a.vader.PolarityScores(text).Compound
}

// Label buckets a compound score into positive, negative or neutral
func Label(score float64) string {
	switch {
	case score >= labelThreshold:
		return "positive"
	case score <= -labelThreshold:
		return "negative"
	}
	return "neutral"
}
