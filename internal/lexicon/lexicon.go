package lexicon

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ProfanityReplacement is how profanity is referred to in rewritten text
const ProfanityReplacement = "inappropriate language"

// DefaultTerms maps informal vocabulary to neutral, official wording
var DefaultTerms = map[string]string{
	"현질":    "유료 결제",
	"현금박치기": "과금",
	"쪼렙":    "초보자",
	"오지게":   "매우",
	// spending
	"whale":            "paid purchase",
	"whaling":          "paid purchase",
	"swipe the card":   "paid purchase",
	"swiping the card": "paid purchase",
	// no "mad": it also means angry
	// intensifiers
	"hella":       "very",
	"super duper": "very",
	// skill level
	"noob":   "beginner",
	"newbie": "beginner",
	"scrub":  "beginner",
	// profanity
	"wtf":  ProfanityReplacement,
	"damn": ProfanityReplacement,
	"crap": ProfanityReplacement,
}

type term struct {
	from    string
	to      string
	pattern *regexp.Regexp
}

// Lexicon finds informal terms in text and rewrites them. ASCII terms match
// case-insensitively on word boundaries; other terms match as substrings,
// longest first.
type Lexicon struct {
	terms  []term
	logger *zap.Logger
}

type lexiconFile struct {
	Terms map[string]string `yaml:"terms"`
}

// New creates a lexicon from a term map
func New(entries map[string]string, logger *zap.Logger) *Lexicon {
	if logger == nil {
		logger = zap.NewNop()
	}

	terms := make([]term, 0, len(entries))
	for from, to := range entries {
		from = strings.TrimSpace(from)
		if from == "" {
			continue
		}
		t := term{from: from, to: to}
		if isASCII(from) {
			t.pattern = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`)
		}
		terms = append(terms, t)
	}

	sort.Slice(terms, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(terms[i].from), utf8.RuneCountInString(terms[j].from)
		if li != lj {
			return li > lj
		}
		return terms[i].from < terms[j].from
	})

	return &Lexicon{terms: terms, logger: logger}
}

// Default returns the built-in lexicon
func Default(logger *zap.Logger) *Lexicon {
	return New(DefaultTerms, logger)
}

// LoadFile returns the built-in lexicon extended, and where keys collide
// overridden, by the terms of a YAML file
func LoadFile(path string, logger *zap.Logger) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	merged := make(map[string]string, len(DefaultTerms)+len(file.Terms))
	for k, v := range DefaultTerms {
		merged[k] = v
	}
	for k, v := range file.Terms {
		merged[k] = v
	}

	lex := New(merged, logger)
	lex.logger.Info("Loaded lexicon", zap.String("path", path), zap.Int("file_terms", len(file.Terms)), zap.Int("total_terms", lex.Len()))
	return lex, nil
}

// Len returns the number of terms
func (l *Lexicon) Len() int {
	return len(l.terms)
}

// Find returns the terms present in text
func (l *Lexicon) Find(text string) []string {
	var hits []string
	for _, t := range l.terms {
		if t.matches(text) {
			hits = append(hits, t.from)
		}
	}
	return hits
}

// Rewrite replaces every term with its neutral counterpart
func (l *Lexicon) Rewrite(text string) string {
	for _, t := range l.terms {
		if !t.matches(text) {
			continue
		}
		if t.pattern != nil {
			text = t.pattern.ReplaceAllLiteralString(text, t.to)
		} else {
			text = strings.ReplaceAll(text, t.from, t.to)
		}
		l.logger.Debug("Rewrote informal term", zap.String("term", t.from), zap.String("replacement", t.to))
	}
	return text
}

func (t term) matches(text string) bool {
	if t.pattern != nil {
		return t.pattern.MatchString(text)
	}
	return strings.Contains(text, t.from)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
