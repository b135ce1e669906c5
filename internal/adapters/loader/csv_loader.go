package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
)

const (
	ColumnContent   = "content"
	ColumnScore     = "score"
	ColumnThumbsUp  = "thumbsUpCount"
	ColumnTimestamp = "at"
)

var (
	// ErrMissingColumns is returned when a required header column is absent
	ErrMissingColumns = errors.New("missing required columns")
	// ErrUndecodable is returned when no candidate encoding yields a table
	ErrUndecodable = errors.New("unable to decode review file")
)

var requiredColumns = []string{ColumnContent, ColumnScore, ColumnThumbsUp}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type candidateEncoding struct {
	name     string
	encoding encoding.Encoding
}

// Tried in order. x/text's EUCKR is the CP949 superset and covers plain EUC-KR too.
var candidateEncodings = []candidateEncoding{
	{"utf-8-sig", unicode.UTF8BOM},
	{"utf-8", unicode.UTF8},
	{"cp949/euc-kr", korean.EUCKR},
	{"latin1", charmap.ISO8859_1},
}

// CSVLoader reads review exports of unknown text encoding
type CSVLoader struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewCSVLoader creates a new CSV loader
func NewCSVLoader(logger *zap.Logger) *CSVLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVLoader{
		logger: logger,
		now:    time.Now,
	}
}

// LoadFile loads reviews from a CSV file
func (l *CSVLoader) LoadFile(ctx context.Context, path string) ([]core.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open review file: %w", err)
	}
	defer f.Close()

	return l.Load(ctx, f)
}

// Load reads every row of a review export
func (l *CSVLoader) Load(ctx context.Context, r io.Reader) ([]core.Review, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read review file: %w", err)
	}

	records, err := l.decode(ctx, raw)
	if err != nil {
		return nil, err
	}

	columns := indexColumns(records[0])
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	ingestedAt := l.now()
	reviews := make([]core.Review, 0, len(records)-1)
	for i, record := range records[1:] {
		rowID := i + 1
		content := strings.TrimSpace(field(record, columns, ColumnContent))
		if content == "" {
			l.logger.Warn("Skipping review row with empty content", zap.Int("row", rowID))
			continue
		}

		reviews = append(reviews, core.Review{
			ID:          rowID,
			Content:     content,
			Rating:      parseRating(field(record, columns, ColumnScore)),
			UpvoteCount: parseUpvotes(field(record, columns, ColumnThumbsUp)),
			Timestamp:   parseTimestamp(field(record, columns, ColumnTimestamp), ingestedAt),
		})
	}

	if len(reviews) == 0 {
		return nil, core.ErrNoReviews
	}

	l.logger.Info("Loaded reviews", zap.Int("count", len(reviews)), zap.Int("rows", len(records)-1))
	return reviews, nil
}

// decode returns the CSV records of the first encoding that decodes cleanly
// and yields a header plus at least one data row
func (l *CSVLoader) decode(ctx context.Context, raw []byte) ([][]string, error) {
	emptyTable := false
	baseline := bytes.Count(raw, []byte(string(utf8.RuneError)))

	for _, candidate := range candidateEncodings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decoded, err := candidate.encoding.NewDecoder().Bytes(raw)
		if err != nil {
			l.logger.Debug("Encoding rejected", zap.String("encoding", candidate.name), zap.Error(err))
			continue
		}
		if bytes.Count(decoded, []byte(string(utf8.RuneError))) > baseline {
			l.logger.Debug("Encoding rejected, replacement characters introduced", zap.String("encoding", candidate.name))
			continue
		}

		records, err := parseCSV(decoded)
		if err != nil {
			l.logger.Debug("Encoding rejected, malformed CSV", zap.String("encoding", candidate.name), zap.Error(err))
			continue
		}
		if len(records) < 2 {
			emptyTable = true
			continue
		}

		l.logger.Debug("Decoded review file", zap.String("encoding", candidate.name))
		return records, nil
	}

	if emptyTable {
		return nil, core.ErrNoReviews
	}
	return nil, ErrUndecodable
}

func parseCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func parseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return core.NeutralRating
	}
	return v
}

func parseUpvotes(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func parseTimestamp(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
