package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/russross/blackfriday/v2"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
)

// MarkdownWriter renders the report as Markdown
type MarkdownWriter struct{}

// NewMarkdownWriter creates a new Markdown report writer
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Write renders the top reviews and the batch stats
func (mw *MarkdownWriter) Write(w io.Writer, result *core.BatchResult, top int) error {
	if _, err := w.Write(renderMarkdown(result, top)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// HTMLWriter renders the Markdown report as a standalone HTML page
type HTMLWriter struct {
	title string
}

// NewHTMLWriter creates a new HTML report writer
func NewHTMLWriter(title string) *HTMLWriter {
	if title == "" {
		title = "Review triage report"
	}
	return &HTMLWriter{title: title}
}

// Write renders the top reviews and the batch stats
func (hw *HTMLWriter) Write(w io.Writer, result *core.BatchResult, top int) error {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Title: hw.title,
		Flags: blackfriday.CompletePage | blackfriday.SkipHTML | blackfriday.Safelink | blackfriday.HrefTargetBlank,
	})
	page := blackfriday.Run(renderMarkdown(result, top),
		blackfriday.WithRenderer(renderer),
		blackfriday.WithExtensions(blackfriday.CommonExtensions))

	if _, err := w.Write(page); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func renderMarkdown(result *core.BatchResult, top int) []byte {
	ranked := rows(result, top)
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Urgent reviews (top %d of %d)\n\n", len(ranked), len(result.Reviews))
	fmt.Fprintf(&buf, "Run `%s`, analyzed %s.\n\n", result.RunID, result.AnalyzedAt.Format(timeLayout))

	for _, r := range ranked {
		fmt.Fprintf(&buf, "## %d. %s · %s · %d upvotes\n\n",
			r.Rank, r.Timestamp.Format(timeLayout), formatRating(r.Rating), r.Upvotes)
		fmt.Fprintf(&buf, "> %s\n\n", escapeMarkdown(singleLine(r.Content)))
		fmt.Fprintf(&buf, "**Urgency:** %s · **Category:** %s · **Reason:** %s\n\n",
			formatUrgency(r.Urgency), r.Category, escapeMarkdown(singleLine(r.Reason)))
		buf.WriteString("---\n\n")
	}

	writeBucketTable(&buf, "Rating distribution", "Rating", ratingBuckets(result.Stats))
	writeBucketTable(&buf, "Category distribution", "Category", categoryBuckets(result.Stats))

	if result.Stats.EstimatorFallbacks > 0 {
		fmt.Fprintf(&buf, "_%d of %d urgency scores came from the rating/upvote estimator._\n",
			result.Stats.EstimatorFallbacks, len(result.Reviews))
	}

	return buf.Bytes()
}

func writeBucketTable(buf *bytes.Buffer, title, column string, buckets []bucket) {
	fmt.Fprintf(buf, "## %s\n\n| %s | Reviews |\n| --- | ---: |\n", title, column)
	for _, b := range buckets {
		fmt.Fprintf(buf, "| %s | %d |\n", escapeMarkdown(b.Label), b.Count)
	}
	buf.WriteString("\n")
}

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
