package factory

import (
	"fmt"
	"strings"

	"github.com/mikey/llm-review-triage/internal/adapters/report"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/ports"
)

// ReportFactory creates report writers based on configuration
type ReportFactory struct {
	cfg *config.Config
}

// NewReportFactory creates a new report factory
func NewReportFactory(cfg *config.Config) *ReportFactory {
	return &ReportFactory{cfg: cfg}
}

// CreateReportWriter creates a writer for report.format
func (f *ReportFactory) CreateReportWriter() (ports.ReportWriter, error) {
	format := strings.ToLower(f.cfg.GetString("report.format"))

	switch format {
	case report.FormatText:
		return report.NewTextWriter(), nil
	case report.FormatJSON:
		return report.NewJSONWriter(), nil
	case report.FormatMarkdown, "md":
		return report.NewMarkdownWriter(), nil
	case report.FormatHTML:
		return report.NewHTMLWriter(f.cfg.GetString("report.title")), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q (want one of %s)", format, strings.Join(report.Formats, ", "))
	}
}
