package ports

import (
	"io"

	"github.com/mikey/llm-review-triage/internal/core"
)

// ReportWriter defines the interface for rendering a ranked batch
type ReportWriter interface {
	// Write renders the top reviews of a result together with its stats
	Write(w io.Writer, result *core.BatchResult, top int) error
}
