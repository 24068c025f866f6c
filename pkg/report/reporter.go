// Package report renders scenario run reports as JSON,
// Markdown and HTML, and keeps a JSON-lines run history.
package report

import (
	"io"

	"digital.vasic.contracts/pkg/scenario"
)

// Reporter renders a scenario run report.
type Reporter interface {
	// Generate renders the report.
	Generate(rep *scenario.Report) ([]byte, error)

	// Write renders the report to w.
	Write(w io.Writer, rep *scenario.Report) error
}
