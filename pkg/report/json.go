package report

import (
	"encoding/json"
	"io"

	"digital.vasic.contracts/pkg/scenario"
)

// jsonMarshal is replaced in tests to exercise marshal errors.
var jsonMarshal = json.Marshal

// JSONReporter renders reports as JSON.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a JSON reporter. When pretty is true,
// output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

// Generate renders rep as JSON.
func (r *JSONReporter) Generate(rep *scenario.Report) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(rep, "", "  ")
	}
	return jsonMarshal(rep)
}

// Write renders rep as JSON to w.
func (r *JSONReporter) Write(w io.Writer, rep *scenario.Report) error {
	data, err := r.Generate(rep)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
