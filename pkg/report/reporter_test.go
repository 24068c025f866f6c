package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/scenario"
)

func sampleReport() *scenario.Report {
	return &scenario.Report{
		StartedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Files:         2,
		Total:         4,
		Passed:        2,
		Failed:        1,
		Hits:          3,
		Misses:        1,
		ElapsedMillis: 7.5,
		Duration:      1500 * time.Millisecond,
		LoadErrors:    []string{"scenario file Broken.json: invalid JSON"},
		Results: []scenario.Result{
			{Target: "Users", Method: "create", Key: "valid", Hit: true, Passed: true, RunningTimeMillis: 2.5},
			{Target: "Users", Method: "create", Key: "guest", Hit: true, Passed: true, ShouldFail: true, RunningTimeMillis: 1},
			{Target: "Users", Method: "delete", Key: "root", Hit: true, Passed: false, RunningTimeMillis: 4, Message: "[FAIL] id | rejected"},
			{Target: "Orders", Method: "list", Key: "all", Message: "target not found: Orders"},
		},
	}
}

var _ Reporter = (*JSONReporter)(nil)
var _ Reporter = (*MarkdownReporter)(nil)
var _ Reporter = (*HTMLReporter)(nil)

func TestReporters_WriteMatchesGenerate(t *testing.T) {
	reporters := map[string]Reporter{
		"json":     NewJSONReporter(false),
		"html":     NewHTMLReporter(),
		"markdown": NewMarkdownReporter(),
	}
	for name, r := range reporters {
		t.Run(name, func(t *testing.T) {
			rep := sampleReport()
			data, err := r.Generate(rep)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			var buf bytes.Buffer
			require.NoError(t, r.Write(&buf, rep))
			if name == "markdown" {
				// The summary ID and timestamp depend on the clock.
				assert.Contains(t, buf.String(), "| Users | 3 | 2 | 1 | 0 | 7.50ms |")
				return
			}
			assert.Equal(t, string(data), buf.String())
		})
	}
}
