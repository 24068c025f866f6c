package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"time"

	"digital.vasic.contracts/pkg/scenario"
)

// HTMLReporter renders reports as a standalone HTML page.
type HTMLReporter struct{}

// NewHTMLReporter creates an HTML reporter.
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

// Generate renders rep as HTML.
func (r *HTMLReporter) Generate(rep *scenario.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf, rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders rep as HTML to w.
func (r *HTMLReporter) Write(w io.Writer, rep *scenario.Report) error {
	s := BuildSummary(rep)

	writeHeader(w, "Contract Scenarios")
	fmt.Fprintln(w, "<h1>Contract Scenarios</h1>")
	fmt.Fprintf(w, "<p><strong>Started:</strong> %s</p>\n",
		rep.StartedAt.Format(time.RFC3339))

	writeStats(w, s)
	writeResults(w, rep.Results)

	if len(rep.LoadErrors) > 0 {
		fmt.Fprintln(w, "<h2>Skipped Files</h2>")
		fmt.Fprintln(w, "<ul>")
		for _, e := range rep.LoadErrors {
			fmt.Fprintf(w, "<li><code>%s</code></li>\n", html.EscapeString(e))
		}
		fmt.Fprintln(w, "</ul>")
	}

	fmt.Fprintln(w, "<footer><p>Generated by contracts</p></footer>")
	fmt.Fprintln(w, "</body>")
	_, err := fmt.Fprintln(w, "</html>")
	return err
}

func writeStats(w io.Writer, s *Summary) {
	fmt.Fprintln(w, "<h2>Statistics</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Metric</th><th>Value</th></tr>")
	rows := []struct {
		name  string
		value string
	}{
		{"Files", fmt.Sprint(s.Files)},
		{"Scenarios", fmt.Sprint(s.Total)},
		{"Passed", fmt.Sprint(s.Passed)},
		{"Failed", fmt.Sprint(s.Failed)},
		{"Misses", fmt.Sprint(s.Misses)},
		{"Pass Rate", fmt.Sprintf("%.0f%%", s.PassRate)},
		{"Elapsed", fmt.Sprintf("%.2fms", s.ElapsedMillis)},
		{"Duration", s.Duration.String()},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td></tr>\n", row.name, html.EscapeString(row.value))
	}
	fmt.Fprintln(w, "</table>")
	if s.TimedOut {
		fmt.Fprintln(w, `<p class="status-failed">Run timed out before every record arrived.</p>`)
	}
}

func writeResults(w io.Writer, results []scenario.Result) {
	fmt.Fprintln(w, "<h2>Scenarios</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Target</th><th>Method</th><th>Scenario</th>"+
		"<th>Status</th><th>Time</th><th>Message</th></tr>")
	for _, res := range results {
		status, class := "PASSED", "status-passed"
		switch {
		case !res.Hit:
			status, class = "MISSING", "status-missing"
		case !res.Passed:
			status, class = "FAILED", "status-failed"
		}
		fmt.Fprintf(w,
			"<tr><td>%s</td><td>%s</td><td>%s</td><td class=%q>%s</td><td>%.2fms</td><td>%s</td></tr>\n",
			html.EscapeString(res.Target),
			html.EscapeString(res.Method),
			html.EscapeString(res.Key),
			class, status,
			res.RunningTimeMillis,
			html.EscapeString(res.Message),
		)
	}
	fmt.Fprintln(w, "</table>")
}

func writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 1100px; margin: 0 auto; padding: 20px; color: #222; }
h1 { border-bottom: 2px solid #2a6fb0; padding-bottom: 8px; }
table { border-collapse: collapse; width: 100%%; margin: 10px 0; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #2a6fb0; color: #fff; }
.status-passed { color: #1e8449; font-weight: bold; }
.status-failed { color: #c0392b; font-weight: bold; }
.status-missing { color: #b9770e; font-weight: bold; }
footer { margin-top: 30px; color: #777; font-size: 0.9em; }
</style>
</head>
<body>
`, html.EscapeString(title))
}
