package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"digital.vasic.contracts/pkg/scenario"
)

// Summary condenses a scenario run into per-target counts and
// the list of scenarios that did not pass.
type Summary struct {
	ID            string            `json:"id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Targets       []TargetSummary   `json:"targets"`
	Files         int               `json:"files"`
	Total         int               `json:"total"`
	Passed        int               `json:"passed"`
	Failed        int               `json:"failed"`
	Misses        int               `json:"misses"`
	TimedOut      bool              `json:"timed_out,omitempty"`
	PassRate      float64           `json:"pass_rate"`
	ElapsedMillis float64           `json:"elapsed_millis"`
	Duration      time.Duration     `json:"duration"`
	LoadErrors    []string          `json:"load_errors,omitempty"`
	Failures      []scenario.Result `json:"failures,omitempty"`
}

// TargetSummary counts the scenarios of one target.
type TargetSummary struct {
	Target        string  `json:"target"`
	Scenarios     int     `json:"scenarios"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Misses        int     `json:"misses"`
	ElapsedMillis float64 `json:"elapsed_millis"`
}

// BuildSummary summarizes rep. Targets are sorted by name.
func BuildSummary(rep *scenario.Report) *Summary {
	now := time.Now()
	s := &Summary{
		ID:            fmt.Sprintf("summary_%s", now.Format("20060102_150405")),
		GeneratedAt:   now,
		Files:         rep.Files,
		Total:         rep.Total,
		Passed:        rep.Passed,
		Failed:        rep.Failed,
		Misses:        rep.Misses,
		TimedOut:      rep.TimedOut,
		PassRate:      rep.PassRate(),
		ElapsedMillis: rep.ElapsedMillis,
		Duration:      rep.Duration,
		LoadErrors:    rep.LoadErrors,
		Failures:      rep.Failures(),
	}

	byTarget := make(map[string]*TargetSummary)
	for _, res := range rep.Results {
		ts, ok := byTarget[res.Target]
		if !ok {
			ts = &TargetSummary{Target: res.Target}
			byTarget[res.Target] = ts
		}
		ts.Scenarios++
		switch {
		case !res.Hit:
			ts.Misses++
		case res.Passed:
			ts.Passed++
		default:
			ts.Failed++
		}
		ts.ElapsedMillis += res.RunningTimeMillis
	}
	for _, ts := range byTarget {
		s.Targets = append(s.Targets, *ts)
	}
	sort.Slice(s.Targets, func(i, j int) bool {
		return s.Targets[i].Target < s.Targets[j].Target
	})
	return s
}

// SaveSummary writes the summary as JSON and Markdown into
// outputDir and points latest_summary.{json,md} at them.
func SaveSummary(s *Summary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := s.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.json", ts))
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON summary: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.md", ts))
	if err := os.WriteFile(mdPath, []byte(Markdown(s)), 0644); err != nil {
		return fmt.Errorf("failed to write Markdown summary: %w", err)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")
	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

// MarkdownReporter renders reports as a Markdown summary.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a Markdown reporter.
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

// Generate renders the summary of rep as Markdown.
func (r *MarkdownReporter) Generate(rep *scenario.Report) ([]byte, error) {
	return []byte(Markdown(BuildSummary(rep))), nil
}

// Write renders the summary of rep as Markdown to w.
func (r *MarkdownReporter) Write(w io.Writer, rep *scenario.Report) error {
	_, err := io.WriteString(w, Markdown(BuildSummary(rep)))
	return err
}

// Markdown renders s.
func Markdown(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Contract Scenarios - Summary\n\n")
	sb.WriteString(fmt.Sprintf("**Summary ID:** %s\n\n", s.ID))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", s.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Targets\n\n")
	sb.WriteString("| Target | Scenarios | Passed | Failed | Misses | Elapsed |\n")
	sb.WriteString("|--------|-----------|--------|--------|--------|---------|\n")
	for _, t := range s.Targets {
		sb.WriteString(fmt.Sprintf(
			"| %s | %d | %d | %d | %d | %.2fms |\n",
			escapeCell(t.Target), t.Scenarios, t.Passed,
			t.Failed, t.Misses, t.ElapsedMillis,
		))
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Files | %d |\n", s.Files))
	sb.WriteString(fmt.Sprintf("| Scenarios | %d |\n", s.Total))
	sb.WriteString(fmt.Sprintf("| Passed | %d |\n", s.Passed))
	sb.WriteString(fmt.Sprintf("| Failed | %d |\n", s.Failed))
	sb.WriteString(fmt.Sprintf("| Misses | %d |\n", s.Misses))
	sb.WriteString(fmt.Sprintf("| Pass Rate | %.0f%% |\n", s.PassRate))
	sb.WriteString(fmt.Sprintf("| Elapsed | %.2fms |\n", s.ElapsedMillis))
	sb.WriteString(fmt.Sprintf("| Duration | %v |\n", s.Duration))
	if s.TimedOut {
		sb.WriteString("| Timed Out | yes |\n")
	}

	if len(s.Failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		sb.WriteString("| Scenario | Hit | Should Fail | Message |\n")
		sb.WriteString("|----------|-----|-------------|---------|\n")
		for _, f := range s.Failures {
			sb.WriteString(fmt.Sprintf(
				"| %s.%s.%s | %t | %t | %s |\n",
				escapeCell(f.Target), escapeCell(f.Method), escapeCell(f.Key),
				f.Hit, f.ShouldFail, escapeCell(f.Message),
			))
		}
	}

	if len(s.LoadErrors) > 0 {
		sb.WriteString("\n## Skipped Files\n\n")
		for _, e := range s.LoadErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString("*Generated by contracts*\n")

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
