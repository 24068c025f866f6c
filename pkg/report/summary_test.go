package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/scenario"
)

func TestBuildSummary(t *testing.T) {
	s := BuildSummary(sampleReport())

	assert.True(t, strings.HasPrefix(s.ID, "summary_"))
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Misses)
	assert.InDelta(t, 66.67, s.PassRate, 0.01)

	require.Len(t, s.Targets, 2)
	assert.Equal(t, TargetSummary{Target: "Orders", Scenarios: 1, Misses: 1}, s.Targets[0])
	assert.Equal(t, TargetSummary{
		Target:        "Users",
		Scenarios:     3,
		Passed:        2,
		Failed:        1,
		ElapsedMillis: 7.5,
	}, s.Targets[1])

	require.Len(t, s.Failures, 2)
	assert.Equal(t, "root", s.Failures[0].Key)
	assert.Equal(t, "all", s.Failures[1].Key)
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(&scenario.Report{})
	assert.Empty(t, s.Targets)
	assert.Zero(t, s.PassRate)
	assert.Empty(t, s.Failures)
}

func TestMarkdown(t *testing.T) {
	rep := sampleReport()
	rep.TimedOut = true
	md := Markdown(BuildSummary(rep))

	assert.Contains(t, md, "# Contract Scenarios - Summary")
	assert.Contains(t, md, "| Orders | 1 | 0 | 0 | 1 | 0.00ms |")
	assert.Contains(t, md, "| Pass Rate | 67% |")
	assert.Contains(t, md, "| Timed Out | yes |")
	assert.Contains(t, md, "## Failures")
	assert.Contains(t, md, `[FAIL] id \| rejected`)
	assert.Contains(t, md, "## Skipped Files")
	assert.Contains(t, md, "- scenario file Broken.json: invalid JSON")
}

func TestMarkdown_NoFailures(t *testing.T) {
	md := Markdown(BuildSummary(&scenario.Report{Total: 1, Passed: 1, Hits: 1}))
	assert.NotContains(t, md, "## Failures")
	assert.NotContains(t, md, "## Skipped Files")
	assert.NotContains(t, md, "Timed Out")
}

func TestSaveSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s := BuildSummary(sampleReport())
	require.NoError(t, SaveSummary(s, dir))

	ts := s.GeneratedAt.Format("20060102_150405")
	data, err := os.ReadFile(filepath.Join(dir, "summary_"+ts+".json"))
	require.NoError(t, err)
	var got Summary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s.ID, got.ID)
	assert.Len(t, got.Targets, 2)

	md, err := os.ReadFile(filepath.Join(dir, "latest_summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), s.ID)
}

func TestSaveSummary_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := SaveSummary(BuildSummary(sampleReport()), filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}
