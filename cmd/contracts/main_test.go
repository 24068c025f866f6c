package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/config"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/scenario"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const declarations = `version: "1"
declarations:
  - class: UserService
    method: create
    params:
      - "name=><string>"
      - "age=><number> acceptedValues=:[18|21|65]"
`

func TestLint(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "good.yaml"), declarations)
	bad := writeFile(t, filepath.Join(dir, "bad.yaml"), `declarations:
  - class: UserService
    method: create
    params:
      - "age=><nope>"
`)

	out, err := run(t, "lint", good)
	require.NoError(t, err)
	assert.Equal(t, good+": ok\n", out)

	out, err = run(t, "lint", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract issue(s) found")
	assert.Contains(t, out, bad+": version: version is required")
	assert.Contains(t, out, "declarations[0].params")
}

func TestLint_RequiresArgs(t *testing.T) {
	_, err := run(t, "lint")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "users.json"), `{"admins": [{"role": "admin"}]}`)
	writeFile(t, filepath.Join(dir, "UserService.json"), `{
		"create": {
			"valid": {"inputValues": [{"role": "admin"}]},
			"fromRef": {"inputValues": [{"$ref": "data/users.json/admins/0"}]}
		}
	}`)

	out, err := run(t, "check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "(target UserService, 2 scenarios)")

	writeFile(t, filepath.Join(dir, "Broken.json"), `{"create": {"x": {"inputValues": [{"$ref": "data/none.json"}]}}}`)
	out, err = run(t, "check", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 scenario file(s) invalid")
	assert.Contains(t, out, "FAIL scenario file")
}

func TestSample(t *testing.T) {
	out, err := run(t, "sample", "--count", "4", "age=><number> acceptedValues=:[18|21|65]")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "18\taccepted", lines[0])
	assert.Equal(t, "21\taccepted", lines[1])
	assert.Equal(t, "65\taccepted", lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "\tsample"))
}

func TestSample_DefaultCountFromConfig(t *testing.T) {
	t.Setenv("CONTRACTS_SAMPLE_COUNT", "2")
	out, err := run(t, "sample", "flag=><boolean>")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestSample_ParseError(t *testing.T) {
	_, err := run(t, "sample", "age <number>")
	require.Error(t, err)
}

func savedReport(t *testing.T, dir string) string {
	t.Helper()
	rep := scenario.Report{
		StartedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Files:     1,
		Total:     2,
		Passed:    1,
		Failed:    1,
		Hits:      2,
		Duration:  time.Second,
		Results: []scenario.Result{
			{Target: "Users", Method: "create", Key: "valid", Hit: true, Passed: true},
			{Target: "Users", Method: "create", Key: "guest", Hit: true, Message: "rejected"},
		},
	}
	data, err := json.Marshal(rep)
	require.NoError(t, err)
	return writeFile(t, filepath.Join(dir, "report.json"), string(data))
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	path := savedReport(t, dir)

	tests := []struct {
		format string
		want   string
	}{
		{"md", "# Contract Scenarios - Summary"},
		{"html", "<!DOCTYPE html>"},
		{"json", `"results": [`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := run(t, "render", "--format", tt.format, path)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	_, err := run(t, "render", "--format", "pdf", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}

func TestRender_SavesSummaryAndHistory(t *testing.T) {
	dir := t.TempDir()
	path := savedReport(t, dir)
	reports := filepath.Join(dir, "reports")
	history := filepath.Join(dir, "history.jsonl")

	_, err := run(t, "render", "-o", reports, "--history", history, path)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(reports, "latest_summary.md"))

	out, err := run(t, "history", history)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TIMESTAMP")
	assert.Contains(t, lines[1], "2026-03-01T10:00:01Z")
}

func TestHistory_Last(t *testing.T) {
	dir := t.TempDir()
	path := savedReport(t, dir)
	history := filepath.Join(dir, "history.jsonl")
	for i := 0; i < 3; i++ {
		_, err := run(t, "render", "--history", history, path)
		require.NoError(t, err)
	}

	out, err := run(t, "history", "--last", "1", history)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestRender_BadInput(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "render", filepath.Join(dir, "none.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read report")

	bad := writeFile(t, filepath.Join(dir, "bad.json"), "not json")
	_, err = run(t, "render", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse report")
}

func TestSetup_EnvFileAndConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, filepath.Join(dir, "contracts.yaml"), "sample_count: 7\n")
	envPath := writeFile(t, filepath.Join(dir, ".env"), "CONTRACTS_SAMPLE_COUNT=3\n")

	out, err := run(t, "--config", cfgPath, "sample", "flag=><boolean>")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 7)

	out, err = run(t, "--config", cfgPath, "--env", envPath, "sample", "flag=><boolean>")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{config.LogConsole, false},
		{config.LogJSON, false},
		{config.LogZap, false},
		{"", false},
		{"xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := config.Default()
			cfg.LogFormat = tt.format
			l, err := newLogger(cfg, &bytes.Buffer{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var _ logging.Logger = l
		})
	}
}
