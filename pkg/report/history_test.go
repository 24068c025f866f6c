package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendToHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	rep := sampleReport()

	require.NoError(t, AppendToHistory(path, rep, "reports/a.json"))
	rep.TimedOut = true
	require.NoError(t, AppendToHistory(path, rep, ""))

	entries, err := ReadHistory(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 4, entries[0].Total)
	assert.Equal(t, 1, entries[0].Misses)
	assert.Equal(t, "1.5s", entries[0].Duration)
	assert.Equal(t, "reports/a.json", entries[0].ReportPath)
	assert.True(t, entries[0].Timestamp.Equal(rep.StartedAt.Add(rep.Duration)))
	assert.False(t, entries[0].TimedOut)
	assert.True(t, entries[1].TimedOut)
}

func TestAppendToHistory_MarshalError(t *testing.T) {
	original := jsonMarshal
	t.Cleanup(func() { jsonMarshal = original })
	jsonMarshal = func(any) ([]byte, error) { return nil, assert.AnError }

	err := AppendToHistory(filepath.Join(t.TempDir(), "h.jsonl"), sampleReport(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal history entry")
}

func TestAppendToHistory_OpenError(t *testing.T) {
	err := AppendToHistory(filepath.Join(t.TempDir(), "missing", "h.jsonl"), sampleReport(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open history file")
}

func TestReadHistory(t *testing.T) {
	dir := t.TempDir()

	entries, err := ReadHistory(filepath.Join(dir, "none.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\"total\":1}\n\nnot json\n"), 0644))
	_, err = ReadHistory(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history line 3")
}
