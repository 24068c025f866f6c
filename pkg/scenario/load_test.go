package scenario

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "users.json"), `{"admins": [{"name": "carol"}], "pair": [1, 2]}`)
	path := filepath.Join(dir, "UserService.scenarios.json")
	writeFile(t, path, `{
		"create": {
			"valid": {"inputValues": [{"name": "alice"}], "description": "plain"},
			"fromRef": {"inputValues": [{"$ref": "data/users.json/admins/0"}]},
			"rejected": {"inputValues": [null], "shouldFail": true}
		},
		"add": {
			"refList": {"inputValues": {"$ref": "data/users.json/pair"}}
		}
	}`)

	f, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "UserService", f.Target)
	require.Len(t, f.Scenarios, 4)

	assert.Equal(t, Scenario{Key: "refList", Method: "add", InputValues: []any{1.0, 2.0}}, f.Scenarios[0])
	assert.Equal(t, "fromRef", f.Scenarios[1].Key)
	assert.Equal(t, []any{map[string]any{"name": "carol"}}, f.Scenarios[1].InputValues)
	assert.Equal(t, "rejected", f.Scenarios[2].Key)
	assert.True(t, f.Scenarios[2].ShouldFail)
	assert.Equal(t, []any{nil}, f.Scenarios[2].InputValues)
	assert.Equal(t, "plain", f.Scenarios[3].Description)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid json", `{"create": `, "invalid JSON"},
		{"not an object", `[1, 2]`, "schema validation failed"},
		{"empty file", `{}`, "schema validation failed"},
		{"missing inputValues", `{"create": {"x": {"shouldFail": true}}}`, "schema validation failed"},
		{"inputValues scalar", `{"create": {"x": {"inputValues": 3}}}`, "schema validation failed"},
		{"shouldFail not bool", `{"create": {"x": {"inputValues": [], "shouldFail": "yes"}}}`, "schema validation failed"},
		{"unknown field", `{"create": {"x": {"inputValues": [], "extra": 1}}}`, "schema validation failed"},
		{"dangling ref", `{"create": {"x": {"inputValues": [{"$ref": "nope.json"}]}}}`, "no such data file"},
		{"ref to non-array", `{"create": {"x": {"inputValues": {"$ref": "obj.data.json"}}}}`, "must resolve to an array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "obj.data.json"), `{"a": 1}`)
			path := filepath.Join(dir, "Target.json")
			writeFile(t, path, tt.content)

			_, err := LoadFile(path, nil)
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, path, le.Path)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	var le *LoadError
	require.ErrorAs(t, err, &le)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"A.json", "B.json", "C.json", "D.json"} {
		p := filepath.Join(dir, name)
		paths = append(paths, p)
		writeFile(t, p, `{"m": {"s": {"inputValues": []}}}`)
	}
	writeFile(t, paths[2], `{"m": 1}`)

	files, errs := LoadFiles(context.Background(), paths, 2)
	require.Len(t, files, 3)
	require.Len(t, errs, 1)
	assert.Equal(t, "A", files[0].Target)
	assert.Equal(t, "D", files[2].Target)
	assert.Contains(t, errs[0].Error(), "C.json")
}

func TestLoadFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "A.json")
	writeFile(t, p, `{"m": {"s": {"inputValues": []}}}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	files, errs := LoadFiles(ctx, []string{p}, 1)
	assert.Empty(t, files)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}
