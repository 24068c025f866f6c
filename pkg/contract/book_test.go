package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userDeclarations = `version: "1.0"
name: users
declarations:
  - class: UserService
    method: create
    signature: create(name, age)
    params:
      - "name=><string>"
      - "age=><number> acceptedValues=:[18|21|65]"
    output:
      - "result=><object>"
  - class: UserService
    method: find
    static: true
    params:
      - "filter=><object> required=:[{\"filter.role\":\"admin\"}]"
      - "broken"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDeclarations_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", userDeclarations)

	decls, err := LoadDeclarations(path)
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "UserService.create", decls[0].Key())
	assert.Equal(t, "create(name, age)", decls[0].Signature)
	assert.Len(t, decls[0].Params, 2)
	assert.True(t, decls[1].Static)
}

func TestLoadDeclarations_JSON(t *testing.T) {
	data, err := json.MarshalIndent(DeclarationFile{
		Version: "1.0",
		Declarations: []Declaration{{
			Class:  "Math",
			Method: "add",
			Params: []string{"a=><number>", "b=><number>"},
			Output: []string{`sum=><number> expectedOut=:["${a + b}"]`},
		}},
	}, "", "  ")
	require.NoError(t, err)
	path := writeFile(t, t.TempDir(), "math.json", string(data))

	decls, err := LoadDeclarations(path)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, `sum=><number> expectedOut=:["${a + b}"]`, decls[0].Output[0])
}

func TestLoadDeclarations_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDeclarations(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "declarations: [unterminated")
	_, err = LoadDeclarations(bad)
	assert.Error(t, err)

	noMethod := writeFile(t, dir, "nomethod.yaml", "version: \"1\"\ndeclarations:\n  - class: X\n")
	_, err = LoadDeclarations(noMethod)
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	c := Compile(Declaration{
		Class:  "UserService",
		Method: "find",
		Params: []string{"filter=><object>", "broken", "limit?=><number>"},
		Output: []string{"result=><array object>"},
	})

	require.Len(t, c.Params, 3)
	require.Len(t, c.Output, 1)
	assert.Equal(t, []string{"filter", "", "limit"}, c.ParamNames())
	assert.Equal(t, ParseErrorType, c.Params[1].Type)
	assert.Len(t, c.Errors, 1)
	assert.Error(t, c.Err())
	assert.Equal(t, "object", c.Output[0].SubType)

	ok := Compile(Declaration{Method: "noop"})
	assert.NoError(t, ok.Err())
	assert.Equal(t, "noop", ok.Decl.Key())
}

func TestBook_LoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", userDeclarations)

	b := NewBook(nil)
	require.NoError(t, b.LoadFile(path))
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, []string{path}, b.Sources())

	create, ok := b.Get("UserService", "create")
	require.True(t, ok)
	assert.NoError(t, create.Err())
	assert.Len(t, create.Params[1].AcceptedValues, 3)

	find, ok := b.Get("UserService", "find")
	require.True(t, ok)
	assert.Len(t, find.Errors, 1, "a broken contract does not abort the load")

	_, ok = b.Get("UserService", "delete")
	assert.False(t, ok)
}

func TestBook_LoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.yaml", userDeclarations)
	writeFile(t, dir, "math.yml", "version: \"1\"\ndeclarations:\n  - class: Math\n    method: add\n")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	b := NewBook(nil)
	require.NoError(t, b.LoadDir(dir))
	assert.Equal(t, 3, b.Count())

	all := b.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Math.add", all[0].Decl.Key())
	assert.Equal(t, "UserService.create", all[1].Decl.Key())
}

func TestBook_LoadDir_Errors(t *testing.T) {
	b := NewBook(nil)
	assert.Error(t, b.LoadDir("/nonexistent/declarations"))

	dir := t.TempDir()
	writeFile(t, dir, "bad.json", "{invalid")
	assert.Error(t, b.LoadDir(dir))
}

func TestBook_Add(t *testing.T) {
	b := NewBook(NewParser(nil))
	c := b.Add(Declaration{Method: "ping", Params: []string{"host=><string>"}})
	assert.NoError(t, c.Err())

	got, ok := b.Get("", "ping")
	require.True(t, ok)
	assert.Same(t, c, got)
}
