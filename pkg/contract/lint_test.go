package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lint.yaml", `declarations:
  - class: A
    method: run
    params:
      - "x=><number> acceptedValues=:[one]"
      - "y=><string> acceptedValues=:[a] rejectedValues=:[b]"
  - class: A
    method: run
  - class: A
    output:
      - "r=><numbr>"
`)

	issues := NewParser(nil).LintFile(path)
	require.Len(t, issues, 6)

	assert.Equal(t, "version", issues[0].Field)
	assert.Equal(t, -1, issues[0].Index)

	assert.Equal(t, "params[0]", issues[1].Field)
	assert.Equal(t, ClauseAccepted, issues[1].Clause)
	assert.Contains(t, issues[1].Error(), "declarations[0].params[0] (acceptedValues)")

	assert.Equal(t, "params[1]", issues[2].Field)
	assert.Contains(t, issues[2].Message, "rejectedValues is ignored")

	assert.Equal(t, 1, issues[3].Index)
	assert.Contains(t, issues[3].Message, "duplicate declaration: A.run")

	assert.Equal(t, 2, issues[4].Index)
	assert.Equal(t, "method", issues[4].Field)
	assert.Equal(t, "output[0]", issues[5].Field)
}

func TestLintFile_Unreadable(t *testing.T) {
	p := NewParser(nil)

	issues := p.LintFile("/nonexistent/decl.yaml")
	require.Len(t, issues, 1)
	assert.Equal(t, "file", issues[0].Field)

	path := writeFile(t, t.TempDir(), "bad.yaml", "declarations: [")
	issues = p.LintFile(path)
	require.Len(t, issues, 1)
	assert.Equal(t, "syntax", issues[0].Field)
	assert.Equal(t, "syntax: "+issues[0].Message, issues[0].Error())
}
