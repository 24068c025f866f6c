package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		elems []string
		end   int
		ok    bool
	}{
		{"simple", "[a|b]", []string{"a", "b"}, 5, true},
		{"empty", "[]", []string{""}, 2, true},
		{"regex keeps pipe", "[/a|b/|c]", []string{"/a|b/", "c"}, 9, true},
		{"regex char class bracket", "[/[]|]/]", []string{"/[]|]/"}, 8, true},
		{"quoted pipe", `["x|y"|z]`, []string{`"x|y"`, "z"}, 9, true},
		{"escaped quote", `["a\"|b"]`, []string{`"a\"|b"`}, 9, true},
		{"braces", `[{"a":"|"}|x]`, []string{`{"a":"|"}`, "x"}, 13, true},
		{"nested arrays", "[[1,2]|[3]] tail", []string{"[1,2]", "[3]"}, 11, true},
		{"predicate", "[(m/p.f)|y]", []string{"(m/p.f)", "y"}, 11, true},
		{"spaces kept", "[ /x/ | y ]", []string{" /x/ ", " y "}, 11, true},
		{"slash inside scalar", "[a/b|c]", []string{"a/b", "c"}, 7, true},
		{"unterminated", "[a|b", nil, 0, false},
		{"not a list", "a|b]", nil, 0, false},
		{"empty input", "", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elems, end, ok := scanList(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.elems, elems)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestCompilePattern(t *testing.T) {
	re, err := CompilePattern("^abc$", "gi")
	assert.NoError(t, err)
	assert.True(t, re.MatchString("ABC"))

	re, err = CompilePattern("^a.c$", "s")
	assert.NoError(t, err)
	assert.True(t, re.MatchString("a\nc"))

	_, err = CompilePattern("a", "x")
	assert.Error(t, err)
}
