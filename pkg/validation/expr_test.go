package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprEvaluator_Eval(t *testing.T) {
	x := NewExprEvaluator()
	tests := []struct {
		name string
		expr string
		vars map[string]any
		want any
	}{
		{"int arithmetic", "a + b", map[string]any{"a": 2, "b": 3}, float64(5)},
		{"double arithmetic", "a * 1.5", map[string]any{"a": 2.5}, 3.75},
		{"string concat", "first + ' ' + last", map[string]any{"first": "Ada", "last": "Lovelace"}, "Ada Lovelace"},
		{"map field", "user.name + '!'", map[string]any{"user": map[string]any{"name": "ann"}}, "ann!"},
		{"list", "[a, b]", map[string]any{"a": 1, "b": 2}, []any{float64(1), float64(2)}},
		{"size", "size(items)", map[string]any{"items": []string{"x", "y"}}, float64(2)},
		{"boolean", "n > 10", map[string]any{"n": 11}, true},
		{"null", "null", nil, nil},
		{"invalid names skipped", "1 + 1", map[string]any{"in": 5, "bad-name": 1}, float64(2)},
		{"mixed numbers", "a + b", map[string]any{"a": 1.5, "b": 2}, 3.5},
		{"fraction plus literal", "a + 2", map[string]any{"a": 1.5}, 3.5},
		{"division of integral values", "a / b", map[string]any{"a": 3.0, "b": 2.0}, 1.5},
		{"division of literals", "3 / 2", nil, 1.5},
		{"nested literals", "(a - 1) * 2", map[string]any{"a": 0.25}, -1.5},
		{"size keeps integer arithmetic", "size(items) - 1", map[string]any{"items": []any{"x", "y"}}, float64(1)},
		{"integral equality", "a == 2", map[string]any{"a": 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := x.Eval(tt.expr, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExprEvaluator_Errors(t *testing.T) {
	x := NewExprEvaluator()

	_, err := x.Eval("a +", map[string]any{"a": 1})
	assert.ErrorContains(t, err, "failed to compile")

	_, err = x.Eval("missing + 1", nil)
	assert.ErrorContains(t, err, "failed to compile")

	_, err = x.Eval("user.age + 1", map[string]any{"user": map[string]any{"name": "ann"}})
	assert.ErrorContains(t, err, "failed to evaluate")
}

func TestExprEvaluator_EvalBool(t *testing.T) {
	x := NewExprEvaluator()

	ok, err := x.EvalBool("a > 1", map[string]any{"a": 2})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = x.EvalBool("a", map[string]any{"a": 2})
	assert.ErrorContains(t, err, "did not return a boolean")
}

func TestExprEvaluator_CachesPrograms(t *testing.T) {
	x := NewExprEvaluator()
	for i := 0; i < 3; i++ {
		_, err := x.Eval("a + 1", map[string]any{"a": i})
		require.NoError(t, err)
	}
	_, err := x.Eval("a + 1", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Len(t, x.programs, 2)
}
