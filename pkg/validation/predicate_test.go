package validation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPredicates(t *testing.T) {
	r := NewPredicateRegistry()
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"notEmpty", nil, false},
		{"notEmpty", "  ", false},
		{"notEmpty", "x", true},
		{"notEmpty", []int{}, false},
		{"notEmpty", []int{1}, true},
		{"notEmpty", map[string]any{}, false},
		{"notEmpty", 0, true},
		{"notMock", "Lorem ipsum dolor", false},
		{"notMock", "real data", true},
		{"notMock", 5, true},
		{"noDuplicates", []any{1, 2, 1}, false},
		{"noDuplicates", []int{1, 2}, true},
		{"noDuplicates", "x", false},
		{"isEmail", "a@b.com", true},
		{"isEmail", "Ann <a@b.com>", false},
		{"isEmail", "nope", false},
		{"isEmail", 5, false},
		{"isUUID", uuid.NewString(), true},
		{"isUUID", "x", false},
		{"positive", 1, true},
		{"positive", 0, false},
		{"positive", "1", false},
		{"nonNegative", 0, true},
		{"nonNegative", -1, false},
		{"integer", 2.0, true},
		{"integer", 2.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := r.Lookup(BuiltinModule + "." + tt.name)
			require.True(t, ok)
			got, msg := p(tt.value)
			assert.Equal(t, tt.want, got, msg)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestPredicateRegistry_Register(t *testing.T) {
	r := NewPredicateRegistry()

	require.NoError(t, r.Register("app/users.isActive", func(any) (bool, string) {
		return true, "active"
	}))
	assert.Error(t, r.Register("app/users.isActive", func(any) (bool, string) {
		return true, ""
	}))
	assert.Error(t, r.Register("app/users.nil", nil))
	assert.Error(t, r.RegisterFunc("app/users.nilFunc", nil))

	require.NoError(t, r.RegisterFunc("app/users.isBob", func(v any) bool { return v == "bob" }))
	p, ok := r.Lookup("app/users.isBob")
	require.True(t, ok)
	got, msg := p("bob")
	assert.True(t, got)
	assert.Equal(t, "app/users.isBob holds", msg)

	_, ok = r.Lookup("app/users.other")
	assert.False(t, ok)

	names := r.Names()
	assert.Contains(t, names, "builtin.isEmail")
	assert.Contains(t, names, "app/users.isActive")
	assert.IsIncreasing(t, names)
}
