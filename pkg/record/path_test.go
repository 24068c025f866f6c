package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type account struct {
	Owner *profile `json:"owner"`
	Tags  []string
}

func TestLookup(t *testing.T) {
	data := map[string]any{
		"user": map[string]any{
			"role":  "admin",
			"empty": nil,
			"list":  []any{"x", map[string]any{"id": 7}},
		},
		"acct": account{
			Owner: &profile{Email: "o@x.io"},
			Tags:  []string{"a", "b"},
		},
		"typed": map[string]int{"n": 3},
	}

	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{"user.role", "admin", true},
		{"user.empty", nil, true},
		{"user.list.0", "x", true},
		{"user.list.1.id", 7, true},
		{"user.list.2", nil, false},
		{"user.list.x", nil, false},
		{"user.missing", nil, false},
		{"user.role.deeper", nil, false},
		{"acct.owner.email", "o@x.io", true},
		{"acct.Owner.Email", "o@x.io", true},
		{"acct.tags.1", "b", true},
		{"acct.owner.secret", nil, false},
		{"typed.n", 3, true},
		{"", data, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Lookup(data, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_NilPointer(t *testing.T) {
	_, ok := Lookup(account{}, "owner.email")
	assert.False(t, ok)
}

func TestMaskPaths(t *testing.T) {
	original := map[string]any{
		"user": map[string]any{
			"name":     "ann",
			"password": "hunter2",
			"keys":     []any{"k1", "k2"},
		},
	}

	got := MaskPaths(original, "user.password", "user.keys.1", "user.nope", "other")
	assert.Equal(t, map[string]any{
		"user": map[string]any{
			"name":     "ann",
			"password": Masked,
			"keys":     []any{"k1", Masked},
		},
	}, got)
	assert.Equal(t, "hunter2", original["user"].(map[string]any)["password"], "input is not modified")

	assert.Equal(t, Masked, MaskPaths("secret", ""))
	assert.Nil(t, MaskValue(nil))
	assert.Equal(t, Masked, MaskValue(123))
}
