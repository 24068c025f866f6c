package types

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Name string
	Age  int
}

func TestRegistry_CategoriesAreDisjoint(t *testing.T) {
	r := NewRegistry()

	seen := map[string]bool{}
	for _, k := range Primitives {
		assert.Equal(t, CategoryPrimitive, r.Category(k), k)
		seen[k] = true
	}
	for _, k := range Containers {
		assert.False(t, seen[k], "kind in both lists: %s", k)
		assert.Equal(t, CategoryContainer, r.Category(k), k)
	}
	assert.Equal(t, CategoryUnknown, r.Category("widget"))
	assert.True(t, r.IsContainer(Array))
	assert.False(t, r.IsContainer(Number))
}

func TestRegistry_Predicates(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	tests := []struct {
		name  string
		kind  string
		value any
		want  bool
	}{
		{"string", String, "x", true},
		{"string rejects symbol", String, Symbol("s"), false},
		{"string rejects json number", String, json.Number("1"), false},
		{"int is number", Number, 42, true},
		{"float is number", Number, 4.2, true},
		{"uint8 is number", Number, uint8(1), true},
		{"json number", Number, json.Number("3"), true},
		{"string is not number", Number, "42", false},
		{"bool", Boolean, true, true},
		{"bigint ptr", BigInt, big.NewInt(7), true},
		{"nil bigint ptr", BigInt, (*big.Int)(nil), false},
		{"symbol", SymbolKind, Symbol("id"), true},
		{"absent is undefined", Undefined, Absent, true},
		{"nil is not undefined", Undefined, nil, false},
		{"nil is null", Null, nil, true},
		{"nil map is null", Null, map[string]any(nil), true},
		{"zero is not null", Null, 0, false},
		{"map is object", Object, map[string]any{"a": 1}, true},
		{"struct is object", Object, account{}, true},
		{"struct ptr is object", Object, &account{}, true},
		{"int-keyed map is not object", Object, map[int]any{}, false},
		{"date is not object", Object, now, false},
		{"slice is array", Array, []string{"a"}, true},
		{"fixed array", Array, [2]int{1, 2}, true},
		{"nil slice is not array", Array, []any(nil), false},
		{"func", Function, func() {}, true},
		{"date", Date, now, true},
		{"date ptr", Date, &now, true},
		{"event", EventKind, BasicEvent{Name: "saved"}, true},
		{"unknown kind", "widget", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Accepts(tt.kind, tt.value))
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		value    any
		typ, sub string
		want     Resolution
	}{
		{
			name:  "untyped accepts anything",
			value: 1,
			want:  Resolution{TypeAccepted: true, SubType: NotApplicable, SubTypeAccepted: true},
		},
		{
			name:  "primitive gets N/A",
			value: 21, typ: Number,
			want: Resolution{Type: Number, TypeAccepted: true, SubType: NotApplicable, SubTypeAccepted: true},
		},
		{
			name:  "primitive mismatch",
			value: "21", typ: Number,
			want: Resolution{Type: Number, SubType: NotApplicable, SubTypeAccepted: true},
		},
		{
			name:  "object defaults to structured",
			value: map[string]any{}, typ: Object,
			want: Resolution{Type: Object, TypeAccepted: true, SubType: Structured, SubTypeAccepted: true},
		},
		{
			name:  "array of string accepted",
			value: []any{"a", "b"}, typ: Array, sub: String,
			want: Resolution{Type: Array, TypeAccepted: true, SubType: String, SubTypeAccepted: true},
		},
		{
			name:  "array of string with a number",
			value: []any{"a", 1}, typ: Array, sub: String,
			want: Resolution{Type: Array, TypeAccepted: true, SubType: String},
		},
		{
			name:  "object of number",
			value: map[string]any{"a": 1.0, "b": 2}, typ: Object, sub: Number,
			want: Resolution{Type: Object, TypeAccepted: true, SubType: Number, SubTypeAccepted: true},
		},
		{
			name:  "array type mismatch fails subtype",
			value: "nope", typ: Array, sub: String,
			want: Resolution{Type: Array, SubType: String},
		},
		{
			name:  "unknown subtype",
			value: []any{1}, typ: Array, sub: "widget",
			want: Resolution{Type: Array, TypeAccepted: true, SubType: "widget"},
		},
		{
			name:  "unknown type",
			value: 1, typ: "widget",
			want: Resolution{Type: "widget", SubType: NotApplicable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.value, tt.typ, tt.sub)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.TypeAccepted && tt.want.SubTypeAccepted, got.Passed())
		})
	}
}

func TestRegistry_Convert(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		kind string
		raw  string
		want any
	}{
		{"number", Number, "18", 18.0},
		{"bool", Boolean, "true", true},
		{"quoted string", String, `"a|b"`, "a|b"},
		{"single quoted", String, "'admin'", "admin"},
		{"bare string", String, "admin", "admin"},
		{"null", Null, "null", nil},
		{"json array", Array, `[1,"a"]`, []any{1.0, "a"}},
		{"symbol", SymbolKind, "id", Symbol("id")},
		{"untyped json", "", "65", 65.0},
		{"untyped word", "", "guest", "guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Convert(tt.kind, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	n, err := r.Convert(BigInt, "12345678901234567890n")
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567890", n.(*big.Int).String())

	d, err := r.Convert(Date, "2024-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.(time.Time).Year())

	for _, bad := range []struct{ kind, raw string }{
		{Number, "abc"}, {Boolean, "yes?"}, {Null, "nil"},
		{Function, "f"}, {Date, "yesterday"},
	} {
		_, err := r.Convert(bad.kind, bad.raw)
		assert.Error(t, err, "%s %s", bad.kind, bad.raw)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Kind{
		Name:    "email",
		Accepts: func(v any) bool { s, ok := v.(string); return ok && len(s) > 3 },
	})
	require.NoError(t, err)
	assert.True(t, r.Accepts("email", "a@b.c"))

	_, err = r.Convert("email", "x")
	assert.Error(t, err)

	assert.Error(t, r.Register(Kind{Name: String, Accepts: isString}))
	assert.Error(t, r.Register(Kind{Name: "nopred"}))
}

func TestRegistry_KindOf(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, String, r.KindOf("x"))
	assert.Equal(t, Number, r.KindOf(3))
	assert.Equal(t, Null, r.KindOf(nil))
	assert.Equal(t, Object, r.KindOf(map[string]any{}))
	assert.Equal(t, Array, r.KindOf([]int{1}))
	assert.Equal(t, "unknown", r.KindOf(make(chan int)))
}
