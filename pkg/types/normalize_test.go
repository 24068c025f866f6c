package types

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"int", 21, 21.0},
		{"string", "x", "x"},
		{"absent", Absent, nil},
		{"symbol", Symbol("a"), "Symbol(a)"},
		{"bigint", big.NewInt(5), 5.0},
		{"time", ts, "2024-05-06T07:08:09Z"},
		{"struct", account{Name: "a", Age: 3}, map[string]any{"Name": "a", "Age": 3.0}},
		{"slice", []int{1, 2}, []any{1.0, 2.0}},
		{"func", func() {}, "<func()>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
