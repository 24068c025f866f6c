package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"digital.vasic.contracts/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"absent", types.Absent, "undefined"},
		{"string is quoted", "ann", `"ann"`},
		{"number", 3, "3"},
		{"long ascii", strings.Repeat("a", 80), `"` + strings.Repeat("a", 63) + "..."},
		{"long multibyte", strings.Repeat("é", 40), `"` + strings.Repeat("é", 31) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describe(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
