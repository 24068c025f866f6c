package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/scenario"
)

func TestJSONReporter_Generate(t *testing.T) {
	tests := []struct {
		name     string
		pretty   bool
		indented bool
	}{
		{"compact", false, false},
		{"pretty", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := NewJSONReporter(tt.pretty).Generate(sampleReport())
			require.NoError(t, err)
			assert.Equal(t, tt.indented, strings.Contains(string(data), "\n  "))

			var got scenario.Report
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, 4, got.Total)
			assert.Len(t, got.Results, 4)
			assert.Equal(t, "guest", got.Results[1].Key)
			assert.True(t, got.Results[1].ShouldFail)
		})
	}
}

func TestJSONReporter_SnakeCaseFields(t *testing.T) {
	data, err := NewJSONReporter(false).Generate(sampleReport())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "elapsed_millis")
	assert.Contains(t, raw, "load_errors")
	assert.NotContains(t, raw, "timed_out")
}
