package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, StringField("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 3}, IntField("n", 3))
	assert.Equal(t, Field{Key: "b", Value: true}, BoolField("b", true))
	assert.Equal(t, Field{Key: "x", Value: 1.5}, LogField("x", 1.5))
	assert.Equal(t,
		Field{Key: "elapsed_ms", Value: 1.5},
		DurationField("elapsed_ms", 1500*time.Microsecond),
	)
}

func TestErrorField(t *testing.T) {
	assert.Equal(t, "<nil>", ErrorField(nil).Value)
	assert.Equal(t, "boom", ErrorField(errors.New("boom")).Value)
	assert.Equal(t, "error", ErrorField(nil).Key)
}

func TestOrNull(t *testing.T) {
	assert.IsType(t, NullLogger{}, OrNull(nil))

	c := NewConsoleLogger(false)
	assert.Same(t, c, OrNull(c))
}

func TestNullLogger_NoPanic(t *testing.T) {
	var l Logger = NullLogger{}
	l.Info("a")
	l.Warn("b")
	l.Error("c")
	l.Debug("d")
	assert.IsType(t, NullLogger{}, l.WithFields(StringField("k", "v")))
	assert.NoError(t, l.Close())
}
