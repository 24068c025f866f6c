package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *ConsoleLogger)
		level string
		msg   string
	}{
		{"info", func(l *ConsoleLogger) { l.Info("hello") }, "INFO", "hello"},
		{"warn", func(l *ConsoleLogger) { l.Warn("careful") }, "WARN", "careful"},
		{"error", func(l *ConsoleLogger) { l.Error("broken") }, "ERROR", "broken"},
		{"success", func(l *ConsoleLogger) { l.Success("passed") }, "INFO", "passed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewConsoleLoggerTo(&buf, false))
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.msg)
		})
	}
}

func TestConsoleLogger_DebugRequiresVerbose(t *testing.T) {
	var quiet, loud bytes.Buffer
	NewConsoleLoggerTo(&quiet, false).Debug("hidden")
	NewConsoleLoggerTo(&loud, true).Debug("shown")

	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "shown")
}

func TestConsoleLogger_FieldsSortedAndInherited(t *testing.T) {
	var buf bytes.Buffer
	base := NewConsoleLoggerTo(&buf, false)
	child := base.WithFields(StringField("method", "create"))

	child.Info("call", StringField("class", "UserService"))

	out := buf.String()
	assert.Contains(t, out, "class=UserService, method=create")
}
