package logging

import "strings"

// MaskingLogger is a decorator that hides sensitive data before
// passing entries to the inner logger. Fields whose key is in
// the masked set are replaced wholesale; secret substrings are
// redacted wherever they appear in messages or string fields.
type MaskingLogger struct {
	inner   Logger
	keys    map[string]bool
	secrets []string
}

// NewMaskingLogger creates a logger that masks the values of
// the given field keys.
func NewMaskingLogger(inner Logger, keys ...string) *MaskingLogger {
	m := &MaskingLogger{
		inner: OrNull(inner),
		keys:  make(map[string]bool, len(keys)),
	}
	for _, k := range keys {
		m.keys[k] = true
	}
	return m
}

// WithSecrets returns a copy that also redacts the given
// secret strings.
func (m *MaskingLogger) WithSecrets(secrets ...string) *MaskingLogger {
	cp := *m
	cp.secrets = append(append([]string(nil), m.secrets...), secrets...)
	return &cp
}

// RedactString masks all but the first 4 characters of s.
// Strings of 4 characters or fewer are fully masked.
func RedactString(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func (m *MaskingLogger) redact(msg string) string {
	for _, secret := range m.secrets {
		if len(secret) > 4 {
			msg = strings.ReplaceAll(msg, secret, RedactString(secret))
		}
	}
	return msg
}

func (m *MaskingLogger) mask(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		switch {
		case m.keys[f.Key]:
			out[i] = Field{Key: f.Key, Value: "****"}
		default:
			if s, ok := f.Value.(string); ok {
				out[i] = Field{Key: f.Key, Value: m.redact(s)}
			} else {
				out[i] = f
			}
		}
	}
	return out
}

// Info logs a masked informational message.
func (m *MaskingLogger) Info(msg string, fields ...Field) {
	m.inner.Info(m.redact(msg), m.mask(fields)...)
}

// Warn logs a masked warning message.
func (m *MaskingLogger) Warn(msg string, fields ...Field) {
	m.inner.Warn(m.redact(msg), m.mask(fields)...)
}

// Error logs a masked error message.
func (m *MaskingLogger) Error(msg string, fields ...Field) {
	m.inner.Error(m.redact(msg), m.mask(fields)...)
}

// Debug logs a masked debug message.
func (m *MaskingLogger) Debug(msg string, fields ...Field) {
	m.inner.Debug(m.redact(msg), m.mask(fields)...)
}

// WithFields returns a MaskingLogger wrapping a derived inner
// logger. The default fields are masked before being attached.
func (m *MaskingLogger) WithFields(fields ...Field) Logger {
	return &MaskingLogger{
		inner:   m.inner.WithFields(m.mask(fields)...),
		keys:    m.keys,
		secrets: m.secrets,
	}
}

// Close closes the inner logger.
func (m *MaskingLogger) Close() error {
	return m.inner.Close()
}
