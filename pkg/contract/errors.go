package contract

import "fmt"

// ErrorKind distinguishes malformed DSL from well-formed DSL
// with an invalid meaning.
type ErrorKind string

const (
	// Structural errors are malformed brackets, JSON or
	// missing separators.
	Structural ErrorKind = "structural"
	// Semantic errors are unknown type tokens, invalid
	// literals or patterns.
	Semantic ErrorKind = "semantic"
)

// ParseError describes why a contract DSL string was rejected.
type ParseError struct {
	Kind   ErrorKind
	Input  string
	Clause string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Clause != "" {
		return fmt.Sprintf(
			"%s parse error in clause %s of %q: %s",
			e.Kind, e.Clause, e.Input, e.Reason,
		)
	}
	return fmt.Sprintf(
		"%s parse error in %q: %s", e.Kind, e.Input, e.Reason,
	)
}

func structural(input, clause, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   Structural,
		Input:  input,
		Clause: clause,
		Reason: fmt.Sprintf(format, args...),
	}
}

func semantic(input, clause, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   Semantic,
		Input:  input,
		Clause: clause,
		Reason: fmt.Sprintf(format, args...),
	}
}
