package validation

import (
	"fmt"

	"digital.vasic.contracts/pkg/record"
)

// ConfigError reports a value matched by both the accepted and
// the rejected list of a contract. It only surfaces when a real
// call is validated and is recorded as a failed parameter.
type ConfigError struct {
	Param string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(
		"configuration error: %s value %s is both accepted and rejected",
		e.Param, e.Value,
	)
}

// ValidationError describes one failed parameter or output of
// a validated record. Validation failures are recorded, never
// returned to the instrumented caller; these errors exist for
// reporting tools.
type ValidationError struct {
	Function string
	Target   string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Function, e.Target, e.Reason)
}

// Failures lists the failed parameters and outputs of rec.
func Failures(rec *record.FunctionTestRecord) []*ValidationError {
	var out []*ValidationError
	for _, p := range rec.TestedParams {
		if !p.Passed {
			out = append(out, &ValidationError{
				Function: rec.Name(),
				Target:   "param " + p.Name,
				Reason:   p.ResultMessage,
			})
		}
	}
	for _, o := range rec.TestedOutput {
		if !o.Passed {
			out = append(out, &ValidationError{
				Function: rec.Name(),
				Target:   "output " + o.Name,
				Reason:   o.ResultMessage,
			})
		}
	}
	return out
}
