package instrument

import "fmt"

// TargetExecutionError describes a failed call in its record.
// The caller always receives the target's own error or panic,
// never this type.
type TargetExecutionError struct {
	Function string
	Err      error
	Panic    any
	// Exited is set when the target ended its goroutine with
	// runtime.Goexit.
	Exited bool
}

func (e *TargetExecutionError) Error() string {
	if e.Exited {
		return fmt.Sprintf("%s exited its goroutine", e.Function)
	}
	if e.Err == nil {
		return fmt.Sprintf("panic in %s: %v", e.Function, e.Panic)
	}
	return fmt.Sprintf("%s failed: %v", e.Function, e.Err)
}

func (e *TargetExecutionError) Unwrap() error {
	return e.Err
}
