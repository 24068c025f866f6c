// Package record defines the FunctionTestRecord produced for
// every instrumented call, the per-parameter and per-output
// verdicts attached to it, and the helpers that make a record
// safe to serialize.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is a lifecycle stage of an instrumented call.
type State string

// Call lifecycle: INVOKED -> EXECUTING -> COMPLETED, then the
// deferred VALIDATING -> REPORTED.
const (
	StateInvoked    State = "invoked"
	StateExecuting  State = "executing"
	StateCompleted  State = "completed"
	StateValidating State = "validating"
	StateReported   State = "reported"
)

// TypedValue is one passed argument as it appears in reports.
type TypedValue struct {
	Name   string `json:"name,omitempty"`
	Type   string `json:"type"`
	Value  any    `json:"value"`
	Masked bool   `json:"masked,omitempty"`
}

// ParamTestResult is the verdict for one declared parameter.
type ParamTestResult struct {
	// Name is the declared parameter name.
	Name string `json:"name"`

	// Index is the argument position.
	Index int `json:"index"`

	Type          string `json:"type"`
	SubType       string `json:"sub_type"`
	TypePassed    bool   `json:"type_passed"`
	SubTypePassed bool   `json:"sub_type_passed"`

	// RequiredPassed, AcceptedPassed and RejectedPassed report
	// the individual value checks. Checks that were not
	// declared pass.
	RequiredPassed bool `json:"required_passed"`
	AcceptedPassed bool `json:"accepted_passed"`
	RejectedPassed bool `json:"rejected_passed"`

	// Passed is the overall verdict.
	Passed bool `json:"passed"`

	// Value is the sanitized, possibly masked argument.
	Value  any  `json:"value"`
	Masked bool `json:"masked,omitempty"`

	ResultMessage string `json:"result_message"`
}

// OutputTestResult is the verdict for one declared output.
type OutputTestResult struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	SubType       string `json:"sub_type"`
	TypePassed    bool   `json:"type_passed"`
	SubTypePassed bool   `json:"sub_type_passed"`

	// ValuePassed reports the expectedOut comparison; it
	// passes when no expectation was declared.
	ValuePassed bool `json:"value_passed"`

	// Expected holds the evaluated expectations.
	Expected []any `json:"expected,omitempty"`

	Passed bool `json:"passed"`
	Value  any  `json:"value"`
	Masked bool `json:"masked,omitempty"`

	ResultMessage string `json:"result_message"`
}

// FunctionTestRecord describes one intercepted call. It is
// built before the call, completed after it returns, filled in
// by validation and handed to a sink. Once delivered it is not
// mutated.
type FunctionTestRecord struct {
	ID string `json:"id"`

	ClassName        string `json:"class_name"`
	MethodName       string `json:"method_name"`
	MethodSignature  string `json:"method_signature,omitempty"`
	CallerClassName  string `json:"caller_class_name,omitempty"`
	CallerMethodName string `json:"caller_method_name,omitempty"`

	PassedArguments       []TypedValue `json:"passed_arguments"`
	ArgumentsCount        int          `json:"arguments_count"`
	ParamsCount           int          `json:"params_count"`
	DoArgumentCountsMatch bool         `json:"do_argument_counts_match"`

	TestedParams []ParamTestResult  `json:"tested_params"`
	TestedOutput []OutputTestResult `json:"tested_output"`

	StopWatchStart    time.Time `json:"stop_watch_start"`
	StopWatchEnd      time.Time `json:"stop_watch_end"`
	RunningTimeMillis float64   `json:"running_time_millis"`

	// Passed is true only when every parameter and every
	// output passed.
	Passed bool `json:"passed"`

	// ExecutionPassed is false when the call returned an error
	// or panicked.
	ExecutionPassed bool   `json:"execution_passed"`
	ResultMessage   string `json:"result_message"`

	// Error is the message of the call's error or panic.
	Error    string `json:"error,omitempty"`
	Panicked bool   `json:"panicked,omitempty"`

	// CacheKey correlates the record with the input values it
	// was produced from.
	CacheKey string `json:"cache_key,omitempty"`

	// Output is the sanitized, possibly masked return value.
	Output any `json:"output,omitempty"`

	State State `json:"state"`

	args   []any
	result any
	err    error
}

// New creates the pre-call skeleton of a record.
func New(className, methodName, signature string) *FunctionTestRecord {
	return &FunctionTestRecord{
		ID:              uuid.NewString(),
		ClassName:       className,
		MethodName:      methodName,
		MethodSignature: signature,
		State:           StateInvoked,
	}
}

// Begin stores a deep copy of the arguments and starts the
// stopwatch. The copy is what gets validated, so the target and
// the caller stay free to mutate their values.
func (r *FunctionTestRecord) Begin(args []any, paramsCount int, now time.Time) {
	r.args = CloneArgs(args)
	r.ArgumentsCount = len(args)
	r.ParamsCount = paramsCount
	r.DoArgumentCountsMatch = len(args) == paramsCount
	r.StopWatchStart = now
	r.State = StateExecuting
}

// Complete stores a deep copy of the call outcome and stops the
// stopwatch.
func (r *FunctionTestRecord) Complete(result any, err error, now time.Time) {
	r.result = Clone(result)
	r.err = err
	r.StopWatchEnd = now
	r.RunningTimeMillis = float64(now.Sub(r.StopWatchStart).Microseconds()) / 1000
	r.ExecutionPassed = err == nil
	if err != nil {
		r.Error = err.Error()
	}
	r.State = StateCompleted
}

// Args returns the raw arguments of the call.
func (r *FunctionTestRecord) Args() []any { return r.args }

// Result returns the raw return value of the call.
func (r *FunctionTestRecord) Result() any { return r.result }

// Err returns the error the call returned, if any.
func (r *FunctionTestRecord) Err() error { return r.err }

// Release drops the raw values once the record has been
// validated, so that only sanitized data leaves the process.
func (r *FunctionTestRecord) Release() {
	r.args = nil
	r.result = nil
}

// Name returns "Class.method".
func (r *FunctionTestRecord) Name() string {
	if r.ClassName == "" {
		return r.MethodName
	}
	return r.ClassName + "." + r.MethodName
}

// Succeeded reports whether both the call and its validation
// passed.
func (r *FunctionTestRecord) Succeeded() bool {
	return r.Passed && r.ExecutionPassed
}

// FailedParams returns the names of parameters that did not
// pass.
func (r *FunctionTestRecord) FailedParams() []string {
	var out []string
	for _, p := range r.TestedParams {
		if !p.Passed {
			out = append(out, p.Name)
		}
	}
	return out
}

// Summary renders a one-line description of the record.
func (r *FunctionTestRecord) Summary() string {
	status := "PASS"
	if !r.Succeeded() {
		status = "FAIL"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (%.3fms)", status, r.Name(), r.RunningTimeMillis)
	if !r.ExecutionPassed {
		fmt.Fprintf(&b, " error=%q", r.Error)
	}
	if failed := r.FailedParams(); len(failed) > 0 {
		fmt.Fprintf(&b, " failed_params=%s", strings.Join(failed, ","))
	}
	if r.ResultMessage != "" {
		fmt.Fprintf(&b, " %s", r.ResultMessage)
	}
	return b.String()
}
