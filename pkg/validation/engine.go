// Package validation checks recorded calls against their
// parameter and output contracts.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/record"
	"digital.vasic.contracts/pkg/types"
)

// Engine validates FunctionTestRecords. It is safe for
// concurrent use.
type Engine struct {
	types      *types.Registry
	predicates *PredicateRegistry
	expr       *ExprEvaluator
	logger     logging.Logger
	depth      int

	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

// Option configures an Engine.
type Option func(*Engine)

// WithTypes sets the type registry used for type resolution.
func WithTypes(r *types.Registry) Option {
	return func(e *Engine) { e.types = r }
}

// WithPredicates sets the predicate registry.
func WithPredicates(r *PredicateRegistry) Option {
	return func(e *Engine) { e.predicates = r }
}

// WithLogger sets the logger for contract diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSanitizeDepth bounds how deep recorded values are
// copied into reports.
func WithSanitizeDepth(depth int) Option {
	return func(e *Engine) { e.depth = depth }
}

// NewEngine creates an Engine with the default type registry
// and the builtin predicates.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		types:    types.Default,
		expr:     NewExprEvaluator(),
		logger:   logging.NullLogger{},
		depth:    record.DefaultDepth,
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.predicates == nil {
		e.predicates = NewPredicateRegistry()
	}
	e.logger = logging.OrNull(e.logger)
	return e
}

// Predicates returns the engine's predicate registry.
func (e *Engine) Predicates() *PredicateRegistry {
	return e.predicates
}

// ValidateCall validates every parameter and output of a
// completed record and sets its verdict. The record's raw
// values are released afterwards.
func (e *Engine) ValidateCall(c *contract.Compiled, rec *record.FunctionTestRecord) {
	rec.State = record.StateValidating
	args := rec.Args()

	var params []*contract.ParameterContract
	var outputs []*contract.ParameterContract
	if c != nil {
		params, outputs = c.Params, c.Output
	}

	rec.PassedArguments = e.passedArguments(params, args)
	rec.TestedParams = make([]record.ParamTestResult, 0, len(params))
	env := make(map[string]any, len(params))
	passed := true

	for i, pc := range params {
		value := types.Absent
		if i < len(args) {
			value = args[i]
		}
		res := e.ValidateParam(pc, i, value)
		rec.TestedParams = append(rec.TestedParams, res)
		passed = passed && res.Passed
		if pc.Name != "" && !pc.Failed() && !types.IsAbsent(value) {
			env[pc.Name] = value
		}
	}

	rec.TestedOutput = make([]record.OutputTestResult, 0, len(outputs))
	for _, oc := range outputs {
		var res record.OutputTestResult
		if rec.ExecutionPassed {
			res = e.ValidateOutput(oc, env, rec.Result())
		} else {
			res = record.OutputTestResult{
				Name:          oc.Name,
				Type:          oc.Type,
				SubType:       oc.SubType,
				ResultMessage: "no output: call failed",
			}
		}
		rec.TestedOutput = append(rec.TestedOutput, res)
		passed = passed && res.Passed
	}

	if rec.ExecutionPassed {
		rec.Output = e.presentOutput(outputs, rec.Result())
	}
	rec.Passed = passed
	rec.ResultMessage = summarize(rec)
	rec.Release()
}

// ValidateParam checks one argument against its contract. A
// types.Absent value stands for a missing argument.
func (e *Engine) ValidateParam(
	pc *contract.ParameterContract,
	index int,
	value any,
) record.ParamTestResult {
	res := record.ParamTestResult{
		Name:           pc.Name,
		Index:          index,
		Type:           pc.Type,
		SubType:        pc.SubType,
		RequiredPassed: true,
		AcceptedPassed: true,
		RejectedPassed: true,
	}
	res.Value, res.Masked = e.present(pc, value)

	if pc.Failed() {
		res.ResultMessage = "invalid contract: " + pc.Reason
		return res
	}
	if types.IsAbsent(value) && pc.Optional {
		res.TypePassed, res.SubTypePassed, res.Passed = true, true, true
		res.ResultMessage = "optional parameter absent"
		return res
	}

	v := e.checkValue(pc, value, nil)
	res.SubType = v.subType
	res.TypePassed = v.typePassed
	res.SubTypePassed = v.subTypePassed
	res.RequiredPassed = v.requiredPassed
	res.AcceptedPassed = v.acceptedPassed
	res.RejectedPassed = v.rejectedPassed
	res.Passed = v.passed()
	res.ResultMessage = v.message()
	return res
}

// ValidateOutput checks a return value against an output
// contract. params binds parameter names to the call's
// arguments for expectedOut templates.
func (e *Engine) ValidateOutput(
	oc *contract.ParameterContract,
	params map[string]any,
	value any,
) record.OutputTestResult {
	res := record.OutputTestResult{
		Name:        oc.Name,
		Type:        oc.Type,
		SubType:     oc.SubType,
		ValuePassed: true,
	}
	res.Value, res.Masked = e.present(oc, value)

	if oc.Failed() {
		res.ResultMessage = "invalid contract: " + oc.Reason
		return res
	}
	if (value == nil || types.IsAbsent(value)) && oc.Optional {
		res.TypePassed, res.SubTypePassed, res.Passed = true, true, true
		res.ResultMessage = "optional output absent"
		return res
	}

	v := e.checkValue(oc, value, params)
	res.SubType = v.subType
	res.TypePassed = v.typePassed
	res.SubTypePassed = v.subTypePassed

	if len(oc.ExpectedOut) > 0 {
		matched, expected, notes := e.matchExpected(oc.ExpectedOut, value, params)
		res.ValuePassed = matched
		for _, x := range expected {
			res.Expected = append(res.Expected, record.Sanitize(x, e.depth))
		}
		if !matched {
			v.failures = append(v.failures, expectedMismatch(value, expected, oc.Mask))
		}
		v.failures = append(v.failures, notes...)
	}

	res.Passed = v.passed() && res.ValuePassed
	res.ResultMessage = v.message()
	return res
}

// verdict accumulates the individual checks of one value.
type verdict struct {
	subType        string
	typePassed     bool
	subTypePassed  bool
	requiredPassed bool
	acceptedPassed bool
	rejectedPassed bool
	failures       []string
}

func (v *verdict) passed() bool {
	return v.typePassed && v.subTypePassed && v.requiredPassed &&
		v.acceptedPassed && v.rejectedPassed && len(v.failures) == 0
}

func (v *verdict) message() string {
	if len(v.failures) == 0 {
		return "passed"
	}
	return strings.Join(v.failures, "; ")
}

func (v *verdict) fail(format string, args ...any) {
	v.failures = append(v.failures, fmt.Sprintf(format, args...))
}

// checkValue runs the type, required, accepted and rejected
// checks in that order.
func (e *Engine) checkValue(
	pc *contract.ParameterContract,
	value any,
	env map[string]any,
) *verdict {
	res := e.types.Resolve(value, pc.Type, pc.SubType)
	v := &verdict{
		subType:        res.SubType,
		typePassed:     res.TypeAccepted,
		subTypePassed:  res.SubTypeAccepted,
		requiredPassed: true,
		acceptedPassed: true,
		rejectedPassed: true,
	}
	if !v.typePassed {
		v.fail("expected type %s, got %s", pc.Type, e.types.KindOf(value))
	} else if !v.subTypePassed {
		v.fail("expected %s of %s", pc.Type, res.SubType)
	}

	if len(pc.Required) > 0 {
		ok, why := e.checkRequired(pc, value)
		v.requiredPassed = ok
		if !ok {
			v.failures = append(v.failures, why)
		}
	}

	scope := e.scope(pc, value, env)
	hasAccepted := len(pc.AcceptedValues) > 0
	hasRejected := len(pc.RejectedValues) > 0
	var inAccepted, inRejected bool
	if hasAccepted {
		var notes []string
		inAccepted, notes = e.acceptedBy(pc.AcceptedValues, value, scope)
		v.failures = append(v.failures, notes...)
	}
	if hasRejected {
		var notes []string
		inRejected, notes = e.rejectedBy(pc.RejectedValues, value, scope)
		v.failures = append(v.failures, notes...)
	}

	switch {
	case pc.Conflict && inAccepted && inRejected:
		v.acceptedPassed, v.rejectedPassed = false, false
		v.failures = append(v.failures, (&ConfigError{
			Param: pc.Name,
			Value: describeMasked(value, pc.Mask),
		}).Error())
	case pc.Conflict:
		v.acceptedPassed = inAccepted
		if !inAccepted {
			v.fail("value %s is not in acceptedValues", describeMasked(value, pc.Mask))
		}
	default:
		if hasAccepted && !inAccepted {
			v.acceptedPassed = false
			v.fail("value %s is not in acceptedValues", describeMasked(value, pc.Mask))
		}
		if hasRejected && inRejected {
			v.rejectedPassed = false
			v.fail("value %s is in rejectedValues", describeMasked(value, pc.Mask))
		}
	}

	if !v.passed() {
		e.logger.Debug("contract check failed",
			logging.StringField("param", pc.Name),
			logging.StringField("contract", pc.Source),
			logging.StringField("reason", v.message()),
		)
	}
	return v
}

// scope is the variable set visible to templates inside value
// lists: the call's parameters plus the checked value under its
// own name and as "value".
func (e *Engine) scope(pc *contract.ParameterContract, value any, env map[string]any) map[string]any {
	scope := make(map[string]any, len(env)+2)
	for k, v := range env {
		scope[k] = v
	}
	if pc.Name != "" {
		scope[pc.Name] = value
	}
	scope["value"] = value
	return scope
}

// checkRequired evaluates OR-groups of AND-conditions.
func (e *Engine) checkRequired(pc *contract.ParameterContract, value any) (bool, string) {
	reasons := make([]string, 0, len(pc.Required))
	for gi, group := range pc.Required {
		why := e.checkGroup(pc.Name, group, value)
		if why == "" {
			return true, ""
		}
		reasons = append(reasons, fmt.Sprintf("group %d: %s", gi+1, why))
	}
	return false, "required not satisfied (" + strings.Join(reasons, "; ") + ")"
}

func (e *Engine) checkGroup(name string, group contract.RequirementGroup, value any) string {
	for _, cond := range group {
		actual, _, found := resolvePath(name, value, cond.Path)
		if !found {
			return cond.Path + " is missing"
		}
		if len(cond.Values) == 0 {
			continue
		}
		ok, notes := e.matchCondition(cond, actual)
		if !ok {
			msg := fmt.Sprintf("%s=%s does not match", cond.Path, describeMasked(actual, cond.Mask))
			if len(notes) > 0 {
				msg += " (" + strings.Join(notes, ", ") + ")"
			}
			return msg
		}
	}
	return ""
}

// resolvePath looks up path inside value. Paths may be written
// relative to the value or prefixed with the parameter name.
func resolvePath(name string, value any, path string) (any, string, bool) {
	if path == name {
		return value, "", true
	}
	if v, ok := record.Lookup(value, path); ok {
		return v, path, true
	}
	if name != "" && strings.HasPrefix(path, name+".") {
		rel := path[len(name)+1:]
		if v, ok := record.Lookup(value, rel); ok {
			return v, rel, true
		}
	}
	return nil, "", false
}

// present returns the sanitized value as it appears in reports
// with masks applied.
func (e *Engine) present(pc *contract.ParameterContract, value any) (any, bool) {
	if types.IsAbsent(value) {
		return nil, false
	}
	clean := record.Sanitize(value, e.depth)
	if pc.Mask {
		return record.MaskValue(clean), true
	}
	var paths []string
	for _, p := range pc.MaskedPaths() {
		if _, rel, ok := resolvePath(pc.Name, value, p); ok {
			paths = append(paths, rel)
		}
	}
	if len(paths) == 0 {
		return clean, false
	}
	return record.MaskPaths(clean, paths...), true
}

func (e *Engine) presentOutput(outputs []*contract.ParameterContract, value any) any {
	if len(outputs) > 0 {
		v, _ := e.present(outputs[0], value)
		return v
	}
	return record.Sanitize(value, e.depth)
}

func (e *Engine) passedArguments(params []*contract.ParameterContract, args []any) []record.TypedValue {
	out := make([]record.TypedValue, len(args))
	for i, arg := range args {
		tv := record.TypedValue{Type: e.types.KindOf(arg)}
		if i < len(params) {
			tv.Name = params[i].Name
			tv.Value, tv.Masked = e.present(params[i], arg)
		} else {
			tv.Value = record.Sanitize(arg, e.depth)
		}
		out[i] = tv
	}
	return out
}

func summarize(rec *record.FunctionTestRecord) string {
	var parts []string
	if !rec.ExecutionPassed {
		parts = append(parts, "execution failed: "+rec.Error)
	}
	if !rec.DoArgumentCountsMatch {
		parts = append(parts, fmt.Sprintf(
			"argument count %d does not match %d declared params",
			rec.ArgumentsCount, rec.ParamsCount,
		))
	}
	for _, p := range rec.TestedParams {
		if !p.Passed {
			parts = append(parts, fmt.Sprintf("param %s: %s", p.Name, p.ResultMessage))
		}
	}
	for _, o := range rec.TestedOutput {
		if !o.Passed {
			parts = append(parts, fmt.Sprintf("output %s: %s", o.Name, o.ResultMessage))
		}
	}
	if len(parts) == 0 {
		return "all checks passed"
	}
	return strings.Join(parts, "; ")
}
