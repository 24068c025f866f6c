package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/record"
	"digital.vasic.contracts/pkg/types"
)

const describeLimit = 64

var matchOrder = []contract.ValueKind{
	contract.KindScalar,
	contract.KindPattern,
	contract.KindPredicate,
	contract.KindTemplate,
}

// matchList reports whether actual matches any element of
// list. Explicit values are tried first, then patterns, then
// predicates and templates.
func (e *Engine) matchList(list []contract.Value, actual any, scope map[string]any) (bool, []string) {
	var notes []string
	for _, kind := range matchOrder {
		for _, v := range list {
			if v.Kind != kind {
				continue
			}
			ok, note := e.match(v, actual, scope)
			if note != "" {
				notes = append(notes, note)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, notes
}

func (e *Engine) matchCondition(cond contract.Condition, actual any) (bool, []string) {
	return e.matchList(cond.Values, actual, map[string]any{"value": actual})
}

// acceptedBy reports whether value is accepted by list. An
// array whose elements are all accepted is accepted too.
func (e *Engine) acceptedBy(list []contract.Value, value any, scope map[string]any) (bool, []string) {
	ok, notes := e.matchList(list, value, scope)
	if ok {
		return true, nil
	}
	elems, isList := elements(value)
	if !isList || len(elems) == 0 || hasContainers(list) {
		return false, notes
	}
	for _, el := range elems {
		ok, elNotes := e.matchList(list, el, scope)
		if !ok {
			return false, append(notes, elNotes...)
		}
	}
	return true, nil
}

// rejectedBy reports whether value is rejected by list. An
// array is rejected when any element is.
func (e *Engine) rejectedBy(list []contract.Value, value any, scope map[string]any) (bool, []string) {
	ok, notes := e.matchList(list, value, scope)
	if ok {
		return true, nil
	}
	elems, isList := elements(value)
	if !isList || hasContainers(list) {
		return false, notes
	}
	for _, el := range elems {
		ok, elNotes := e.matchList(list, el, scope)
		notes = append(notes, elNotes...)
		if ok {
			return true, nil
		}
	}
	return false, notes
}

// match evaluates one list element. The returned note explains
// an element that could not be evaluated.
func (e *Engine) match(v contract.Value, actual any, scope map[string]any) (bool, string) {
	switch v.Kind {
	case contract.KindScalar:
		return equal(actual, v.Scalar), ""

	case contract.KindPattern:
		re, err := e.pattern(v)
		if err != nil {
			return false, err.Error()
		}
		s, ok := patternSubject(actual)
		if !ok {
			return false, ""
		}
		return re.MatchString(s), ""

	case contract.KindPredicate:
		name := v.PredicateName()
		p, ok := e.predicates.Lookup(name)
		if !ok {
			e.logger.Warn("unresolved predicate", logging.StringField("predicate", name))
			return false, "unresolved predicate " + name
		}
		return callPredicate(name, p, actual)

	case contract.KindTemplate:
		out, err := e.expr.Eval(v.Expr, scope)
		if err != nil {
			return false, err.Error()
		}
		if b, ok := out.(bool); ok {
			return b, ""
		}
		return equal(actual, out), ""
	}
	return false, fmt.Sprintf("unknown value kind %q", v.Kind)
}

// matchExpected compares an output with every expectation and
// passes when any of them matches. It returns the evaluated
// expectations.
func (e *Engine) matchExpected(
	list []contract.Value,
	value any,
	params map[string]any,
) (bool, []any, []string) {
	var (
		matched  bool
		expected []any
		notes    []string
	)
	for _, ev := range list {
		switch ev.Kind {
		case contract.KindScalar:
			expected = append(expected, ev.Scalar)
			matched = matched || equal(value, ev.Scalar)
		case contract.KindTemplate:
			out, err := e.expr.Eval(ev.Expr, params)
			if err != nil {
				notes = append(notes, err.Error())
				e.logger.Warn("expected output template failed",
					logging.StringField("expr", ev.Expr),
					logging.ErrorField(err),
				)
				continue
			}
			expected = append(expected, out)
			matched = matched || equal(value, out)
		default:
			expected = append(expected, ev.Raw)
			ok, note := e.match(ev, value, params)
			if note != "" {
				notes = append(notes, note)
			}
			matched = matched || ok
		}
	}
	if matched {
		return true, expected, nil
	}
	return false, expected, notes
}

func (e *Engine) pattern(v contract.Value) (*regexp.Regexp, error) {
	key := "/" + v.Pattern + "/" + v.Flags

	e.mu.RLock()
	re, ok := e.patterns[key]
	e.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := contract.CompilePattern(v.Pattern, v.Flags)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", key, err)
	}
	e.mu.Lock()
	e.patterns[key] = re
	e.mu.Unlock()
	return re, nil
}

func callPredicate(name string, p Predicate, value any) (ok bool, note string) {
	defer func() {
		if r := recover(); r != nil {
			ok, note = false, fmt.Sprintf("predicate %s panicked: %v", name, r)
		}
	}()
	ok, _ = p(value)
	return ok, ""
}

// equal compares two values structurally after converting both
// to their JSON-like form.
func equal(a, b any) bool {
	return cmp.Equal(types.Normalize(a), types.Normalize(b), cmpopts.EquateEmpty())
}

func patternSubject(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case types.Symbol:
		return string(t), true
	case bool:
		return fmt.Sprint(t), true
	}
	if f, ok := toFloat64(v); ok {
		return fmt.Sprint(f), true
	}
	return "", false
}

func elements(v any) ([]any, bool) {
	if types.IsAbsent(v) || v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func hasContainers(list []contract.Value) bool {
	for _, v := range list {
		if v.Kind != contract.KindScalar {
			continue
		}
		switch v.Scalar.(type) {
		case []any, map[string]any:
			return true
		}
	}
	return false
}

func describe(v any) string {
	if types.IsAbsent(v) {
		return "undefined"
	}
	s := fmt.Sprintf("%v", types.Normalize(v))
	if str, ok := v.(string); ok {
		s = fmt.Sprintf("%q", str)
	}
	if len(s) > describeLimit {
		cut := describeLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

func describeMasked(v any, masked bool) string {
	if masked {
		return record.Masked
	}
	return describe(v)
}

func expectedMismatch(value any, expected []any, masked bool) string {
	if len(expected) == 1 {
		return fmt.Sprintf(
			"output %s does not equal expected %s",
			describeMasked(value, masked), describeMasked(expected[0], masked),
		)
	}
	return fmt.Sprintf(
		"output %s matches none of %d expectations",
		describeMasked(value, masked), len(expected),
	)
}
