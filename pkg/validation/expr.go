package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	celtypes "github.com/google/cel-go/common/types"
	"google.golang.org/protobuf/types/known/structpb"

	"digital.vasic.contracts/pkg/types"
)

var (
	celIdent    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	celReserved = map[string]bool{
		"as": true, "break": true, "const": true, "continue": true,
		"else": true, "false": true, "for": true, "function": true,
		"if": true, "import": true, "in": true, "let": true,
		"loop": true, "package": true, "namespace": true, "null": true,
		"return": true, "true": true, "var": true, "void": true,
		"while": true,
	}
	structValueType = reflect.TypeOf(&structpb.Value{})

	arithmetic = map[string]bool{
		operators.Add:      true,
		operators.Subtract: true,
		operators.Multiply: true,
		operators.Divide:   true,
	}
)

// ExprEvaluator evaluates template expressions in an isolated
// CEL environment. Every bound name is declared as a dynamic
// variable; nothing else is reachable from the expression.
// Compiled programs are cached per expression and variable set.
//
// Numbers are bound as doubles, and integer literals taking part
// in arithmetic are compiled as doubles too, so "a + 2" and
// "3 / 2" follow the single number kind of contracts.
type ExprEvaluator struct {
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewExprEvaluator creates an evaluator with an empty cache.
func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{programs: make(map[string]cel.Program)}
}

// Eval evaluates expr with vars bound by name and returns the
// result in JSON-like form (float64, string, bool, nil,
// []any or map[string]any). Names that are not valid CEL
// identifiers are not bound.
func (x *ExprEvaluator) Eval(expr string, vars map[string]any) (any, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		if celIdent.MatchString(name) && !celReserved[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	prg, err := x.program(expr, names)
	if err != nil {
		return nil, err
	}

	activation := make(map[string]any, len(names))
	for _, name := range names {
		activation[name] = types.Normalize(vars[name])
	}

	out, _, err := prg.Eval(activation)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", expr, err)
	}

	native, err := out.ConvertToNative(structValueType)
	if err != nil {
		return types.Normalize(out.Value()), nil
	}
	return native.(*structpb.Value).AsInterface(), nil
}

// EvalBool evaluates expr and requires a boolean result.
func (x *ExprEvaluator) EvalBool(expr string, vars map[string]any) (bool, error) {
	v, err := x.Eval(expr, vars)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not return a boolean", expr)
	}
	return b, nil
}

func (x *ExprEvaluator) program(expr string, names []string) (cel.Program, error) {
	key := expr + "\x00" + strings.Join(names, ",")

	x.mu.RLock()
	prg, hit := x.programs[key]
	x.mu.RUnlock()
	if hit {
		return prg, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if prg, hit = x.programs[key]; hit {
		return prg, nil
	}

	opts := make([]cel.EnvOption, 0, len(names))
	for _, name := range names {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create expression environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", expr, issues.Err())
	}
	if widenLiterals(ast.NativeRep()) {
		ast, issues = env.Check(ast)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("failed to compile %q: %w", expr, issues.Err())
		}
	}
	prg, err = env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program for %q: %w", expr, err)
	}
	x.programs[key] = prg
	return prg, nil
}

// widenLiterals rewrites the integer literals of arithmetic
// calls in a checked expression into doubles. A literal is kept
// when its other operand is typed as an integer, as in
// "size(xs) - 1". It reports whether anything changed.
func widenLiterals(checked *celast.AST) bool {
	fac := celast.NewExprFactory()
	changed := false
	celast.PostOrderVisit(checked.Expr(), celast.NewExprVisitor(func(e celast.Expr) {
		if e.Kind() != celast.CallKind {
			return
		}
		call := e.AsCall()
		args := call.Args()
		if !arithmetic[call.FunctionName()] || len(args) != 2 {
			return
		}
		var widen [2]bool
		for i, arg := range args {
			other := args[1-i]
			_, otherLiteral := intLiteral(other)
			otherInt := isIntType(checked.GetType(other.ID())) && !otherLiteral
			_, literal := intLiteral(arg)
			widen[i] = literal && !otherInt
		}
		for i, arg := range args {
			if !widen[i] {
				continue
			}
			n, _ := intLiteral(arg)
			arg.SetKindCase(fac.NewLiteral(arg.ID(), celtypes.Double(n)))
			changed = true
		}
	}))
	return changed
}

func intLiteral(e celast.Expr) (float64, bool) {
	if e.Kind() != celast.LiteralKind {
		return 0, false
	}
	switch v := e.AsLiteral().(type) {
	case celtypes.Int:
		return float64(v), true
	case celtypes.Uint:
		return float64(v), true
	}
	return 0, false
}

func isIntType(t *celtypes.Type) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == celtypes.IntKind || k == celtypes.UintKind
}
