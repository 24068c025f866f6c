package validation

import (
	"fmt"
	"net/mail"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"digital.vasic.contracts/pkg/types"
)

// Predicate decides whether a value satisfies a named check. It
// returns whether the check passed and a human-readable
// explanation.
type Predicate func(value any) (bool, string)

// BuiltinModule is the module name of the predicates every
// PredicateRegistry starts with.
const BuiltinModule = "builtin"

// PredicateRegistry resolves "(module/path.exportName)"
// references to Go functions. It is safe for concurrent use.
type PredicateRegistry struct {
	mu         sync.RWMutex
	predicates map[string]Predicate
}

// NewPredicateRegistry creates a registry with the builtin
// predicates registered under BuiltinModule.
func NewPredicateRegistry() *PredicateRegistry {
	r := &PredicateRegistry{
		predicates: make(map[string]Predicate),
	}
	r.registerDefaults()
	return r
}

func (r *PredicateRegistry) registerDefaults() {
	builtin := func(name string, p Predicate) {
		r.predicates[BuiltinModule+"."+name] = p
	}
	builtin("notEmpty", predicateNotEmpty)
	builtin("notMock", predicateNotMock)
	builtin("noDuplicates", predicateNoDuplicates)
	builtin("isEmail", predicateIsEmail)
	builtin("isUUID", predicateIsUUID)
	builtin("positive", predicatePositive)
	builtin("nonNegative", predicateNonNegative)
	builtin("integer", predicateInteger)
}

// Register adds a predicate under name, written as it appears
// inside the parentheses: "module/path.exportName". Returns an
// error if the name is taken.
func (r *PredicateRegistry) Register(name string, p Predicate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p == nil {
		return fmt.Errorf("predicate %s is nil", name)
	}
	if _, exists := r.predicates[name]; exists {
		return fmt.Errorf("predicate already registered: %s", name)
	}
	r.predicates[name] = p
	return nil
}

// RegisterFunc adds a plain boolean function as a predicate.
func (r *PredicateRegistry) RegisterFunc(name string, fn func(any) bool) error {
	if fn == nil {
		return r.Register(name, nil)
	}
	return r.Register(name, func(v any) (bool, string) {
		if fn(v) {
			return true, name + " holds"
		}
		return false, name + " does not hold"
	})
}

// Lookup returns the predicate registered under name.
func (r *PredicateRegistry) Lookup(name string) (Predicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.predicates[name]
	return p, ok
}

// Names returns the registered predicate names, sorted.
func (r *PredicateRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.predicates))
	for n := range r.predicates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func predicateNotEmpty(value any) (bool, string) {
	if value == nil || types.IsAbsent(value) {
		return false, "value is nil"
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		if strings.TrimSpace(rv.String()) == "" {
			return false, "string is empty"
		}
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return false, "array is empty"
		}
	case reflect.Map:
		if rv.Len() == 0 {
			return false, "map is empty"
		}
	}
	return true, "value is not empty"
}

var mockPatterns = []string{
	"lorem ipsum",
	"placeholder",
	"mock",
	"not implemented",
	"dummy",
	"changeme",
}

func predicateNotMock(value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return true, "value is not a string"
	}
	lower := strings.ToLower(str)
	for _, pattern := range mockPatterns {
		if strings.Contains(lower, pattern) {
			return false, fmt.Sprintf(
				"value looks like a placeholder (contains '%s')", pattern,
			)
		}
	}
	return true, "value is not a placeholder"
}

func predicateNoDuplicates(value any) (bool, string) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, "value is not an array"
	}
	seen := make(map[string]int, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		key := fmt.Sprintf("%v", types.Normalize(rv.Index(i).Interface()))
		if j, dup := seen[key]; dup {
			return false, fmt.Sprintf("elements %d and %d are equal", j, i)
		}
		seen[key] = i
	}
	return true, "no duplicates"
}

func predicateIsEmail(value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}
	addr, err := mail.ParseAddress(str)
	if err != nil || addr.Address != str {
		return false, fmt.Sprintf("%q is not an email address", str)
	}
	return true, "valid email address"
}

func predicateIsUUID(value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}
	if _, err := uuid.Parse(str); err != nil {
		return false, fmt.Sprintf("%q is not a UUID", str)
	}
	return true, "valid UUID"
}

func predicatePositive(value any) (bool, string) {
	f, ok := toFloat64(value)
	if !ok {
		return false, "value is not a number"
	}
	if f > 0 {
		return true, fmt.Sprintf("%v > 0", f)
	}
	return false, fmt.Sprintf("%v <= 0", f)
}

func predicateNonNegative(value any) (bool, string) {
	f, ok := toFloat64(value)
	if !ok {
		return false, "value is not a number"
	}
	if f >= 0 {
		return true, fmt.Sprintf("%v >= 0", f)
	}
	return false, fmt.Sprintf("%v < 0", f)
}

func predicateInteger(value any) (bool, string) {
	f, ok := toFloat64(value)
	if !ok {
		return false, "value is not a number"
	}
	if f == float64(int64(f)) {
		return true, "value is an integer"
	}
	return false, fmt.Sprintf("%v is not an integer", f)
}

// toFloat64 converts any Go number to float64.
func toFloat64(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
