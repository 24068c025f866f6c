package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Predicate reports whether a runtime value is of a kind.
type Predicate func(value any) bool

// Converter turns a raw DSL literal into a typed value.
type Converter func(raw string) (any, error)

// Kind describes one entry of the type registry.
type Kind struct {
	Name     string
	Category Category
	Accepts  Predicate
	Convert  Converter
}

// Registry holds the known kinds. It is safe for concurrent
// use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry creates a Registry with all primitive and
// container kinds registered.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]Kind)}
	r.registerDefaults()
	return r
}

// Default is the package-level registry instance.
var Default = NewRegistry()

func (r *Registry) registerDefaults() {
	prim := func(name string, p Predicate, c Converter) {
		r.kinds[name] = Kind{name, CategoryPrimitive, p, c}
	}
	cont := func(name string, p Predicate, c Converter) {
		r.kinds[name] = Kind{name, CategoryContainer, p, c}
	}

	prim(String, isString, convertString)
	prim(Number, isNumber, convertNumber)
	prim(Boolean, isBoolean, convertBoolean)
	prim(BigInt, isBigInt, convertBigInt)
	prim(SymbolKind, isSymbol, convertSymbol)
	prim(Undefined, IsAbsent, convertUndefined)
	prim(Null, isNull, convertNull)

	cont(Object, isObject, convertJSON)
	cont(Array, isArray, convertJSON)
	cont(Function, isFunction, notConvertible(Function))
	cont(Date, isDate, convertDate)
	cont(EventKind, isEvent, notConvertible(EventKind))
}

// Register adds a custom kind. Returns an error if the name is
// already registered.
func (r *Registry) Register(k Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[k.Name]; exists {
		return fmt.Errorf("type already registered: %s", k.Name)
	}
	if k.Accepts == nil {
		return fmt.Errorf("type %s has no predicate", k.Name)
	}
	if k.Convert == nil {
		k.Convert = notConvertible(k.Name)
	}
	r.kinds[k.Name] = k
	return nil
}

// Known reports whether token names a registered kind.
func (r *Registry) Known(token string) bool {
	_, ok := r.lookup(token)
	return ok
}

// Category returns the category of a kind, or CategoryUnknown.
func (r *Registry) Category(token string) Category {
	k, ok := r.lookup(token)
	if !ok {
		return CategoryUnknown
	}
	return k.Category
}

// IsContainer reports whether token is a container kind.
func (r *Registry) IsContainer(token string) bool {
	return r.Category(token) == CategoryContainer
}

// Accepts reports whether value satisfies the predicate of the
// named kind. Unknown kinds accept nothing.
func (r *Registry) Accepts(token string, value any) bool {
	k, ok := r.lookup(token)
	if !ok {
		return false
	}
	return k.Accepts(value)
}

// KindOf returns the first kind, in canonical order, whose
// predicate accepts value. It is used to describe passed
// arguments in records.
func (r *Registry) KindOf(value any) string {
	for _, group := range [][]string{Primitives, Containers} {
		for _, name := range group {
			if r.Accepts(name, value) {
				return name
			}
		}
	}
	return "unknown"
}

// Convert turns a raw literal into a value of the named kind.
// An empty or unknown kind decodes the literal as JSON when
// possible and otherwise keeps it as a string.
func (r *Registry) Convert(token, raw string) (any, error) {
	k, ok := r.lookup(token)
	if !ok {
		return ConvertLiteral(raw), nil
	}
	return k.Convert(strings.TrimSpace(raw))
}

// Resolve checks value against a declared type and subtype.
//
// An empty type token accepts any value. A container declared
// without a subtype gets Structured (object) or NotApplicable;
// "array T" requires every element to satisfy T and "object T"
// requires every member value to satisfy T. Non-container kinds
// always resolve to the NotApplicable subtype.
func (r *Registry) Resolve(value any, typeToken, subToken string) Resolution {
	res := Resolution{
		Type:            typeToken,
		SubType:         NotApplicable,
		SubTypeAccepted: true,
	}

	if typeToken == "" {
		res.TypeAccepted = true
		return res
	}

	k, ok := r.lookup(typeToken)
	if !ok {
		res.SubTypeAccepted = false
		return res
	}
	res.TypeAccepted = k.Accepts(value)

	switch typeToken {
	case Object:
		res.SubType = Structured
		if subToken != "" && subToken != NotApplicable {
			res.SubType = subToken
		}
	case Array:
		if subToken != "" && subToken != NotApplicable {
			res.SubType = subToken
		}
	default:
		return res
	}

	if !res.TypeAccepted {
		res.SubTypeAccepted = false
		return res
	}

	switch {
	case res.SubType == NotApplicable || res.SubType == Structured:
		res.SubTypeAccepted = true
	case !r.Known(res.SubType):
		res.SubTypeAccepted = false
	default:
		res.SubTypeAccepted = r.allMembers(value, res.SubType)
	}
	return res
}

// allMembers reports whether every element (array) or member
// value (object) of container satisfies the named kind.
func (r *Registry) allMembers(container any, kind string) bool {
	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !r.Accepts(kind, rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if !r.Accepts(kind, iter.Value().Interface()) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			if !r.Accepts(kind, rv.Field(i).Interface()) {
				return false
			}
		}
		return true
	}
	return false
}

func (r *Registry) lookup(token string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[strings.ToLower(strings.TrimSpace(token))]
	return k, ok
}

// Predicates.

func isString(v any) bool {
	switch v.(type) {
	case Symbol, json.Number:
		return false
	}
	return v != nil && reflect.TypeOf(v).Kind() == reflect.String
}

func isNumber(v any) bool {
	if _, ok := v.(json.Number); ok {
		return true
	}
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Float32,
		reflect.Float64:
		return true
	}
	return false
}

func isBoolean(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Bool
}

func isBigInt(v any) bool {
	switch b := v.(type) {
	case *big.Int:
		return b != nil
	case big.Int:
		return true
	}
	return false
}

func isSymbol(v any) bool {
	_, ok := v.(Symbol)
	return ok
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice,
		reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isObject(v any) bool {
	if v == nil || IsAbsent(v) || isDate(v) || isBigInt(v) {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return !rv.IsNil() && rv.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return true
	}
	return false
}

func isArray(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return !rv.IsNil()
	case reflect.Array:
		return true
	}
	return false
}

func isFunction(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

func isDate(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case *time.Time:
		return t != nil
	}
	return false
}

func isEvent(v any) bool {
	e, ok := v.(Event)
	return ok && e != nil
}

// Converters.

func convertString(raw string) (any, error) {
	if len(raw) >= 2 {
		if raw[0] == '"' && raw[len(raw)-1] == '"' {
			s, err := strconv.Unquote(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid string literal %s: %w", raw, err)
			}
			return s, nil
		}
		if raw[0] == '\'' && raw[len(raw)-1] == '\'' {
			return raw[1 : len(raw)-1], nil
		}
	}
	return raw, nil
}

func convertNumber(raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal %q", raw)
	}
	return f, nil
}

func convertBoolean(raw string) (any, error) {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean literal %q", raw)
	}
	return b, nil
}

func convertBigInt(raw string) (any, error) {
	n, ok := new(big.Int).SetString(strings.TrimSuffix(raw, "n"), 10)
	if !ok {
		return nil, fmt.Errorf("invalid bigint literal %q", raw)
	}
	return n, nil
}

func convertSymbol(raw string) (any, error) {
	s, err := convertString(raw)
	if err != nil {
		return nil, err
	}
	return Symbol(s.(string)), nil
}

func convertUndefined(raw string) (any, error) {
	if raw != Undefined {
		return nil, fmt.Errorf("invalid undefined literal %q", raw)
	}
	return Absent, nil
}

func convertNull(raw string) (any, error) {
	if raw != Null {
		return nil, fmt.Errorf("invalid null literal %q", raw)
	}
	return nil, nil
}

func convertJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON literal %q: %w", raw, err)
	}
	return v, nil
}

func convertDate(raw string) (any, error) {
	s, err := convertString(raw)
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, s.(string))
	if err != nil {
		return nil, fmt.Errorf("invalid date literal %q: %w", raw, err)
	}
	return t, nil
}

func notConvertible(kind string) Converter {
	return func(raw string) (any, error) {
		return nil, fmt.Errorf("%s values cannot be written as literals: %q", kind, raw)
	}
}

// ConvertLiteral decodes an untyped literal: valid JSON is
// decoded, anything else is kept as the trimmed string.
func ConvertLiteral(raw string) any {
	raw = strings.TrimSpace(raw)
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	if raw == Undefined {
		return Absent
	}
	return raw
}
