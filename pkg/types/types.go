// Package types implements the small type system used by
// contracts: the canonical kind names, a predicate and a value
// converter per kind, and random sample generation.
package types

import "time"

// Primitive kind names.
const (
	String     = "string"
	Number     = "number"
	Boolean    = "boolean"
	BigInt     = "bigint"
	SymbolKind = "symbol"
	Undefined  = "undefined"
	Null       = "null"
)

// Container kind names.
const (
	Object    = "object"
	Array     = "array"
	Function  = "function"
	Date      = "date"
	EventKind = "event"
)

// Subtype markers.
const (
	// NotApplicable is the subtype of non-container kinds.
	NotApplicable = "N/A"

	// Structured is the default subtype of an object declared
	// without one: any string-keyed structured value.
	Structured = "structured"
)

// Category groups kinds into primitive and container lists.
type Category string

const (
	CategoryPrimitive Category = "primitive"
	CategoryContainer Category = "container"
	CategoryUnknown   Category = "unknown"
)

// Primitives lists the primitive kinds in canonical order.
var Primitives = []string{
	String, Number, Boolean, BigInt, SymbolKind, Undefined, Null,
}

// Containers lists the container/object kinds in canonical
// order.
var Containers = []string{
	Object, Array, Function, Date, EventKind,
}

// Symbol is a named unique token. It is the Go value accepted
// by the "symbol" kind.
type Symbol string

// Event is implemented by values accepted by the "event" kind.
type Event interface {
	EventName() string
}

// BasicEvent is a minimal Event implementation.
type BasicEvent struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// EventName returns the event name.
func (e BasicEvent) EventName() string { return e.Name }

// undefinedValue is the type of the Absent sentinel.
type undefinedValue struct{}

// Absent marks an argument that was not supplied at all, as
// opposed to one supplied as nil. The instrumentation layer
// fills missing positional arguments with it.
var Absent any = undefinedValue{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// Resolution is the outcome of resolving a declared type and
// subtype against an actual value.
type Resolution struct {
	Type            string `json:"type"`
	TypeAccepted    bool   `json:"typeAccepted"`
	SubType         string `json:"subType"`
	SubTypeAccepted bool   `json:"subTypeAccepted"`
}

// Passed reports whether both type and subtype were accepted.
func (r Resolution) Passed() bool {
	return r.TypeAccepted && r.SubTypeAccepted
}
