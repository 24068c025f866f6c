// Package contract defines parameter contracts and parses the
// compact contract DSL:
//
//	age=><number> acceptedValues=:[18|21|65]
//	user=><object> required=:[{"user.role":"admin"}]
//	password*=><string> rejectedValues=:[/^1234/]
//	sum=><number> expectedOut=:["${a + b}"]
//
// A contract describes one declared input or output of a
// function: its type, whether it is optional or masked in
// reports, structural requirements and allowed values.
package contract

// ParseErrorType is the Type of a contract whose DSL could not
// be parsed. Such contracts carry the failure in Reason.
const ParseErrorType = "PARSE_ERROR"

// ValueKind classifies an element of a bracket list or a
// requirement condition.
type ValueKind string

const (
	// KindScalar is a plain literal compared by value.
	KindScalar ValueKind = "scalar"
	// KindPattern is a /regex/flags literal.
	KindPattern ValueKind = "pattern"
	// KindPredicate references a named predicate function,
	// written (module/path.exportName).
	KindPredicate ValueKind = "predicate"
	// KindTemplate is an expression written "${...}".
	KindTemplate ValueKind = "template"
)

// Value is one classified element of a value list.
type Value struct {
	Kind ValueKind `json:"kind"`
	Raw  string    `json:"raw"`

	// Scalar holds the converted literal of a KindScalar value.
	Scalar any `json:"scalar,omitempty"`

	// Pattern and Flags hold the source of a KindPattern value.
	Pattern string `json:"pattern,omitempty"`
	Flags   string `json:"flags,omitempty"`

	// Module and Export name a KindPredicate function.
	Module string `json:"module,omitempty"`
	Export string `json:"export,omitempty"`

	// Expr is the expression of a KindTemplate value.
	Expr string `json:"expr,omitempty"`
}

// PredicateName returns the lookup key of a predicate value,
// "module/path.exportName".
func (v Value) PredicateName() string {
	if v.Module == "" {
		return v.Export
	}
	return v.Module + "." + v.Export
}

// Condition is one AND-condition of a requirement group: the
// value found at Path inside the actual argument must match one
// of Values. A condition without values only requires Path to
// be present.
type Condition struct {
	Path   string  `json:"path"`
	Values []Value `json:"values"`

	// Mask marks the sub-value at Path for redaction in
	// reports.
	Mask bool `json:"mask,omitempty"`
}

// RequirementGroup is a list of conditions that must all hold.
type RequirementGroup []Condition

// ParameterContract is the parsed form of one contract DSL
// string.
type ParameterContract struct {
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
	Mask     bool   `json:"mask"`

	Type    string   `json:"type"`
	SubType string   `json:"subType"`
	Flags   []string `json:"flags,omitempty"`

	// Required lists OR-groups; the requirement holds when any
	// group holds. Empty means no structural requirement.
	Required []RequirementGroup `json:"required,omitempty"`

	AcceptedValues []Value `json:"acceptedValues,omitempty"`
	RejectedValues []Value `json:"rejectedValues,omitempty"`
	ExpectedOut    []Value `json:"expectedOut,omitempty"`

	// Conflict is set when both accepted and rejected values
	// were declared. Accepted values take precedence.
	Conflict bool `json:"conflict,omitempty"`

	// Reason explains a PARSE_ERROR contract.
	Reason string `json:"reason,omitempty"`

	// Source is the DSL text the contract was parsed from.
	Source string `json:"source"`
}

// Failed reports whether the contract could not be parsed.
func (c *ParameterContract) Failed() bool {
	return c.Type == ParseErrorType
}

// HasFlag reports whether flag was declared inside <...>.
func (c *ParameterContract) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// MaskedPaths returns the dot-paths of requirement conditions
// marked for redaction.
func (c *ParameterContract) MaskedPaths() []string {
	var paths []string
	seen := map[string]bool{}
	for _, g := range c.Required {
		for _, cond := range g {
			if cond.Mask && !seen[cond.Path] {
				seen[cond.Path] = true
				paths = append(paths, cond.Path)
			}
		}
	}
	return paths
}
