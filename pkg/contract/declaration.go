package contract

import "errors"

// Declaration is the static contract declaration of one
// function: its identity plus one DSL string per parameter and
// per output.
type Declaration struct {
	Class     string   `json:"class" yaml:"class"`
	Method    string   `json:"method" yaml:"method"`
	Signature string   `json:"signature,omitempty" yaml:"signature,omitempty"`
	Static    bool     `json:"static,omitempty" yaml:"static,omitempty"`
	Params    []string `json:"params,omitempty" yaml:"params,omitempty"`
	Output    []string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Key identifies the declaration as "Class.method".
func (d Declaration) Key() string {
	if d.Class == "" {
		return d.Method
	}
	return d.Class + "." + d.Method
}

// Compiled holds the parsed contracts of a declaration.
// Entries that failed to parse are kept as PARSE_ERROR
// contracts and their errors are collected in Errors.
type Compiled struct {
	Decl   Declaration
	Params []*ParameterContract
	Output []*ParameterContract
	Errors []error
}

// Compile parses a declaration with the default type registry.
func Compile(d Declaration) *Compiled {
	return defaultParser.Compile(d)
}

// Compile parses every param and output DSL string of d.
func (p *Parser) Compile(d Declaration) *Compiled {
	c := &Compiled{Decl: d}
	var errs []error
	c.Params, errs = p.ParseAll(d.Params)
	c.Errors = append(c.Errors, nonNil(errs)...)
	c.Output, errs = p.ParseAll(d.Output)
	c.Errors = append(c.Errors, nonNil(errs)...)
	return c
}

// Err joins the parse errors, or returns nil.
func (c *Compiled) Err() error {
	return errors.Join(c.Errors...)
}

// ParamNames returns the declared parameter names in order.
func (c *Compiled) ParamNames() []string {
	names := make([]string, len(c.Params))
	for i, pc := range c.Params {
		names[i] = pc.Name
	}
	return names
}

func nonNil(errs []error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
