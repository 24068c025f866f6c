// Package autotest exercises a function without scenario files.
// Argument sets are built from the values each parameter
// contract accepts, topped up with random samples of the
// declared type until the configured sample count is reached.
package autotest

import (
	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/types"
)

// Source tells where a generated argument came from.
type Source string

const (
	SourceAccepted Source = "accepted"
	SourceSample   Source = "sample"
	// SourceNone marks an argument for a contract that failed
	// to parse. It is always nil.
	SourceNone Source = "none"
)

// Case is one generated argument set.
type Case struct {
	Index   int      `json:"index"`
	Args    []any    `json:"args"`
	Sources []Source `json:"sources"`
}

// Generator builds argument sets for compiled declarations.
type Generator struct {
	types *types.Registry
	count int
}

// NewGenerator returns a generator that draws samples from reg
// and produces at least count cases per declaration.
func NewGenerator(reg *types.Registry, count int) *Generator {
	if reg == nil {
		reg = types.Default
	}
	if count < 1 {
		count = 1
	}
	return &Generator{types: reg, count: count}
}

// Generate builds argument sets with the default type registry.
func Generate(c *contract.Compiled, count int) []Case {
	return NewGenerator(nil, count).Generate(c)
}

// Generate returns the argument sets for c. The number of cases
// is the sample count, or the longest accepted list when that
// is longer. Case i uses the i-th accepted value of every
// parameter that has one and a fresh sample otherwise.
func (g *Generator) Generate(c *contract.Compiled) []Case {
	n := g.count
	for _, p := range c.Params {
		if accepted := acceptedScalars(p); len(accepted) > n {
			n = len(accepted)
		}
	}

	cases := make([]Case, n)
	for i := range cases {
		cs := Case{
			Index:   i,
			Args:    make([]any, len(c.Params)),
			Sources: make([]Source, len(c.Params)),
		}
		for j, p := range c.Params {
			cs.Args[j], cs.Sources[j] = g.argument(p, i)
		}
		cases[i] = cs
	}
	return cases
}

func (g *Generator) argument(p *contract.ParameterContract, i int) (any, Source) {
	if p.Failed() {
		return nil, SourceNone
	}
	if accepted := acceptedScalars(p); i < len(accepted) {
		return accepted[i], SourceAccepted
	}
	return g.types.Sample(p.Type, p.SubType), SourceSample
}

// acceptedScalars returns the literal accepted values of p.
// Patterns, predicates and templates describe sets rather than
// values and are skipped.
func acceptedScalars(p *contract.ParameterContract) []any {
	var out []any
	for _, v := range p.AcceptedValues {
		if v.Kind == contract.KindScalar {
			out = append(out, v.Scalar)
		}
	}
	return out
}
