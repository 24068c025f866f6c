package contract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"digital.vasic.contracts/pkg/types"
)

// Clause names.
const (
	ClauseRequired = "required"
	ClauseAccepted = "acceptedValues"
	ClauseRejected = "rejectedValues"
	ClauseExpected = "expectedOut"
)

const (
	arrow     = "=>"
	clauseSep = "=:"
	maskMark  = "*="
)

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

// Parser turns contract DSL strings into ParameterContracts,
// resolving type tokens against a type registry.
type Parser struct {
	types *types.Registry
}

// NewParser creates a Parser backed by reg. A nil registry
// uses types.Default.
func NewParser(reg *types.Registry) *Parser {
	if reg == nil {
		reg = types.Default
	}
	return &Parser{types: reg}
}

var defaultParser = NewParser(nil)

// Parse parses dsl with the default type registry.
func Parse(dsl string) (*ParameterContract, error) {
	return defaultParser.Parse(dsl)
}

// ParseAll parses every entry with the default type registry.
func ParseAll(dsls []string) ([]*ParameterContract, []error) {
	return defaultParser.ParseAll(dsls)
}

// Parse parses a single contract. It never panics: on failure
// it returns a contract of type ParseErrorType carrying the
// reason, together with a *ParseError.
func (p *Parser) Parse(dsl string) (*ParameterContract, error) {
	c, err := p.parse(strings.TrimSpace(dsl))
	if err != nil {
		return &ParameterContract{
			Name:    c.Name,
			Type:    ParseErrorType,
			SubType: types.NotApplicable,
			Reason:  err.Reason,
			Source:  dsl,
		}, err
	}
	c.Source = dsl
	return c, nil
}

// ParseAll parses every entry and keeps going past failures.
// The returned slices are parallel to dsls; errs[i] is nil for
// entries that parsed.
func (p *Parser) ParseAll(dsls []string) ([]*ParameterContract, []error) {
	out := make([]*ParameterContract, len(dsls))
	errs := make([]error, len(dsls))
	for i, dsl := range dsls {
		c, err := p.Parse(dsl)
		out[i] = c
		if err != nil {
			errs[i] = err
		}
	}
	return out, errs
}

func (p *Parser) parse(in string) (*ParameterContract, *ParseError) {
	c := &ParameterContract{SubType: types.NotApplicable}

	idx := strings.Index(in, arrow)
	if idx < 0 {
		return c, structural(in, "", "missing %q", arrow)
	}
	if err := parseName(c, in, strings.TrimSpace(in[:idx])); err != nil {
		return c, err
	}

	rest := strings.TrimSpace(in[idx+len(arrow):])
	if rest == "" {
		return c, nil
	}
	if rest[0] != '<' {
		return c, structural(in, "", "expected '<' after %q", arrow)
	}
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return c, structural(in, "", "unterminated type detail")
	}
	if err := p.parseDetail(c, in, rest[1:end]); err != nil {
		return c, err
	}
	if err := p.parseClauses(c, in, rest[end+1:]); err != nil {
		return c, err
	}
	if len(c.AcceptedValues) > 0 && len(c.RejectedValues) > 0 {
		c.Conflict = true
	}
	return c, nil
}

func parseName(c *ParameterContract, in, name string) *ParseError {
suffixes:
	for len(name) > 0 {
		switch name[len(name)-1] {
		case '?':
			c.Optional = true
		case '*':
			c.Mask = true
		default:
			break suffixes
		}
		name = name[:len(name)-1]
	}
	if !identPattern.MatchString(name) {
		return structural(in, "", "invalid parameter name %q", name)
	}
	c.Name = name
	return nil
}

// parseDetail reads "type [subtype] [flags...]".
func (p *Parser) parseDetail(c *ParameterContract, in, detail string) *ParseError {
	fields := strings.Fields(detail)
	if len(fields) == 0 {
		return structural(in, "", "empty type detail")
	}

	c.Type = strings.ToLower(fields[0])
	if !p.types.Known(c.Type) {
		return semantic(in, "", "unknown type %q", fields[0])
	}
	if c.Type == types.Object {
		c.SubType = types.Structured
	}

	fields = fields[1:]
	if len(fields) > 0 && p.types.IsContainer(c.Type) {
		sub := strings.ToLower(fields[0])
		switch {
		case p.types.Known(sub) || sub == types.Structured:
			c.SubType = sub
			fields = fields[1:]
		case c.Type == types.Array || c.Type == types.Object:
			return semantic(in, "", "unknown subtype %q", fields[0])
		}
	}
	if len(fields) > 0 {
		c.Flags = fields
	}
	return nil
}

func (p *Parser) parseClauses(c *ParameterContract, in, rest string) *ParseError {
	seen := map[string]bool{}
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			return nil
		}

		sep := strings.Index(rest, clauseSep)
		if sep < 0 {
			return structural(in, "", "expected clause, found %q", rest)
		}
		name := rest[:sep]
		if seen[name] {
			return structural(in, name, "duplicate clause")
		}
		seen[name] = true
		payload := rest[sep+len(clauseSep):]

		var (
			n   int
			err *ParseError
		)
		switch name {
		case ClauseRequired:
			c.Required, n, err = p.parseRequired(in, payload)
		case ClauseAccepted:
			c.AcceptedValues, n, err = p.parseList(c, in, name, payload)
		case ClauseRejected:
			c.RejectedValues, n, err = p.parseList(c, in, name, payload)
		case ClauseExpected:
			c.ExpectedOut, n, err = p.parseList(c, in, name, payload)
		default:
			return structural(in, name, "unknown clause")
		}
		if err != nil {
			return err
		}
		rest = payload[n:]
	}
}

func (p *Parser) parseList(
	c *ParameterContract,
	in, clause, payload string,
) ([]Value, int, *ParseError) {
	elems, n, ok := scanList(payload)
	if !ok {
		return nil, 0, structural(in, clause, "malformed bracket list")
	}

	var out []Value
	for _, raw := range elems {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		v, err := classify(raw)
		if err != nil {
			return nil, 0, semantic(in, clause, "%s", err)
		}
		if v.Kind == KindScalar {
			v.Scalar, err = p.convert(c, raw)
			if err != nil {
				return nil, 0, semantic(in, clause, "%s", err)
			}
		}
		out = append(out, v)
	}
	return out, n, nil
}

// convert turns a scalar literal into a value of the contract's
// type. Containers fall back to the subtype converter and then
// to an untyped literal.
func (p *Parser) convert(c *ParameterContract, raw string) (any, error) {
	if c.Type == "" {
		return types.ConvertLiteral(raw), nil
	}
	v, err := p.types.Convert(c.Type, raw)
	if err == nil || !p.types.IsContainer(c.Type) {
		return v, err
	}
	if p.types.Known(c.SubType) {
		if v, err := p.types.Convert(c.SubType, raw); err == nil {
			return v, nil
		}
	}
	return types.ConvertLiteral(raw), nil
}

func (p *Parser) parseRequired(in, payload string) ([]RequirementGroup, int, *ParseError) {
	dec := json.NewDecoder(strings.NewReader(payload))
	var raw []map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, structural(
			in, ClauseRequired, "required must be a JSON array of objects: %v", err,
		)
	}

	groups := make([]RequirementGroup, 0, len(raw))
	for _, obj := range raw {
		paths := make([]string, 0, len(obj))
		for path := range obj {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		group := make(RequirementGroup, 0, len(paths))
		for _, path := range paths {
			cond, err := parseCondition(path, obj[path])
			if err != nil {
				return nil, 0, semantic(in, ClauseRequired, "%s", err)
			}
			group = append(group, cond)
		}
		groups = append(groups, group)
	}
	return groups, int(dec.InputOffset()), nil
}

func parseCondition(path string, raw json.RawMessage) (Condition, error) {
	cond := Condition{Path: strings.TrimSpace(path)}
	if cond.Path == "" {
		return cond, fmt.Errorf("empty condition path")
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return cond, fmt.Errorf("condition %s: %w", path, err)
	}

	items := []any{v}
	if list, ok := v.([]any); ok {
		items = list
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			b, _ := json.Marshal(item)
			cond.Values = append(cond.Values, Value{
				Kind: KindScalar, Raw: string(b), Scalar: item,
			})
			continue
		}
		if strings.HasPrefix(s, maskMark) {
			cond.Mask = true
			s = s[len(maskMark):]
			if s == "" {
				continue
			}
		}
		val, err := classify(s)
		if err != nil {
			return cond, fmt.Errorf("condition %s: %w", path, err)
		}
		if val.Kind == KindScalar {
			val.Scalar = s
		}
		cond.Values = append(cond.Values, val)
	}
	return cond, nil
}
