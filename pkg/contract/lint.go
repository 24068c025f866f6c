package contract

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LintIssue is one problem found in a declaration file.
type LintIssue struct {
	Index   int // -1 if not applicable
	Field   string
	Clause  string
	Message string
}

func (e LintIssue) Error() string {
	prefix := e.Field
	if e.Index >= 0 {
		prefix = fmt.Sprintf("declarations[%d].%s", e.Index, e.Field)
	}
	if e.Clause != "" {
		prefix += " (" + e.Clause + ")"
	}
	return prefix + ": " + e.Message
}

// LintFile checks a declaration file without loading it and
// returns every issue found, including per-clause parse
// errors.
func (p *Parser) LintFile(path string) []LintIssue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []LintIssue{{Index: -1, Field: "file", Message: err.Error()}}
	}
	var file DeclarationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return []LintIssue{{Index: -1, Field: "syntax", Message: err.Error()}}
	}

	var issues []LintIssue
	if file.Version == "" {
		issues = append(issues, LintIssue{
			Index: -1, Field: "version", Message: "version is required",
		})
	}

	keys := make(map[string]bool)
	for i, d := range file.Declarations {
		switch {
		case d.Method == "":
			issues = append(issues, LintIssue{
				Index: i, Field: "method", Message: "method is required",
			})
		case keys[d.Key()]:
			issues = append(issues, LintIssue{
				Index: i, Field: "method",
				Message: fmt.Sprintf("duplicate declaration: %s", d.Key()),
			})
		default:
			keys[d.Key()] = true
		}

		issues = append(issues, p.lintContracts(i, "params", d.Params)...)
		issues = append(issues, p.lintContracts(i, "output", d.Output)...)
	}
	return issues
}

func (p *Parser) lintContracts(index int, field string, dsls []string) []LintIssue {
	var issues []LintIssue
	for j, dsl := range dsls {
		c, err := p.Parse(dsl)
		if err != nil {
			var pe *ParseError
			clause := ""
			if errors.As(err, &pe) {
				clause = pe.Clause
			}
			issues = append(issues, LintIssue{
				Index:   index,
				Field:   fmt.Sprintf("%s[%d]", field, j),
				Clause:  clause,
				Message: c.Reason,
			})
			continue
		}
		if c.Conflict {
			issues = append(issues, LintIssue{
				Index:   index,
				Field:   fmt.Sprintf("%s[%d]", field, j),
				Message: "both acceptedValues and rejectedValues declared; rejectedValues is ignored",
			})
		}
	}
	return issues
}
