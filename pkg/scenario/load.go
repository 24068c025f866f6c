package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Scenario is one recorded invocation: a method called with
// fixed input values, and whether validation is expected to
// fail.
type Scenario struct {
	Key         string `json:"key"`
	Method      string `json:"method"`
	Description string `json:"description,omitempty"`
	InputValues []any  `json:"input_values"`
	ShouldFail  bool   `json:"should_fail"`
}

// File is a loaded scenario file with every reference
// resolved. Scenarios are sorted by method, then key.
type File struct {
	Path      string     `json:"path"`
	Target    string     `json:"target"`
	Scenarios []Scenario `json:"scenarios"`
}

type rawScenario struct {
	InputValues any    `json:"inputValues"`
	ShouldFail  bool   `json:"shouldFail"`
	Description string `json:"description"`
}

// LoadFile reads, validates and resolves one scenario file.
// Errors are *LoadError.
func LoadFile(path string, resolver *RefResolver) (*File, error) {
	if resolver == nil {
		resolver = NewRefResolver()
	}
	fail := func(err error) (*File, error) {
		return nil, &LoadError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail(fmt.Errorf("invalid JSON: %w", err))
	}
	if err := ValidateDocument(doc); err != nil {
		return fail(err)
	}

	resolved, err := resolver.Resolve(doc, filepath.Dir(path))
	if err != nil {
		return fail(err)
	}
	// Round-trip through JSON to decode into typed structs.
	encoded, err := json.Marshal(resolved)
	if err != nil {
		return fail(err)
	}
	var methods map[string]map[string]rawScenario
	if err := json.Unmarshal(encoded, &methods); err != nil {
		return fail(err)
	}

	f := &File{Path: path, Target: TargetName(path)}
	for method, scenarios := range methods {
		for key, raw := range scenarios {
			inputs, ok := raw.InputValues.([]any)
			if !ok {
				return fail(fmt.Errorf("%s.%s: inputValues must resolve to an array", method, key))
			}
			f.Scenarios = append(f.Scenarios, Scenario{
				Key:         key,
				Method:      method,
				Description: raw.Description,
				InputValues: inputs,
				ShouldFail:  raw.ShouldFail,
			})
		}
	}
	sort.Slice(f.Scenarios, func(i, j int) bool {
		a, b := f.Scenarios[i], f.Scenarios[j]
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Key < b.Key
	})
	return f, nil
}

// LoadFiles loads paths with at most concurrency files in
// flight. Files that fail to load are returned as errors
// alongside the ones that loaded, in input order.
func LoadFiles(ctx context.Context, paths []string, concurrency int) ([]*File, []error) {
	resolver := NewRefResolver()
	files := make([]*File, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = &LoadError{Path: path, Err: err}
				return nil
			}
			files[i], errs[i] = LoadFile(path, resolver)
			return nil
		})
	}
	_ = g.Wait()

	var loaded []*File
	var failed []error
	for i := range paths {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		loaded = append(loaded, files[i])
	}
	return loaded, failed
}
