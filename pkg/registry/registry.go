// Package registry maps target names to the callable methods a
// scenario run may invoke.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/instrument"
)

// Method is one invocable method of a target.
type Method struct {
	Name string

	// Static methods are called with a nil receiver; others
	// get a fresh instance from the target's constructor.
	Static bool

	Call instrument.MethodFunc

	// Contract, when set, takes precedence over the book passed
	// to Instrument.
	Contract *contract.Compiled

	instrumented bool
}

// Target is a named group of methods, like a class.
type Target struct {
	Name    string
	New     func(ctx context.Context) (any, error)
	Methods map[string]*Method
}

// Method returns the named method.
func (t *Target) Method(name string) (*Method, bool) {
	m, ok := t.Methods[name]
	return m, ok
}

// Receiver returns the receiver for a call of m: nil for
// static methods, a new instance otherwise.
func (t *Target) Receiver(ctx context.Context, m *Method) (any, error) {
	if m.Static {
		return nil, nil
	}
	if t.New == nil {
		return nil, fmt.Errorf(
			"target %s has no constructor for instance method %s",
			t.Name, m.Name,
		)
	}
	recv, err := t.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to construct %s: %w", t.Name, err)
	}
	return recv, nil
}

// Registry defines the interface for managing targets.
type Registry interface {
	// Register adds a target.
	Register(t *Target) error

	// Get retrieves a target by name.
	Get(name string) (*Target, error)

	// List returns all registered targets sorted by name.
	List() []*Target

	// Instrument wraps every method with in, using each
	// method's own contract or the book's declaration.
	Instrument(in *instrument.Instrumenter, book *contract.Book) int

	// Count returns the number of registered targets.
	Count() int

	// Clear removes all targets.
	Clear()
}

// DefaultRegistry is the standard Registry implementation.
// It is safe for concurrent use.
type DefaultRegistry struct {
	mu      sync.RWMutex
	targets map[string]*Target
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		targets: make(map[string]*Target),
	}
}

// Register adds a target to the registry. Returns an error
// if a target with the same name is already registered or a
// method has no function.
func (r *DefaultRegistry) Register(t *Target) error {
	if t.Name == "" {
		return fmt.Errorf("target name is empty")
	}
	for name, m := range t.Methods {
		if m == nil || m.Call == nil {
			return fmt.Errorf("target %s: method %s has no function", t.Name, name)
		}
		if m.Name == "" {
			m.Name = name
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[t.Name]; exists {
		return fmt.Errorf("target already registered: %s", t.Name)
	}
	r.targets[t.Name] = t
	return nil
}

// Get retrieves a target by name.
func (r *DefaultRegistry) Get(name string) (*Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.targets[name]
	if !exists {
		return nil, fmt.Errorf("target not found: %s", name)
	}
	return t, nil
}

// List returns all registered targets sorted by name.
func (r *DefaultRegistry) List() []*Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Instrument wraps each not yet instrumented method and returns
// how many were wrapped. Methods without any declaration are
// wrapped with an empty contract so their calls are still
// recorded.
func (r *DefaultRegistry) Instrument(
	in *instrument.Instrumenter,
	book *contract.Book,
) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	wrapped := 0
	for _, t := range r.targets {
		for _, m := range t.Methods {
			if m.instrumented {
				continue
			}
			c := m.Contract
			if c == nil && book != nil {
				c, _ = book.Get(t.Name, m.Name)
			}
			if c == nil {
				c = contract.Compile(contract.Declaration{
					Class:  t.Name,
					Method: m.Name,
					Static: m.Static,
				})
			}
			m.Contract = c
			m.Call = in.WrapMethod(c, m.Call)
			m.instrumented = true
			wrapped++
		}
	}
	return wrapped
}

// Count returns the number of registered targets.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

// Clear removes all targets.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = make(map[string]*Target)
}
