package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// DeclarationFile is the on-disk layout of a declaration file.
// YAML and JSON files share it.
type DeclarationFile struct {
	Version      string         `json:"version" yaml:"version"`
	Name         string         `json:"name,omitempty" yaml:"name,omitempty"`
	Declarations []Declaration  `json:"declarations" yaml:"declarations"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Book holds compiled declarations loaded from files, keyed by
// "Class.method".
type Book struct {
	mu       sync.RWMutex
	parser   *Parser
	compiled map[string]*Compiled
	sources  []string
}

// NewBook creates an empty Book. A nil parser uses the default
// type registry.
func NewBook(p *Parser) *Book {
	if p == nil {
		p = defaultParser
	}
	return &Book{
		parser:   p,
		compiled: make(map[string]*Compiled),
	}
}

// LoadDeclarations reads a YAML or JSON declaration file.
func LoadDeclarations(path string) ([]Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declaration file %s: %w", path, err)
	}
	var file DeclarationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse declaration file %s: %w", path, err)
	}
	for i, d := range file.Declarations {
		if d.Method == "" {
			return nil, fmt.Errorf(
				"declaration at index %d in %s has no method", i, path,
			)
		}
	}
	return file.Declarations, nil
}

// LoadFile loads and compiles the declarations of one file.
// Contracts that fail to parse do not abort the load; they are
// reported through Compiled.Errors.
func (b *Book) LoadFile(path string) error {
	decls, err := LoadDeclarations(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, d := range decls {
		b.compiled[d.Key()] = b.parser.Compile(d)
	}
	b.sources = append(b.sources, path)
	return nil
}

// LoadDir loads every .yaml, .yml and .json file in dir.
func (b *Book) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read declaration directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		if err := b.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Add compiles and stores a single declaration.
func (b *Book) Add(d Declaration) *Compiled {
	c := b.parser.Compile(d)
	b.mu.Lock()
	b.compiled[d.Key()] = c
	b.mu.Unlock()
	return c
}

// Get returns the compiled declaration of class.method.
func (b *Book) Get(class, method string) (*Compiled, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.compiled[Declaration{Class: class, Method: method}.Key()]
	return c, ok
}

// All returns every compiled declaration sorted by key.
func (b *Book) All() []*Compiled {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.compiled))
	for k := range b.compiled {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Compiled, len(keys))
	for i, k := range keys {
		out[i] = b.compiled[k]
	}
	return out
}

// Count returns the number of loaded declarations.
func (b *Book) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.compiled)
}

// Sources returns the loaded file paths.
func (b *Book) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.sources))
	copy(out, b.sources)
	return out
}
