package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// RefKey is the key of a data reference placeholder:
//
//	{"$ref": "data/users.json/admins/0"}
//
// The reference names a file relative to the referring file,
// optionally followed by nested keys into it.
const RefKey = "$ref"

// maxRefDepth bounds chains of references to references.
const maxRefDepth = 16

// RefResolver resolves data references, caching every data file
// it reads. It is safe for concurrent use.
type RefResolver struct {
	mu    sync.Mutex
	files map[string]any
}

// NewRefResolver creates a resolver with an empty file cache.
func NewRefResolver() *RefResolver {
	return &RefResolver{files: make(map[string]any)}
}

// ResolveRefs returns a copy of v in which every reference
// placeholder is replaced by the value it points to. Relative
// paths are resolved against dir.
func ResolveRefs(v any, dir string) (any, error) {
	return NewRefResolver().Resolve(v, dir)
}

// Resolve is ResolveRefs with the resolver's file cache.
func (r *RefResolver) Resolve(v any, dir string) (any, error) {
	return r.resolve(v, dir, 0)
}

func (r *RefResolver) resolve(v any, dir string, depth int) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if ref, ok := refOf(t); ok {
			if depth >= maxRefDepth {
				return nil, fmt.Errorf("reference %q nests deeper than %d", ref, maxRefDepth)
			}
			target, file, err := r.lookup(ref, dir)
			if err != nil {
				return nil, err
			}
			return r.resolve(target, filepath.Dir(file), depth+1)
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			resolved, err := r.resolve(item, dir, depth)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			resolved, err := r.resolve(item, dir, depth)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	}
	return v, nil
}

// refOf reports whether m is a reference placeholder.
func refOf(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	ref, ok := m[RefKey].(string)
	return ref, ok
}

// lookup splits ref into the longest prefix naming an existing
// file and the nested keys after it, then walks the keys.
func (r *RefResolver) lookup(ref, dir string) (any, string, error) {
	parts := strings.Split(filepath.ToSlash(ref), "/")
	for i := len(parts); i > 0; i-- {
		rel := filepath.FromSlash(strings.Join(parts[:i], "/"))
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, rel)
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		doc, err := r.load(path)
		if err != nil {
			return nil, "", err
		}
		value, err := walkKeys(doc, parts[i:])
		if err != nil {
			return nil, "", fmt.Errorf("reference %q: %w", ref, err)
		}
		return value, path, nil
	}
	return nil, "", fmt.Errorf("reference %q: no such data file under %s", ref, dir)
}

func (r *RefResolver) load(path string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.files[path]; ok {
		return doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	r.files[path] = doc
	return doc, nil
}

func walkKeys(doc any, keys []string) (any, error) {
	cur := doc
	for _, key := range keys {
		if key == "" {
			continue
		}
		switch t := cur.(type) {
		case map[string]any:
			next, ok := t[key]
			if !ok {
				return nil, fmt.Errorf("key %q not found", key)
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(t) {
				return nil, fmt.Errorf("index %q out of range", key)
			}
			cur = t[i]
		default:
			return nil, fmt.Errorf("key %q applied to a scalar", key)
		}
	}
	return cur, nil
}
