package record

import (
	"strconv"
	"strings"
)

// Masked replaces redacted values in reports.
const Masked = "****"

// MaskValue redacts a whole value. Absent values stay absent.
func MaskValue(v any) any {
	if v == nil {
		return nil
	}
	return Masked
}

// MaskPaths returns a copy of the sanitized value v with the
// sub-values at the given dot-paths redacted. Paths that do not
// resolve are ignored. v itself is not modified.
func MaskPaths(v any, paths ...string) any {
	for _, p := range paths {
		if p == "" {
			v = MaskValue(v)
			continue
		}
		v = maskPath(v, strings.Split(p, "."))
	}
	return v
}

func maskPath(v any, segs []string) any {
	if len(segs) == 0 {
		return MaskValue(v)
	}
	switch t := v.(type) {
	case map[string]any:
		child, ok := t[segs[0]]
		if !ok {
			return v
		}
		cp := make(map[string]any, len(t))
		for k, val := range t {
			cp[k] = val
		}
		cp[segs[0]] = maskPath(child, segs[1:])
		return cp
	case []any:
		i, err := strconv.Atoi(segs[0])
		if err != nil || i < 0 || i >= len(t) {
			return v
		}
		cp := append([]any(nil), t...)
		cp[i] = maskPath(t[i], segs[1:])
		return cp
	}
	return v
}
