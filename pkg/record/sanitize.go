package record

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"digital.vasic.contracts/pkg/types"
)

// DefaultDepth bounds how deep Sanitize descends into nested
// containers.
const DefaultDepth = 8

// Placeholders written by Sanitize in place of values it does
// not descend into.
const (
	CircularMarker = "[Circular]"
	DepthMarker    = "[MaxDepth]"
)

// Sanitize converts v into a JSON-encodable tree of maps,
// slices and scalars. Reference cycles are replaced by
// CircularMarker and containers nested deeper than depth by
// DepthMarker.
func Sanitize(v any, depth int) any {
	s := &sanitizer{seen: make(map[uintptr]bool)}
	return s.walk(reflect.ValueOf(v), depth)
}

type sanitizer struct {
	seen map[uintptr]bool
}

func (s *sanitizer) walk(rv reflect.Value, depth int) any {
	if !rv.IsValid() {
		return nil
	}
	if rv.CanInterface() {
		switch v := rv.Interface().(type) {
		case string, bool, float64, types.Symbol, *big.Int, time.Time,
			json.Number:
			return types.Normalize(v)
		case big.Int:
			return types.Normalize(&v)
		}
		if types.IsAbsent(rv.Interface()) {
			return nil
		}
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return s.walk(rv.Elem(), depth)

	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return s.enter(rv.Pointer(), func() any {
			return s.walk(rv.Elem(), depth)
		})

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if depth <= 0 {
			return DepthMarker
		}
		return s.enter(rv.Pointer(), func() any {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[fmt.Sprint(iter.Key().Interface())] = s.walk(iter.Value(), depth-1)
			}
			return out
		})

	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return types.Normalize(rv.Bytes())
		}
		if depth <= 0 {
			return DepthMarker
		}
		return s.enter(rv.Pointer(), func() any {
			return s.list(rv, depth)
		})

	case reflect.Array:
		if depth <= 0 {
			return DepthMarker
		}
		return s.list(rv, depth)

	case reflect.Struct:
		if depth <= 0 {
			return DepthMarker
		}
		return s.object(rv, depth)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	}

	if rv.CanInterface() {
		return types.Normalize(rv.Interface())
	}
	return fmt.Sprintf("<%s>", rv.Type())
}

// enter guards a reference against cycles on the current path.
func (s *sanitizer) enter(ptr uintptr, fn func() any) any {
	if ptr != 0 {
		if s.seen[ptr] {
			return CircularMarker
		}
		s.seen[ptr] = true
		defer delete(s.seen, ptr)
	}
	return fn()
}

func (s *sanitizer) list(rv reflect.Value, depth int) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = s.walk(rv.Index(i), depth-1)
	}
	return out
}

func (s *sanitizer) object(rv reflect.Value, depth int) map[string]any {
	out := make(map[string]any)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, skip := fieldName(f)
		if skip {
			continue
		}
		out[name] = s.walk(rv.Field(i), depth-1)
	}
	return out
}

// fieldName returns the JSON name of a struct field.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return f.Name, false
}
