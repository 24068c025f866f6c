package record

import (
	"reflect"
	"strconv"
	"strings"
)

// Lookup resolves a dot-path such as "user.profile.email"
// inside v. Maps are indexed by key, structs by JSON or field
// name and slices by decimal index.
func Lookup(v any, path string) (any, bool) {
	cur := reflect.ValueOf(v)
	if path == "" {
		return v, true
	}
	for _, seg := range strings.Split(path, ".") {
		cur = indirect(cur)
		if !cur.IsValid() {
			return nil, false
		}

		switch cur.Kind() {
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			next := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !next.IsValid() {
				return nil, false
			}
			cur = next

		case reflect.Struct:
			next, ok := structField(cur, seg)
			if !ok {
				return nil, false
			}
			cur = next

		case reflect.Slice, reflect.Array:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(i)

		default:
			return nil, false
		}
	}

	if !cur.IsValid() || !cur.CanInterface() {
		return nil, false
	}
	return cur.Interface(), true
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tagName, skip := fieldName(f)
		if skip {
			continue
		}
		if tagName == name || strings.EqualFold(f.Name, name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
