package record

import (
	"math/big"
	"reflect"
)

// Clone returns a deep copy of v that keeps the Go types of its
// leaves. Maps, slices, arrays, structs and pointers are copied;
// functions and channels are shared. Shared references and
// cycles in v are shared and cyclic in the copy.
func Clone(v any) any {
	if v == nil {
		return nil
	}
	c := &cloner{seen: make(map[cloneRef]reflect.Value)}
	return c.copy(reflect.ValueOf(v)).Interface()
}

// CloneArgs deep-copies a list of call arguments.
func CloneArgs(args []any) []any {
	if args == nil {
		return nil
	}
	c := &cloner{seen: make(map[cloneRef]reflect.Value)}
	out := make([]any, len(args))
	for i, a := range args {
		if a == nil {
			continue
		}
		out[i] = c.copy(reflect.ValueOf(a)).Interface()
	}
	return out
}

type cloneRef struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type cloner struct {
	seen map[cloneRef]reflect.Value
}

func (c *cloner) copy(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(c.copy(rv.Elem()))
		return out

	case reflect.Pointer:
		if rv.IsNil() {
			return rv
		}
		if b, ok := rv.Interface().(*big.Int); ok {
			return reflect.ValueOf(new(big.Int).Set(b))
		}
		ref := cloneRef{ptr: rv.Pointer(), typ: rv.Type()}
		if done, ok := c.seen[ref]; ok {
			return done
		}
		out := reflect.New(rv.Type().Elem())
		c.seen[ref] = out
		out.Elem().Set(c.copy(rv.Elem()))
		return out

	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		ref := cloneRef{ptr: rv.Pointer(), typ: rv.Type()}
		if done, ok := c.seen[ref]; ok {
			return done
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		c.seen[ref] = out
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), c.copy(iter.Value()))
		}
		return out

	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		ref := cloneRef{ptr: rv.Pointer(), typ: rv.Type(), n: rv.Len()}
		if done, ok := c.seen[ref]; ok {
			return done
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		c.seen[ref] = out
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			reflect.Copy(out, rv)
			return out
		}
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(c.copy(rv.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		out.Set(rv)
		for i := 0; i < rv.Len(); i++ {
			if el := out.Index(i); el.CanSet() {
				el.Set(c.copy(rv.Index(i)))
			}
		}
		return out

	case reflect.Struct:
		out := reflect.New(rv.Type()).Elem()
		out.Set(rv)
		for i := 0; i < rv.NumField(); i++ {
			if f := out.Field(i); f.CanSet() {
				f.Set(c.copy(rv.Field(i)))
			}
		}
		return out
	}
	return rv
}
