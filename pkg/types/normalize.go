package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"time"
)

// Normalize converts a Go value into its JSON-like form:
// map[string]any, []any, float64, string, bool or nil. Values
// that cannot be encoded (functions, channels) are replaced by
// a descriptive string so the result is always comparable.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, float64:
		return t
	case Symbol:
		return "Symbol(" + string(t) + ")"
	case *big.Int:
		if t == nil {
			return nil
		}
		f, _ := new(big.Float).SetInt(t).Float64()
		return f
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	if IsAbsent(v) {
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return nil
		}
		return fmt.Sprintf("<%s>", rv.Type())
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return out
}
