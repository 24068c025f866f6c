package instrument

import (
	"runtime"
	"strings"
)

// callerOf returns the class and method name of the function
// skip frames above its caller. Both are empty when the stack
// cannot be read.
func callerOf(skip int) (class, method string) {
	pcs := make([]uintptr, 1)
	if runtime.Callers(skip+2, pcs) == 0 {
		return "", ""
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	return splitFuncName(frame.Function)
}

// splitFuncName splits a qualified Go function name such as
// "example.com/pkg.(*Users).Create" into ("Users", "Create").
func splitFuncName(name string) (class, method string) {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	_, rest, ok := strings.Cut(name, ".")
	if !ok {
		return "", name
	}
	if strings.HasPrefix(rest, "(") {
		recv, m, ok := strings.Cut(rest, ").")
		if !ok {
			return "", rest
		}
		return strings.TrimPrefix(strings.TrimPrefix(recv, "("), "*"), m
	}
	parts := strings.Split(rest, ".")
	if len(parts) == 2 && !strings.HasPrefix(parts[1], "func") {
		return parts[0], parts[1]
	}
	return "", rest
}
