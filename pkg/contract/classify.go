package contract

import (
	"fmt"
	"regexp"
	"strings"
)

// classify decides how a list element is evaluated: as a
// /pattern/flags, a (module/path.export) predicate, a "${...}"
// template or a plain scalar. Scalar conversion is left to the
// caller.
func classify(raw string) (Value, error) {
	v := Value{Kind: KindScalar, Raw: raw}

	switch {
	case len(raw) >= 2 && raw[0] == '/':
		end := strings.LastIndexByte(raw, '/')
		if end == 0 {
			return v, nil
		}
		flags := raw[end+1:]
		if strings.Trim(flags, "gimsuy") != "" {
			return v, nil
		}
		v.Kind = KindPattern
		v.Pattern = raw[1:end]
		v.Flags = flags
		if _, err := CompilePattern(v.Pattern, v.Flags); err != nil {
			return v, fmt.Errorf("invalid pattern %s: %w", raw, err)
		}

	case len(raw) >= 2 && raw[0] == '(' && raw[len(raw)-1] == ')':
		ref := strings.TrimSpace(raw[1 : len(raw)-1])
		dot := strings.LastIndexByte(ref, '.')
		if dot > strings.LastIndexByte(ref, '/') {
			v.Module, v.Export = ref[:dot], ref[dot+1:]
		} else {
			v.Export = ref
		}
		if !identPattern.MatchString(v.Export) {
			return v, fmt.Errorf("invalid predicate reference %s", raw)
		}
		v.Kind = KindPredicate

	default:
		expr, ok := templateExpr(raw)
		if !ok {
			return v, nil
		}
		if expr == "" {
			return v, fmt.Errorf("empty template %s", raw)
		}
		v.Kind = KindTemplate
		v.Expr = expr
	}
	return v, nil
}

func templateExpr(raw string) (string, bool) {
	s := raw
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return "", false
	}
	return strings.TrimSpace(s[2 : len(s)-1]), true
}

// CompilePattern compiles a pattern literal's source and flags.
// The i, m and s flags map to the equivalent inline flags; g,
// u and y do not change matching of a single value.
func CompilePattern(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'g', 'u', 'y':
		default:
			return nil, fmt.Errorf("unsupported pattern flag %q", f)
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	return regexp.Compile(pattern)
}
