package contract

import "strings"

// listScanner walks a bracket list such as [a|/x|y/i|(m.p)]
// and splits it on top-level '|' separators. Separators inside
// quotes, regex literals, parentheses, braces and nested
// brackets are not split points.
type listScanner struct {
	src  string
	pos  int
	elem strings.Builder
	out  []string

	quote   byte
	inRegex bool
	inClass bool
	depth   int
	atStart bool
}

// scanList reads the bracket list starting at s[0] == '['. It
// returns the raw elements and the offset just past the
// closing ']'.
func scanList(s string) ([]string, int, bool) {
	if s == "" || s[0] != '[' {
		return nil, 0, false
	}
	sc := &listScanner{src: s, pos: 1, atStart: true}
	return sc.run()
}

func (sc *listScanner) run() ([]string, int, bool) {
	for sc.pos < len(sc.src) {
		c := sc.src[sc.pos]

		switch {
		case sc.quote != 0:
			sc.take(c)
			if c == '\\' {
				sc.escape()
			} else if c == sc.quote {
				sc.quote = 0
			}
			sc.pos++
			continue

		case sc.inRegex:
			sc.take(c)
			switch {
			case c == '\\':
				sc.escape()
			case c == '[':
				sc.inClass = true
			case c == ']' && sc.inClass:
				sc.inClass = false
			case c == '/' && !sc.inClass:
				sc.inRegex = false
			}
			sc.pos++
			continue
		}

		if sc.atStart && c != ' ' && c != '\t' {
			sc.atStart = false
			if c == '/' {
				sc.inRegex = true
				sc.take(c)
				sc.pos++
				continue
			}
		}

		switch c {
		case '"', '\'':
			sc.quote = c
		case '(', '{', '[':
			sc.depth++
		case ')', '}':
			sc.depth--
		case ']':
			if sc.depth == 0 {
				sc.flush()
				return sc.out, sc.pos + 1, true
			}
			sc.depth--
		case '|':
			if sc.depth == 0 {
				sc.flush()
				sc.atStart = true
				sc.pos++
				continue
			}
		}
		sc.take(c)
		sc.pos++
	}
	return nil, 0, false
}

func (sc *listScanner) take(c byte) {
	sc.elem.WriteByte(c)
}

func (sc *listScanner) escape() {
	if sc.pos+1 < len(sc.src) {
		sc.pos++
		sc.take(sc.src[sc.pos])
	}
}

func (sc *listScanner) flush() {
	sc.out = append(sc.out, sc.elem.String())
	sc.elem.Reset()
}
