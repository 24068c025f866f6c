package types

import (
	"math/big"
	"strconv"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

// sampleLen is the number of elements in sampled containers.
const sampleLen = 3

// Sample returns a random value of the named kind. Containers
// are filled with values of subToken when it names a kind, and
// with strings otherwise. Unknown kinds sample as nil.
func (r *Registry) Sample(typeToken, subToken string) any {
	switch typeToken {
	case String:
		return draw(gen.AlphaString(), "")
	case Number:
		return draw(gen.IntRange(-1000, 1000), 0)
	case Boolean:
		return draw(gen.Bool(), false)
	case BigInt:
		return big.NewInt(draw(gen.Int64(), int64(0)))
	case SymbolKind:
		return Symbol(draw(gen.Identifier(), "sym"))
	case Undefined:
		return Absent
	case Null:
		return nil
	case Date:
		secs := draw(gen.Int64Range(0, 4102444800), int64(0))
		return time.Unix(secs, 0).UTC()
	case Function:
		return func() {}
	case EventKind:
		return BasicEvent{
			Name: draw(gen.Identifier(), "event"),
			At:   time.Now().UTC(),
		}
	case Array:
		out := make([]any, sampleLen)
		for i := range out {
			out[i] = r.memberSample(subToken)
		}
		return out
	case Object:
		out := make(map[string]any, sampleLen)
		for i := 0; i < sampleLen; i++ {
			key := draw(gen.Identifier(), "key") + strconv.Itoa(i)
			out[key] = r.memberSample(subToken)
		}
		return out
	}
	return nil
}

func (r *Registry) memberSample(subToken string) any {
	if subToken == "" || subToken == Structured ||
		subToken == NotApplicable || !r.Known(subToken) {
		return r.Sample(String, "")
	}
	return r.Sample(subToken, "")
}

// draw samples g, falling back to def when the generator gives
// up (sieved generators may fail).
func draw[T any](g gopter.Gen, def T) T {
	v, ok := g.Sample()
	if !ok {
		return def
	}
	t, ok := v.(T)
	if !ok {
		return def
	}
	return t
}
