package instrument

import (
	"context"

	"digital.vasic.contracts/pkg/contract"
)

// Wrap0 instruments a typed function without arguments.
func Wrap0[R any](
	in *Instrumenter,
	c *contract.Compiled,
	fn func(context.Context) (R, error),
) func(context.Context) (R, error) {
	if !in.Enabled() || c == nil {
		return fn
	}
	return func(ctx context.Context) (R, error) {
		var out R
		_, err := in.invoke(c, nil, func() (any, error) {
			r, err := fn(ctx)
			out = r
			return r, err
		})
		return out, err
	}
}

// Wrap1 instruments a typed single-argument function.
func Wrap1[A, R any](
	in *Instrumenter,
	c *contract.Compiled,
	fn func(context.Context, A) (R, error),
) func(context.Context, A) (R, error) {
	if !in.Enabled() || c == nil {
		return fn
	}
	return func(ctx context.Context, a A) (R, error) {
		var out R
		_, err := in.invoke(c, []any{a}, func() (any, error) {
			r, err := fn(ctx, a)
			out = r
			return r, err
		})
		return out, err
	}
}

// Wrap2 instruments a typed two-argument function.
func Wrap2[A, B, R any](
	in *Instrumenter,
	c *contract.Compiled,
	fn func(context.Context, A, B) (R, error),
) func(context.Context, A, B) (R, error) {
	if !in.Enabled() || c == nil {
		return fn
	}
	return func(ctx context.Context, a A, b B) (R, error) {
		var out R
		_, err := in.invoke(c, []any{a, b}, func() (any, error) {
			r, err := fn(ctx, a, b)
			out = r
			return r, err
		})
		return out, err
	}
}
