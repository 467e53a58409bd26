package wrap

import (
	"context"
	"errors"

	"github.com/ashkansamadiyan/go-errors/futures"
	"github.com/ashkansamadiyan/go-errors/outcome"
)

// ErrNotWrappable is the failure reason reported by Unified when its argument
// is neither awaitable nor callable.
var ErrNotWrappable = errors.New("value is neither awaitable nor callable")

// Unified is a thin convenience façade over Sync and Async.  It dispatches on
// the runtime shape of v, checking the awaitable capability before the
// callable one:
//
//   - an Awaitable[T] is awaited exactly as Async would
//   - a func() (T, error) or func() T is run exactly as Sync would, and the
//     returned future is already completed when Unified returns
//   - anything else yields a completed failure outcome holding ErrNotWrappable
//
// Sync and Async remain the primary entry points; Unified adds no semantics
// beyond the dispatch.
func Unified[T any](ctx context.Context, v any) *futures.Future[outcome.Outcome[T]] {
	switch x := v.(type) {
	case Awaitable[T]:
		return Async[T](ctx, x)
	case func() (T, error):
		return futures.Completed(Sync(x))
	case func() T:
		return futures.Completed(Sync(func() (T, error) {
			return x(), nil
		}))
	}

	return futures.Completed(outcome.Failure[T](ErrNotWrappable))
}
