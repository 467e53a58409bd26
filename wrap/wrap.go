// Package wrap executes computations under a capture boundary and reports
// how they settled as outcome values.  A wrapped computation can fail by
// returning an error or by panicking; either way the caller gets back a
// failure outcome holding a normalized error, and nothing ever propagates
// past the wrapper.
package wrap

import (
	"context"

	"github.com/ashkansamadiyan/go-errors/futures"
	"github.com/ashkansamadiyan/go-errors/normalize"
	"github.com/ashkansamadiyan/go-errors/outcome"
)

// Awaitable is the capability a value must have to be awaited by Async and
// Unified.  *futures.Future satisfies it.
type Awaitable[T any] interface {
	Get(ctx context.Context) (T, error)
}

// Sync runs fn under a capture boundary and reports how it settled.
// A normal return yields a success outcome.  A returned error or a recovered
// panic value is fed through normalize.Normalize into a failure outcome.
//
// The boundary only covers fn's own execution: recover does not intercept
// runtime.Goexit, so cooperative goroutine teardown passes through untouched.
func Sync[T any](fn func() (T, error)) (o outcome.Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			o = outcome.Failure[T](normalize.Normalize(r))
		}
	}()

	v, err := fn()
	if err != nil {
		return outcome.Failure[T](normalize.Normalize(err))
	}
	return outcome.Success(v)
}

// Async awaits f and reports how it settled as an outcome future.  The
// returned future is always completed, never failed: a failure of f becomes a
// failure outcome holding the normalized reason.  Cancellation of ctx during
// the await is just another failure reason and flows through normalization
// like any other error.
func Async[T any](ctx context.Context, f Awaitable[T]) *futures.Future[outcome.Outcome[T]] {
	out := futures.New[outcome.Outcome[T]]()

	go func() {
		v, err := f.Get(ctx)
		if err != nil {
			out.Complete(outcome.Failure[T](normalize.Normalize(err)))
			return
		}
		out.Complete(outcome.Success(v))
	}()

	return out
}

// AsyncFunc is sugar for wrapping a computation that has not been started
// yet: it runs fn in its own goroutine under the same capture boundary as
// Sync and reports the settlement as an outcome future that never fails.
func AsyncFunc[T any](fn func() (T, error)) *futures.Future[outcome.Outcome[T]] {
	out := futures.New[outcome.Outcome[T]]()

	go func() {
		out.Complete(Sync(fn))
	}()

	return out
}
