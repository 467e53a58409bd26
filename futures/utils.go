package futures

import (
	"context"

	"github.com/ashkansamadiyan/go-errors/normalize"
	"github.com/ashkansamadiyan/go-errors/outcome"
)

// Outcome reads the future as an outcome.Outcome.  A fulfilled future yields
// a success, a failed future yields a failure with the normalized failure
// reason.  Cancellation of the reader's own context is surfaced the same way,
// as a failure outcome.
func (f *Future[T]) Outcome(ctx context.Context) outcome.Outcome[T] {
	v, err := f.Get(ctx)
	if err != nil {
		return outcome.Failure[T](normalize.Normalize(err))
	}
	return outcome.Success(v)
}

// ResolveAll waits for all of the provided Futures to settle and returns an
// outcome for each future at the index corresponding to the provided slice.
// Individual failures do not short-circuit the collection.  If the provided
// context is canceled, the cancellation error is returned by this function.
func ResolveAll[T any](ctx context.Context, fs []*Future[T]) ([]outcome.Outcome[T], error) {
	res := make([]outcome.Outcome[T], 0, len(fs))

	for _, f := range fs {
		v, err := f.Get(ctx)
		res = append(res, outcome.New(v, err))
		// check for error at the end of the loop to avoid the race of cancelling while Getting the last value in the list
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return res, nil
}
