// Package futures provides the asynchronous computation primitive the
// wrappers in this module build on.  A Future represents a value that settles
// exactly once and can be read by any number of consumers, which is the key
// difference from a channel whose value can only be received once.
package futures

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ashkansamadiyan/go-errors/normalize"
)

var (
	// ErrCanceled is the error reported when a future is completed by calling Cancel
	ErrCanceled = errors.New("future canceled")
)

// Func is the function signature required to create a Future via FromFunc.
type Func[T any] func() (T, error)

// Future is a structure that represents an asynchronous computation.
// A Future should be created by calling New() or using the FromFunc convenience function.
// Once a future has been created it can be completed exactly once.  The first completion value
// wins and all other completions are silently ignored.
//
// The functions Complete, Cancel and Fail will all complete a future.
// Complete is used in the success case.
// Fail is used for signaling that the Future failed with an error.
// Cancel is used to signal that the asynchronous computation was canceled.
//
// Get is used to extract the value and an error from the Future.  If the future has not been
// completed calling Get will block until the future completes or until the context is canceled.
// Get can be called by multiple go routines simultaneously and they will all receive the same value.
type Future[T any] struct {
	isCompleted uint32
	completed   chan struct{}

	value T
	err   error
}

// New creates a new uncompleted Future that will eventually contain a value of type T.
// This future must be manually completed by calling Complete, Fail, or Cancel.
func New[T any]() *Future[T] {
	return &Future[T]{
		completed: make(chan struct{}),
	}
}

// FromFunc creates a new uncompleted Future that will eventually contain the return value
// of the provided function.  The function is run asynchronously when this function is
// invoked, under a capture boundary: if it panics, the future fails with the normalized
// panic value instead of tearing down the process.
func FromFunc[T any](do Func[T]) *Future[T] {
	f := New[T]()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.Fail(normalize.Normalize(r))
			}
		}()

		t, err := do()
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(t)
	}()

	return f
}

// Completed creates a Future that has already settled successfully with the provided value.
func Completed[T any](value T) *Future[T] {
	f := New[T]()
	f.Complete(value)
	return f
}

// Complete completes this Future with the provided value.  If the future has already been completed this call is ignored.
func (f *Future[T]) Complete(value T) {
	f.internalComplete(value, nil)
}

// Cancel completes this Future with the ErrCanceled error.  If the future has already been completed this call is ignored.
func (f *Future[T]) Cancel() {
	f.Fail(ErrCanceled)
}

// Fail completes this Future with the provided error.  If the future has already been completed this call is ignored.
func (f *Future[T]) Fail(err error) {
	f.internalComplete(*new(T), err)
}

func (f *Future[T]) internalComplete(val T, err error) {
	if atomic.CompareAndSwapUint32(&f.isCompleted, 0, 1) {
		f.value = val
		f.err = err
		close(f.completed)
	}
}

// Get retrieves the value of this Future.  If the future is not yet completed this call will block until the future is
// completed or until the provided context is canceled.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.completed:
		return f.value, f.err
	case <-ctx.Done():
		return *new(T), ctx.Err()
	}
}
