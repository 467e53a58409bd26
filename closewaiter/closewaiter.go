// Package closewaiter coordinates a shutdown with in-flight work.  The task
// pool uses it to guarantee that no submission is racing the close of its
// entry channel: submissions run inside Do, Close waits for the active ones
// to leave before running the teardown function, and every Do after that is
// refused with ErrClosed.
package closewaiter

import (
	"errors"
	"runtime"
	"sync/atomic"
)

const (
	open     = 0
	closed   = 1
	minusOne = ^uint32(0)
)

var (
	// ErrClosed is reported by Do once Close has been called.
	ErrClosed = errors.New("closed")
)

// CloseWaiter gates a piece of work behind a close flag.  The zero value is
// not usable; create one with New.
type CloseWaiter struct {
	isClosed  uint32
	activeCnt uint32

	closed chan struct{}
}

func New() *CloseWaiter {
	return &CloseWaiter{
		closed: make(chan struct{}),
	}
}

// Do runs f unless the waiter has been closed, in which case f is not run and
// ErrClosed is returned.  Close never completes while a Do is still running.
func (c *CloseWaiter) Do(f func()) error {
	atomic.AddUint32(&c.activeCnt, 1)
	defer atomic.AddUint32(&c.activeCnt, minusOne)

	if atomic.LoadUint32(&c.isClosed) == closed {
		return ErrClosed
	}

	f()
	return nil
}

// Close flips the waiter closed, waits until every active Do has exited, runs
// the teardown function f exactly once and returns.  Additional Close calls
// skip their own f and simply wait for the first teardown to finish.
func (c *CloseWaiter) Close(f func()) {
	if atomic.CompareAndSwapUint32(&c.isClosed, open, closed) {
		go func() {
			for atomic.LoadUint32(&c.activeCnt) != 0 {
				// busy wait while yielding until all calls to Do have exited
				runtime.Gosched()
			}

			f()

			close(c.closed)
		}()
	}

	<-c.closed
}
