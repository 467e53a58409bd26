// Package taskpool runs fallible tasks on a bounded pool of workers and
// delivers each result through a future.  Tasks run under the same capture
// boundary as the wrap package: a panicking task surfaces as a failed future
// holding the normalized panic value instead of killing its worker.
package taskpool

import (
	"context"
	"sync"

	"github.com/eapache/queue"

	"github.com/ashkansamadiyan/go-errors/closewaiter"
	"github.com/ashkansamadiyan/go-errors/futures"
	"github.com/ashkansamadiyan/go-errors/internal/submit"
	"github.com/ashkansamadiyan/go-errors/outcome"
	"github.com/ashkansamadiyan/go-errors/wrap"
)

// RunFunc is the function a Pool runs for each submitted task.
type RunFunc[T any, R any] func(ctx context.Context, task T) (R, error)

// Pool runs submitted tasks on MaxWorkers workers fed by a queue of
// MaxQueueDepth slots.  What happens when the queue is full is decided by the
// FullQueueStrategy.  A Pool must be created by New and released by Close.
type Pool[T any, R any] struct {
	run RunFunc[T, R]

	// entryChan is what submissions feed; taskChan is what workers drain.
	// They are the same channel except under BufferWhenFull, where the
	// dispatcher and its unbounded buffer sit between the two.
	entryChan chan submit.TaskFuture[T, R]
	taskChan  chan submit.TaskFuture[T, R]

	submit submit.Func[T, R]

	active   *closewaiter.CloseWaiter
	waitStop *sync.WaitGroup
}

// New creates a started Pool.  It panics if opts are invalid.
func New[T any, R any](opts Opts, run RunFunc[T, R]) *Pool[T, R] {
	opts.validate()

	taskChan := make(chan submit.TaskFuture[T, R], opts.MaxQueueDepth)

	p := &Pool[T, R]{
		run:       run,
		entryChan: taskChan,
		taskChan:  taskChan,
		submit:    submit.GetSubmitFunction[T, R](submit.FullQueueStrategy(opts.FullQueueStrategy)),
		active:    closewaiter.New(),
		waitStop:  &sync.WaitGroup{},
	}

	if opts.FullQueueStrategy == BufferWhenFull {
		p.entryChan = make(chan submit.TaskFuture[T, R])
		go p.dispatch()
	}

	for i := 0; i < opts.MaxWorkers; i++ {
		p.waitStop.Add(1)
		go p.worker(i)
	}

	return p
}

// Submit runs task on the pool and blocks until its result is available or
// ctx is canceled.
func (p *Pool[T, R]) Submit(ctx context.Context, task T) (R, error) {
	return p.SubmitF(ctx, task).Get(ctx)
}

// SubmitF submits task and returns the future its result will be delivered
// through.  The future fails with ErrStopped if the pool has been closed,
// with ErrQueueFull under the ErrorWhenFull strategy, or with the task's own
// error or normalized panic value.
func (p *Pool[T, R]) SubmitF(ctx context.Context, task T) *futures.Future[R] {
	tf := submit.NewTaskFuture[T, R](ctx, task)

	err := p.active.Do(func() {
		if serr := p.submit(p.entryChan, tf); serr != nil {
			tf.Future.Fail(serr)
		}
	})
	if err != nil {
		tf.Future.Fail(ErrStopped)
	}

	return tf.Future
}

// SubmitO submits task and blocks until it settles, reporting the result as
// an outcome value that never needs an error check to be safely destructured.
func (p *Pool[T, R]) SubmitO(ctx context.Context, task T) outcome.Outcome[R] {
	return p.SubmitF(ctx, task).Outcome(ctx)
}

// Close stops the pool: it waits for in-flight submissions to land, rejects
// everything after them with ErrStopped, then waits for the workers to drain
// the queue and exit.  Close is safe to call more than once.
func (p *Pool[T, R]) Close() {
	p.active.Close(func() {
		close(p.entryChan)
	})
	p.waitStop.Wait()
}

func (p *Pool[T, R]) worker(id int) {
	defer p.waitStop.Done()

	for tf := range p.taskChan {
		// A submitter that gave up while queued gets the cancellation
		// instead of a stale run.
		if tf.Ctx.Err() != nil {
			tf.Future.Fail(tf.Ctx.Err())
			continue
		}

		ctx := withWorkerID(tf.Ctx, id)
		task := tf.Task

		o := wrap.Sync(func() (R, error) {
			return p.run(ctx, task)
		})
		if o.IsFailure() {
			tf.Future.Fail(o.Err)
			continue
		}
		tf.Future.Complete(o.Val)
	}
}

// dispatch sits between entryChan and taskChan under BufferWhenFull, parking
// overflow in an unbounded FIFO so submissions are always accepted.
func (p *Pool[T, R]) dispatch() {
	buf := queue.New()
	in := p.entryChan

	for in != nil || buf.Length() > 0 {
		// Only offer the head to the workers when there is one; a send on a
		// nil channel never fires.
		var out chan<- submit.TaskFuture[T, R]
		var head submit.TaskFuture[T, R]
		if buf.Length() > 0 {
			head = buf.Peek().(submit.TaskFuture[T, R])
			out = p.taskChan
		}

		select {
		case tf, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			buf.Add(tf)
		case out <- head:
			buf.Remove()
		}
	}

	close(p.taskChan)
}
