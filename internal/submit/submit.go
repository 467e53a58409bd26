// Package submit holds the task/future coupling and the full-queue submit
// strategies shared by the pool implementations.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashkansamadiyan/go-errors/futures"
)

var (
	ErrQueueFull = errors.New("task queue is full")
)

// TaskFuture couples a submitted task with the future its result will be
// delivered through and the submitter's context.
type TaskFuture[T any, R any] struct {
	Ctx    context.Context
	Task   T
	Future *futures.Future[R]
}

func NewTaskFuture[T any, R any](ctx context.Context, task T) TaskFuture[T, R] {
	return TaskFuture[T, R]{
		Ctx:    ctx,
		Task:   task,
		Future: futures.New[R](),
	}
}

type FullQueueStrategy int

const (
	BlockWhenFull FullQueueStrategy = iota
	ErrorWhenFull
	BufferWhenFull
)

// Func attempts to hand a task future to the channel feeding the workers,
// applying one full-queue strategy.
type Func[T any, R any] func(taskChan chan<- TaskFuture[T, R], tf TaskFuture[T, R]) error

// GetSubmitFunction maps a strategy onto its submit behavior.  BufferWhenFull
// submits like BlockWhenFull; the unbounded buffering happens behind the
// channel, in the pool's dispatcher.
func GetSubmitFunction[T any, R any](s FullQueueStrategy) Func[T, R] {
	switch s {
	case BlockWhenFull, BufferWhenFull:
		return blockWhenFullStrategy[T, R]
	case ErrorWhenFull:
		return errorWhenFullStrategy[T, R]
	default:
		panic(fmt.Sprintf("invalid submit strategy value %d", s))
	}
}

func blockWhenFullStrategy[T any, R any](taskChan chan<- TaskFuture[T, R], tf TaskFuture[T, R]) error {
	select {
	case taskChan <- tf:
		return nil
	case <-tf.Ctx.Done():
		return tf.Ctx.Err()
	}
}

func errorWhenFullStrategy[T any, R any](taskChan chan<- TaskFuture[T, R], tf TaskFuture[T, R]) error {
	select {
	case taskChan <- tf:
		return nil
	default:
		return ErrQueueFull
	}
}
