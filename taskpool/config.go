package taskpool

import "github.com/ashkansamadiyan/go-errors/internal/submit"

// FullQueueStrategy controls what Submit does when the task queue is full.
type FullQueueStrategy submit.FullQueueStrategy

const (
	// BlockWhenFull blocks the submitter until a queue slot frees up or its
	// context is canceled.
	BlockWhenFull FullQueueStrategy = FullQueueStrategy(submit.BlockWhenFull)
	// ErrorWhenFull fails the submission immediately with ErrQueueFull.
	ErrorWhenFull FullQueueStrategy = FullQueueStrategy(submit.ErrorWhenFull)
	// BufferWhenFull accepts every submission and parks the overflow in an
	// unbounded in-memory queue drained as workers free up.
	BufferWhenFull FullQueueStrategy = FullQueueStrategy(submit.BufferWhenFull)
)

type Opts struct {
	MaxWorkers        int
	MaxQueueDepth     int
	FullQueueStrategy FullQueueStrategy
}

func (o Opts) validate() {
	if o.MaxWorkers <= 0 {
		panic("max workers must be greater than 0")
	}

	if o.MaxQueueDepth < 0 {
		panic("max queue depth must not be negative")
	}
}
