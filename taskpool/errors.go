package taskpool

import (
	"errors"

	"github.com/ashkansamadiyan/go-errors/internal/submit"
)

var (
	ErrQueueFull = submit.ErrQueueFull
	ErrStopped   = errors.New("task pool has been stopped")
)
