package ports

import (
	"context"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler runs callbacks after a delay on the session execution lane.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Executor runs fn on the execution lane and waits for it to return.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// Random is the uniform integer source.
type Random interface {
	Index(max int) int
	InRange(min, max int) int
}
