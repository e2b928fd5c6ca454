package clock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/ports"
)

// ErrClosed is returned when work is submitted to a closed Loop.
var ErrClosed = errors.New("clock loop closed")

// Loop serializes submitted functions and timer callbacks on one goroutine.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLogger configures a logger for recovered panics.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithQueueSize sets the buffer of pending functions.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		l.queue = make(chan func(), n)
	}
}

// NewLoop starts a Loop. Call Close to stop its goroutine.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		queue:  make(chan func(), 64),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.exited)
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Recovered panic on clock loop", "panic", r)
		}
	}()
	fn()
}

// Post queues fn. It returns false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it. It must not be called from the loop itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) ports.Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

// Close stops the loop. Pending functions are discarded.
func (l *Loop) Close() error {
	l.once.Do(func() {
		close(l.done)
	})
	<-l.exited
	return nil
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

// Stop also cancels a callback that already fired but has not run on the loop yet.
func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.stopped.CompareAndSwap(false, true)
}

var (
	_ ports.Scheduler = (*Loop)(nil)
	_ ports.Executor  = (*Loop)(nil)
)
