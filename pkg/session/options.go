package session

import (
	"context"
	"log/slog"

	"github.com/aretw0/letluck/internal/engine"
	"github.com/aretw0/letluck/internal/reveal"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// Clock is the execution lane of a session: a scheduler whose callbacks and
// submitted functions run one at a time.
type Clock interface {
	ports.Scheduler
	ports.Executor
}

// CommitFunc receives a snapshot after every accepted mutation.
type CommitFunc func(ctx context.Context, state *domain.NavigationState)

// Option configures a Session.
type Option func(*Session)

// WithID names the session. It defaults to "default".
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithClock sets the execution lane. Without it the session owns a clock.Loop.
func WithClock(c Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithRandom sets the random source. It defaults to random.NewSecure().
func WithRandom(rnd ports.Random) Option {
	return func(s *Session) {
		s.rnd = rnd
	}
}

// WithRenderer sets the rendering collaborator.
func WithRenderer(r ports.Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithLogger configures a logger for the session and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithLayout selects the leaf preview size.
func WithLayout(l engine.Layout) Option {
	return func(s *Session) {
		s.layout = l
	}
}

// WithReducedMotion skips grid transition phases.
func WithReducedMotion(reduced bool) Option {
	return func(s *Session) {
		s.reducedMotion = reduced
	}
}

// WithRevealTiming overrides the reveal durations.
func WithRevealTiming(t reveal.Timing) Option {
	return func(s *Session) {
		s.revealTiming = &t
	}
}

// WithState seeds the session with a stored snapshot.
func WithState(state *domain.NavigationState) Option {
	return func(s *Session) {
		if state != nil {
			s.state = state.Clone()
		}
	}
}

// WithCommitHook registers a callback run after every accepted mutation.
func WithCommitHook(fn CommitFunc) Option {
	return func(s *Session) {
		s.commitHook = fn
	}
}
