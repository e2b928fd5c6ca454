// Package transition sequences the exit, gap and enter phases of a grid change.
package transition

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/letluck/internal/guard"
	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

const (
	exitDuration  = 650 * time.Millisecond
	enterDuration = 650 * time.Millisecond
	// MaxStaggerExit and MaxStaggerEnter spread slide-stagger tiles over this window.
	MaxStaggerExit  = 260 * time.Millisecond
	MaxStaggerEnter = 220 * time.Millisecond

	// ExitTotal, Gap and EnterTotal are the fixed phase lengths.
	ExitTotal  = exitDuration + MaxStaggerExit
	Gap        = 220 * time.Millisecond
	EnterTotal = enterDuration + MaxStaggerEnter

	styleAttempts = 3
)

// Phase names what the renderer should be animating.
type Phase string

const (
	PhaseExit  Phase = "exit"
	PhaseGap   Phase = "gap"
	PhaseEnter Phase = "enter"
	PhaseDone  Phase = "done"
)

// Style is the visual flavour of one transition.
type Style string

// Styles lists every transition style.
var Styles = []Style{
	"fade-scale",
	"slide-stagger",
	"flip",
	"zoom-blur",
	"drop",
	"swing",
	"skew-slide",
	"collapse",
}

// StaggerStep is the delay between consecutive tiles of a slide-stagger animation.
func StaggerStep(tiles int, exit bool) time.Duration {
	if tiles <= 1 {
		return 0
	}
	window := MaxStaggerEnter
	if exit {
		window = MaxStaggerExit
	}
	return window / time.Duration(tiles-1)
}

// Request describes one grid change.
type Request struct {
	// CurrentTiles is the number of tiles on screen before the change.
	CurrentTiles int
	// Render swaps the grid content and returns the number of new tiles.
	Render func() int
}

// Sequencer runs one transition at a time.
type Sequencer struct {
	sched     ports.Scheduler
	rnd       ports.Random
	latch     *guard.Latch
	observer  ports.TransitionObserver
	reduced   bool
	lastStyle Style
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	sessionID string
}

// Option configures the Sequencer.
type Option func(*Sequencer)

// WithReducedMotion renders changes immediately, without phases or latch.
func WithReducedMotion(reduced bool) Option {
	return func(s *Sequencer) {
		s.reduced = reduced
	}
}

// WithObserver forwards phase changes to the renderer.
func WithObserver(o ports.TransitionObserver) Option {
	return func(s *Sequencer) {
		s.observer = o
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// WithSessionID stamps emitted events.
func WithSessionID(id string) Option {
	return func(s *Sequencer) {
		s.sessionID = id
	}
}

// New creates a Sequencer guarded by latch.
func New(sched ports.Scheduler, rnd ports.Random, latch *guard.Latch, opts ...Option) *Sequencer {
	s := &Sequencer{
		sched:  sched,
		rnd:    rnd,
		latch:  latch,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a transition holds the latch.
func (s *Sequencer) Running() bool {
	return s.latch.Held()
}

// LastStyle returns the style of the latest transition.
func (s *Sequencer) LastStyle() Style {
	return s.lastStyle
}

// ReducedMotion reports whether phases are skipped.
func (s *Sequencer) ReducedMotion() bool {
	return s.reduced
}

// Start begins a transition. It returns false, doing nothing, when one is already running.
func (s *Sequencer) Start(ctx context.Context, req Request) bool {
	if s.latch.Held() {
		s.logger.Debug("Grid transition already running, request dropped")
		return false
	}
	if s.reduced {
		req.Render()
		return true
	}
	if !s.latch.TryAcquire() {
		return false
	}

	style := s.pickStyle()
	if req.CurrentTiles == 0 {
		s.enter(ctx, style, req.Render())
		return true
	}

	s.notify(ctx, PhaseExit, style)
	s.sched.AfterFunc(ExitTotal, func() {
		s.notify(ctx, PhaseGap, style)
		s.sched.AfterFunc(Gap, func() {
			s.enter(ctx, style, req.Render())
		})
	})
	return true
}

func (s *Sequencer) enter(ctx context.Context, style Style, tiles int) {
	if tiles == 0 {
		s.done(ctx, style)
		return
	}
	s.notify(ctx, PhaseEnter, style)
	s.sched.AfterFunc(EnterTotal, func() {
		s.done(ctx, style)
	})
}

func (s *Sequencer) done(ctx context.Context, style Style) {
	s.latch.Release()
	s.notify(ctx, PhaseDone, style)
}

// pickStyle avoids repeating the previous style, giving up after a few draws.
func (s *Sequencer) pickStyle() Style {
	style := Styles[s.rnd.Index(len(Styles))]
	for i := 1; i < styleAttempts && style == s.lastStyle; i++ {
		style = Styles[s.rnd.Index(len(Styles))]
	}
	s.lastStyle = style
	return style
}

func (s *Sequencer) notify(ctx context.Context, phase Phase, style Style) {
	if s.observer != nil {
		s.observer.Transition(string(phase), string(style))
	}
	if s.hooks.OnTransition != nil {
		s.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Type: domain.EventTransition, Timestamp: s.sched.Now(), SessionID: s.sessionID},
			Phase:     string(phase),
			Style:     string(style),
		})
	}
}
