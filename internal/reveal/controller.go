/*
Package reveal drives the roulette animation that lands on a precomputed winner.

A reveal is a state machine advanced by scheduler callbacks:

	Idle -> Phase1 -> Phase2 -> Landing -> Holding -> Idle

Each tick moves the highlight to another displayed candidate and schedules the
next tick with a delay that grows with the phase. The last two ticks before
completion always highlight the winner. At completion the winner stays lit for
Hold, the display is cleared and the caller's OnDone runs exactly once.
*/
package reveal

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/letluck/internal/guard"
	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// State is the phase of the controller.
type State int32

const (
	Idle State = iota
	Phase1
	Phase2
	Landing
	Holding
)

func (s State) String() string {
	switch s {
	case Phase1:
		return "phase1"
	case Phase2:
		return "phase2"
	case Landing:
		return "landing"
	case Holding:
		return "holding"
	default:
		return "idle"
	}
}

// Display receives highlight notifications. Highlight moves the single highlight to id.
type Display interface {
	Highlight(id string)
	ClearHighlight()
}

// Request describes one reveal.
type Request struct {
	WinnerID string
	// Candidates are the displayed ids in display order.
	Candidates []string
	// Refresh re-renders the candidates once when the winner is not displayed.
	// It may be nil.
	Refresh func() []string
	// OnDone runs exactly once. aborted is true when the winner could not be shown.
	OnDone func(aborted bool)
}

// Controller runs at most one reveal at a time, guarded by a latch.
type Controller struct {
	sched     ports.Scheduler
	rnd       ports.Random
	display   Display
	latch     *guard.Latch
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	sessionID string
	timing    Timing
	state     atomic.Int32
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHooks registers reveal lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithTiming overrides the default durations.
func WithTiming(t Timing) Option {
	return func(c *Controller) {
		c.timing = t
	}
}

// WithSessionID stamps emitted events.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

// New creates a Controller. The latch is shared with the owner so it can reject
// navigation while a reveal runs.
func New(sched ports.Scheduler, rnd ports.Random, display Display, latch *guard.Latch, opts ...Option) *Controller {
	c := &Controller{
		sched:   sched,
		rnd:     rnd,
		display: display,
		latch:   latch,
		logger:  logging.NewNop(),
		timing:  DefaultTiming(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current phase.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Running reports whether a reveal holds the latch.
func (c *Controller) Running() bool {
	return c.latch.Held()
}

// Run starts a reveal. It returns false, without side effects, when one is
// already running. Must be called on the scheduler's execution lane.
func (c *Controller) Run(ctx context.Context, req Request) bool {
	if !c.latch.TryAcquire() {
		c.logger.Debug("Reveal already running, request dropped", "winner_id", req.WinnerID)
		return false
	}

	winner := indexOf(req.Candidates, req.WinnerID)
	if winner < 0 && req.Refresh != nil {
		c.logger.Warn("Winner not displayed, refreshing candidates", "winner_id", req.WinnerID)
		req.Candidates = req.Refresh()
		winner = indexOf(req.Candidates, req.WinnerID)
	}

	r := &run{
		c:          c,
		ctx:        ctx,
		req:        req,
		candidates: append([]string(nil), req.Candidates...),
		winner:     winner,
		start:      c.sched.Now(),
	}
	if winner < 0 {
		r.abort()
		return true
	}
	r.begin()
	return true
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}

func (c *Controller) emit(ctx context.Context, fn func(context.Context, *domain.RevealEvent), ev *domain.RevealEvent) {
	if fn == nil {
		return
	}
	ev.Timestamp = c.sched.Now()
	ev.SessionID = c.sessionID
	fn(ctx, ev)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// run is the state of one reveal. It is only touched on the execution lane.
type run struct {
	c          *Controller
	ctx        context.Context
	req        Request
	candidates []string
	winner     int
	current    int
	start      time.Time

	landing      []int
	landingTicks int
	// lookahead is the delay already drawn for the next tick.
	lookahead time.Duration

	tick      ports.Timer
	safety    ports.Timer
	completed bool
	finished  bool
}

func (r *run) begin() {
	c := r.c
	c.setState(Phase1)
	c.emit(r.ctx, c.hooks.OnRevealStart, &domain.RevealEvent{
		EventBase: domain.EventBase{Type: domain.EventRevealStart},
		WinnerID:  r.req.WinnerID,
		Phase:     Phase1.String(),
	})

	c.display.ClearHighlight()
	r.current = c.rnd.Index(len(r.candidates))
	c.display.Highlight(r.candidates[r.current])

	r.safety = c.sched.AfterFunc(c.timing.Total+c.timing.SafetyMargin, func() {
		if !r.completed {
			c.logger.Warn("Reveal safety timer forced completion", "winner_id", r.req.WinnerID)
		}
		r.complete(true)
	})
	r.step()
}

func (r *run) elapsed() time.Duration {
	return r.c.sched.Now().Sub(r.start)
}

func (r *run) step() {
	if r.completed {
		return
	}
	c := r.c
	elapsed := r.elapsed()
	if elapsed >= c.timing.Total {
		r.complete(false)
		return
	}

	phase := r.phaseAt(elapsed)
	c.setState(phase)
	if phase == Landing && r.landing == nil {
		r.initLanding()
	}

	delay := r.lookahead
	if delay == 0 {
		delay = r.drawDelay(phase)
	}
	after := elapsed + delay
	r.lookahead = r.drawDelay(r.phaseAt(after))

	r.current = r.pickNext(phase, after)
	c.display.Highlight(r.candidates[r.current])

	c.emit(r.ctx, c.hooks.OnRevealTick, &domain.RevealEvent{
		EventBase:   domain.EventBase{Type: domain.EventRevealTick},
		WinnerID:    r.req.WinnerID,
		Phase:       phase.String(),
		HighlightID: r.candidates[r.current],
		Elapsed:     elapsed,
	})
	r.tick = c.sched.AfterFunc(delay, r.step)
}

func (r *run) phaseAt(elapsed time.Duration) State {
	return phaseFor(float64(elapsed) / float64(r.c.timing.Total))
}

func (r *run) drawDelay(phase State) time.Duration {
	dr := delays[phase]
	return time.Duration(r.c.rnd.InRange(dr.min, dr.max)) * time.Millisecond
}

// pickNext chooses the index highlighted by the current tick. after is the
// time of the next tick. The tick is one of the last two when the next tick
// or the one after it reaches the end, and then it selects the winner.
func (r *run) pickNext(phase State, after time.Duration) int {
	if after+r.lookahead >= r.c.timing.Total {
		return r.winner
	}
	if phase == Landing {
		r.landingTicks++
		return r.landing[r.c.rnd.Index(len(r.landing))]
	}
	return r.jump()
}

func (r *run) jump() int {
	n := len(r.candidates)
	cur := r.current
	rnd := r.c.rnd
	if n == 1 {
		return 0
	}
	if n < 6 {
		next := rnd.Index(n - 1)
		if next >= cur {
			next++
		}
		return next
	}
	for i := 0; i < stepAttempts; i++ {
		step := rnd.InRange(minStep, maxStep)
		if rnd.Index(2) == 1 {
			step = -step
		}
		next := ((cur+step)%n + n) % n
		if next != cur && next != (cur+1)%n && next != (cur-1+n)%n {
			return next
		}
	}
	return (cur + n/2) % n
}

func (r *run) initLanding() {
	r.landing = []int{r.winner}
	others := make([]int, 0, len(r.candidates)-1)
	for i := range r.candidates {
		if i != r.winner {
			others = append(others, i)
		}
	}
	for k := 0; k < landingExtras && len(others) > 0; k++ {
		pos := r.c.rnd.Index(len(others))
		r.landing = append(r.landing, others[pos])
		others = append(others[:pos], others[pos+1:]...)
	}
}

func (r *run) complete(forced bool) {
	if r.completed {
		return
	}
	r.completed = true
	c := r.c
	if r.tick != nil {
		r.tick.Stop()
	}
	if r.safety != nil {
		r.safety.Stop()
	}

	c.setState(Holding)
	c.display.Highlight(r.candidates[r.winner])
	c.logger.Debug("Reveal landed", "winner_id", r.req.WinnerID, "landing_ticks", r.landingTicks, "forced", forced)
	c.emit(r.ctx, c.hooks.OnRevealDone, &domain.RevealEvent{
		EventBase:   domain.EventBase{Type: domain.EventRevealDone},
		WinnerID:    r.req.WinnerID,
		Phase:       Holding.String(),
		HighlightID: r.req.WinnerID,
		Elapsed:     r.elapsed(),
		Forced:      forced,
	})
	c.sched.AfterFunc(c.timing.Hold, func() { r.finish(false) })
}

func (r *run) abort() {
	c := r.c
	c.logger.Error("Winner not among displayed candidates, skipping reveal", "winner_id", r.req.WinnerID)
	c.emit(r.ctx, c.hooks.OnRevealAbort, &domain.RevealEvent{
		EventBase: domain.EventBase{Type: domain.EventRevealAbort},
		WinnerID:  r.req.WinnerID,
	})
	r.finish(true)
}

func (r *run) finish(aborted bool) {
	if r.finished {
		return
	}
	r.finished = true
	c := r.c
	if !aborted {
		c.display.ClearHighlight()
	}
	c.setState(Idle)
	c.latch.Release()
	if r.req.OnDone != nil {
		r.req.OnDone(aborted)
	}
}
