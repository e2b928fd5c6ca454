package session

import (
	"context"
	"log/slog"

	"github.com/aretw0/letluck/internal/engine"
	"github.com/aretw0/letluck/internal/guard"
	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/internal/reveal"
	"github.com/aretw0/letluck/internal/transition"
	"github.com/aretw0/letluck/pkg/clock"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/random"
	"github.com/aretw0/letluck/pkg/recency"
)

// Decision is the outcome of Decide or Replay.
type Decision struct {
	Winner domain.Item             `json:"winner"`
	State  *domain.NavigationState `json:"state"`
}

// Session owns one NavigationState.
//
// Exported methods submit their work to the session clock and wait for it, so
// they are safe from any goroutine except the clock's own (renderer callbacks).
type Session struct {
	id            string
	tree          ports.TreeLoader
	history       *recency.Store
	clock         Clock
	ownsClock     *clock.Loop
	rnd           ports.Random
	renderer      ports.Renderer
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	layout        engine.Layout
	reducedMotion bool
	revealTiming  *reveal.Timing
	commitHook    CommitFunc

	engine     *engine.Engine
	guards     guard.Guards
	reveal     *reveal.Controller
	transition *transition.Sequencer

	state *domain.NavigationState
	view  domain.View
}

// New creates a Session over a tree and a recency history.
func New(tree ports.TreeLoader, history *recency.Store, opts ...Option) *Session {
	s := &Session{
		id:       "default",
		tree:     tree,
		history:  history,
		renderer: nopRenderer{},
		logger:   logging.NewNop(),
		layout:   engine.LayoutDesktop,
		state:    domain.NewNavigationState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.ownsClock = clock.NewLoop(clock.WithLogger(s.logger))
		s.clock = s.ownsClock
	}
	if s.rnd == nil {
		s.rnd = random.NewSecure()
	}
	s.logger = s.logger.With("session_id", s.id)

	s.engine = engine.New(tree, history, s.rnd,
		engine.WithLogger(s.logger),
		engine.WithHooks(s.stampDecide()),
		engine.WithNow(s.clock.Now),
	)

	revealOpts := []reveal.Option{
		reveal.WithLogger(s.logger),
		reveal.WithHooks(s.hooks),
		reveal.WithSessionID(s.id),
	}
	if s.revealTiming != nil {
		revealOpts = append(revealOpts, reveal.WithTiming(*s.revealTiming))
	}
	s.reveal = reveal.New(s.clock, s.rnd, s.renderer, &s.guards.Reveal, revealOpts...)

	transitionOpts := []transition.Option{
		transition.WithReducedMotion(s.reducedMotion),
		transition.WithLogger(s.logger),
		transition.WithHooks(s.hooks),
		transition.WithSessionID(s.id),
	}
	if o, ok := s.renderer.(ports.TransitionObserver); ok {
		transitionOpts = append(transitionOpts, transition.WithObserver(o))
	}
	s.transition = transition.New(s.clock, s.rnd, &s.guards.Transition, transitionOpts...)
	return s
}

// stampDecide adds the session id to decision events.
func (s *Session) stampDecide() domain.LifecycleHooks {
	if s.hooks.OnDecide == nil {
		return domain.LifecycleHooks{}
	}
	return domain.LifecycleHooks{OnDecide: func(ctx context.Context, e *domain.DecisionEvent) {
		e.SessionID = s.id
		s.hooks.OnDecide(ctx, e)
	}}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Revealing reports whether a reveal is running.
func (s *Session) Revealing() bool {
	return s.guards.Reveal.Held()
}

// Transitioning reports whether a grid transition is running.
func (s *Session) Transitioning() bool {
	return s.guards.Transition.Held()
}

// Close stops the clock owned by the session, if any.
func (s *Session) Close() error {
	if s.ownsClock != nil {
		return s.ownsClock.Close()
	}
	return nil
}

// do runs fn on the session clock and returns its error.
func (s *Session) do(ctx context.Context, fn func() error) error {
	var err error
	if derr := s.clock.Do(ctx, func() { err = fn() }); derr != nil {
		return derr
	}
	return err
}

// State returns a snapshot of the navigation state.
func (s *Session) State(ctx context.Context) (*domain.NavigationState, error) {
	var out *domain.NavigationState
	err := s.do(ctx, func() error {
		out = s.state.Clone()
		return nil
	})
	return out, err
}

// View returns the view last handed to the renderer.
func (s *Session) View(ctx context.Context) (domain.View, error) {
	var out domain.View
	err := s.do(ctx, func() error {
		out = s.view
		return nil
	})
	return out, err
}

// Render re-renders the current state without a transition.
func (s *Session) Render(ctx context.Context) error {
	return s.do(ctx, func() error {
		s.render()
		return nil
	})
}

// Refresh re-reads the tree after a reload. A position that no longer exists
// sends the session home. Nothing happens while a reveal runs.
func (s *Session) Refresh(ctx context.Context) error {
	return s.do(ctx, func() error {
		if s.guards.Reveal.Held() {
			return ErrRevealInProgress
		}
		if !s.positionExists() {
			s.logger.Info("Position vanished after reload, going home", "node_id", s.state.NodeID)
			s.state.Reset()
			s.commit(ctx)
		}
		s.render()
		return nil
	})
}

func (s *Session) positionExists() bool {
	if s.state.AtHome() {
		return true
	}
	for _, c := range s.state.Path {
		if _, ok := s.tree.GetNode(s.state.CategoryID, c.NodeID); !ok {
			return false
		}
	}
	return true
}

// SelectCategory enters a category at its root.
func (s *Session) SelectCategory(ctx context.Context, categoryID string) error {
	return s.do(ctx, func() error { return s.selectCategory(ctx, categoryID) })
}

// Open descends into a child of the current branch.
func (s *Session) Open(ctx context.Context, childID string) error {
	return s.do(ctx, func() error { return s.open(ctx, childID) })
}

// Back goes up one level, or home from the category root.
func (s *Session) Back(ctx context.Context) error {
	return s.do(ctx, func() error { return s.back(ctx) })
}

// Home resets the session to the category list.
func (s *Session) Home(ctx context.Context) error {
	return s.do(ctx, func() error { return s.home(ctx) })
}

// JumpTo cuts the path after the crumb at index.
func (s *Session) JumpTo(ctx context.Context, index int) error {
	return s.do(ctx, func() error { return s.jumpTo(ctx, index) })
}

// Decide picks an outcome from the current position and starts the reveal.
// The winner is returned at once; it becomes the committed result when the reveal ends.
func (s *Session) Decide(ctx context.Context) (Decision, error) {
	var d Decision
	err := s.do(ctx, func() error {
		var err error
		d, err = s.decide(ctx, false)
		return err
	})
	return d, err
}

// Replay decides again at the current leaf.
func (s *Session) Replay(ctx context.Context) (Decision, error) {
	var d Decision
	err := s.do(ctx, func() error {
		var err error
		d, err = s.decide(ctx, true)
		return err
	})
	return d, err
}

// Pick commits a displayed item immediately, without a reveal.
func (s *Session) Pick(ctx context.Context, itemID string) (domain.Item, error) {
	var item domain.Item
	err := s.do(ctx, func() error {
		var err error
		item, err = s.pick(ctx, itemID)
		return err
	})
	return item, err
}

func (s *Session) commit(ctx context.Context) {
	if s.commitHook != nil {
		s.commitHook(ctx, s.state.Clone())
	}
}

func (s *Session) emitNavigate(ctx context.Context, action string) {
	if s.hooks.OnNavigate == nil {
		return
	}
	s.hooks.OnNavigate(ctx, &domain.NavigationEvent{
		EventBase:  domain.EventBase{Type: domain.EventNavigate, Timestamp: s.clock.Now(), SessionID: s.id},
		Action:     action,
		CategoryID: s.state.CategoryID,
		NodeID:     s.state.NodeID,
	})
}

// detach keeps hooks and commits running after the request that started a reveal returns.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

type nopRenderer struct{}

func (nopRenderer) Render(domain.View)  {}
func (nopRenderer) Highlight(string)    {}
func (nopRenderer) ClearHighlight()     {}
func (nopRenderer) Collapse(string)     {}

