package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNavigate     EventType = "navigate"
	EventDecide       EventType = "decide"
	EventRevealStart  EventType = "reveal_start"
	EventRevealTick   EventType = "reveal_tick"
	EventRevealDone   EventType = "reveal_done"
	EventRevealAbort  EventType = "reveal_abort"
	EventTransition   EventType = "transition"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// NavigationEvent is emitted when a session moves through the tree.
type NavigationEvent struct {
	EventBase
	Action     string `json:"action"`
	CategoryID string `json:"category_id,omitempty"`
	NodeID     string `json:"node_id,omitempty"`
}

// DecisionEvent is emitted once per decision attempt.
type DecisionEvent struct {
	EventBase
	CategoryID string `json:"category_id,omitempty"`
	LeafID     string `json:"leaf_id,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	// Tier is the anti-repeat relaxation level that produced the candidate set (1..4).
	Tier    int  `json:"tier,omitempty"`
	Outcome bool `json:"outcome"`
}

// RevealEvent describes a step of a reveal run.
type RevealEvent struct {
	EventBase
	WinnerID    string        `json:"winner_id"`
	Phase       string        `json:"phase,omitempty"`
	HighlightID string        `json:"highlight_id,omitempty"`
	Elapsed     time.Duration `json:"elapsed,omitempty"`
	Forced      bool          `json:"forced,omitempty"`
}

// TransitionEvent describes a grid transition phase change.
type TransitionEvent struct {
	EventBase
	Phase string `json:"phase"`
	Style string `json:"style,omitempty"`
}

// LifecycleHooks defines callbacks for observability.
// Every field is optional.
type LifecycleHooks struct {
	OnNavigate    func(context.Context, *NavigationEvent)
	OnDecide      func(context.Context, *DecisionEvent)
	OnRevealStart func(context.Context, *RevealEvent)
	OnRevealTick  func(context.Context, *RevealEvent)
	OnRevealDone  func(context.Context, *RevealEvent)
	OnRevealAbort func(context.Context, *RevealEvent)
	OnTransition  func(context.Context, *TransitionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNavigate:    chain(h.OnNavigate, other.OnNavigate),
		OnDecide:      chain(h.OnDecide, other.OnDecide),
		OnRevealStart: chain(h.OnRevealStart, other.OnRevealStart),
		OnRevealTick:  chain(h.OnRevealTick, other.OnRevealTick),
		OnRevealDone:  chain(h.OnRevealDone, other.OnRevealDone),
		OnRevealAbort: chain(h.OnRevealAbort, other.OnRevealAbort),
		OnTransition:  chain(h.OnTransition, other.OnTransition),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
