// Package engine implements the decision core: random walks down a category tree
// and anti-repeat selection over leaf pools.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/recency"
)

// Engine composes the tree, the random source and the recency history.
type Engine struct {
	tree    ports.TreeLoader
	recency *recency.Store
	rnd     ports.Random
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	now     func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for data-integrity problems.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers lifecycle hooks. OnDecide fires on every decision attempt.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithNow sets the time source used to stamp events.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine.
func New(tree ports.TreeLoader, history *recency.Store, rnd ports.Random, opts ...Option) *Engine {
	e := &Engine{
		tree:    tree,
		recency: history,
		rnd:     rnd,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Walk is the outcome of WalkToLeaf.
// NodeID is empty when the start node does not exist.
type Walk struct {
	NodeID string
	Path   []domain.Crumb
}

// WalkToLeaf descends from startID choosing children uniformly until it reaches a
// leaf or a dead end. The start node is the first crumb of the path.
// A missing child or a revisited node ends the walk at the last valid node.
func (e *Engine) WalkToLeaf(categoryID, startID string) Walk {
	var w Walk
	seen := make(map[string]bool)
	id := startID
	for {
		node, ok := e.tree.GetNode(categoryID, id)
		if !ok {
			if len(w.Path) > 0 {
				e.logger.Warn("Walk reached a missing node", "category", categoryID, "node_id", id)
			}
			return w
		}
		if seen[id] {
			e.logger.Warn("Walk revisited a node, stopping", "category", categoryID, "node_id", id)
			return w
		}
		seen[id] = true
		w.NodeID = id
		w.Path = append(w.Path, domain.Crumb{NodeID: node.ID, Label: node.Label})

		if !node.IsBranch() {
			return w
		}
		id = node.Children[e.rnd.Index(len(node.Children))]
	}
}

// Decide picks an outcome for the state and moves the state to the leaf reached.
// The winner is installed as the pending result. The bool is false when no
// outcome exists (unknown category or node, dead end); the state is still moved
// to wherever the walk stopped.
func (e *Engine) Decide(ctx context.Context, state *domain.NavigationState) (domain.Item, bool) {
	if state.CategoryID == "" {
		categoryID, ok := e.randomCategory()
		if !ok {
			e.logger.Warn("No category with a root node to decide from")
			e.emitDecide(ctx, &domain.DecisionEvent{})
			return domain.Item{}, false
		}
		walk := e.WalkToLeaf(categoryID, e.tree.RootID(categoryID))
		state.CategoryID = categoryID
		state.NodeID = walk.NodeID
		state.Path = walk.Path
	} else {
		current, ok := e.tree.GetNode(state.CategoryID, state.NodeID)
		if !ok {
			e.logger.Warn("Decide from unknown node", "category", state.CategoryID, "node_id", state.NodeID)
			e.emitDecide(ctx, &domain.DecisionEvent{CategoryID: state.CategoryID})
			return domain.Item{}, false
		}
		if current.IsBranch() {
			walk := e.WalkToLeaf(state.CategoryID, current.ID)
			prefix := state.Path
			if n := len(prefix); n > 0 && prefix[n-1].NodeID == current.ID {
				prefix = prefix[:n-1]
			}
			state.Path = append(append([]domain.Crumb{}, prefix...), walk.Path...)
			state.NodeID = walk.NodeID
		}
	}

	leaf, ok := e.tree.GetNode(state.CategoryID, state.NodeID)
	if !ok || !leaf.IsLeaf() {
		e.logger.Warn("Decision stopped at a dead end", "category", state.CategoryID, "node_id", state.NodeID)
		e.emitDecide(ctx, &domain.DecisionEvent{CategoryID: state.CategoryID, LeafID: state.NodeID})
		return domain.Item{}, false
	}

	item, tier, ok := e.pick(ctx, leaf.ID, leaf.Pool)
	if !ok {
		return domain.Item{}, false
	}
	state.SetPending(item)
	e.emitDecide(ctx, &domain.DecisionEvent{
		CategoryID: state.CategoryID,
		LeafID:     leaf.ID,
		ItemID:     item.ID,
		Tier:       tier,
		Outcome:    true,
	})
	return item, true
}

// randomCategory chooses uniformly and falls back to the first declared category with a root.
func (e *Engine) randomCategory() (string, bool) {
	cats := e.tree.Categories()
	if len(cats) == 0 {
		return "", false
	}
	chosen := cats[e.rnd.Index(len(cats))].ID
	if _, ok := e.tree.GetNode(chosen, e.tree.RootID(chosen)); ok {
		return chosen, true
	}
	for _, c := range cats {
		if _, ok := e.tree.GetNode(c.ID, e.tree.RootID(c.ID)); ok {
			return c.ID, true
		}
	}
	return "", false
}

func (e *Engine) emitDecide(ctx context.Context, ev *domain.DecisionEvent) {
	if e.hooks.OnDecide == nil {
		return
	}
	ev.Type = domain.EventDecide
	ev.Timestamp = e.now()
	e.hooks.OnDecide(ctx, ev)
}
