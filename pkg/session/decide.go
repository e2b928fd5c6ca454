package session

import (
	"context"

	"github.com/aretw0/letluck/internal/reveal"
	"github.com/aretw0/letluck/pkg/domain"
)

func (s *Session) decide(ctx context.Context, replay bool) (Decision, error) {
	if s.guards.Reveal.Held() {
		return Decision{}, ErrRevealInProgress
	}
	if s.guards.Transition.Held() {
		return Decision{}, ErrTransitionInProgress
	}
	if replay {
		if s.state.LastResult == nil {
			return Decision{}, ErrNoResult
		}
		node, ok := s.tree.GetNode(s.state.CategoryID, s.state.NodeID)
		if !ok || !node.IsLeaf() {
			return Decision{}, ErrNotAtLeaf
		}
		s.state.ClearResults()
	}

	item, ok := s.engine.Decide(ctx, s.state)
	s.commit(ctx)
	s.render()
	if !ok {
		return Decision{State: s.state.Clone()}, ErrNoOutcome
	}

	winner := item
	bg := detach(ctx)
	s.reveal.Run(bg, reveal.Request{
		WinnerID:   winner.ID,
		Candidates: s.view.TileIDs(),
		Refresh: func() []string {
			s.render()
			return s.view.TileIDs()
		},
		OnDone: func(bool) {
			s.finalize(bg, winner)
		},
	})
	return Decision{Winner: winner, State: s.state.Clone()}, nil
}

// finalize commits the winner once the reveal is over and collapses the grid onto it.
func (s *Session) finalize(ctx context.Context, winner domain.Item) {
	if s.state.PendingResult == nil || s.state.PendingResult.ID != winner.ID {
		s.logger.Warn("Pending result changed during reveal", "winner_id", winner.ID)
		return
	}
	s.state.Commit()
	s.commit(ctx)
	s.render()
	s.collapse(winner.ID)
}

func (s *Session) pick(ctx context.Context, itemID string) (domain.Item, error) {
	if s.guards.Reveal.Held() {
		return domain.Item{}, ErrRevealInProgress
	}
	if s.state.AtHome() {
		return domain.Item{}, ErrNoCategory
	}
	node, ok := s.tree.GetNode(s.state.CategoryID, s.state.NodeID)
	if !ok || !node.IsLeaf() {
		return domain.Item{}, ErrNotAtLeaf
	}
	idx := node.FindItem(itemID)
	if idx < 0 {
		return domain.Item{}, ErrUnknownNode
	}
	item := node.Pool[idx]

	s.history.Record(ctx, node.ID, item.ID)
	s.state.PendingResult = nil
	s.state.LastResult = &item
	s.commit(ctx)
	s.render()
	s.collapse(item.ID)
	return item, nil
}

func (s *Session) collapse(itemID string) {
	for _, t := range s.view.Tiles {
		if t.ID == itemID {
			s.renderer.Collapse(itemID)
			return
		}
	}
}
