package session

import (
	"context"

	"github.com/aretw0/letluck/internal/transition"
	"github.com/aretw0/letluck/pkg/domain"
)

// guardNavigation rejects navigation while a reveal or a transition owns the grid.
func (s *Session) guardNavigation() error {
	if s.guards.Reveal.Held() {
		return ErrRevealInProgress
	}
	if s.guards.Transition.Held() {
		return ErrTransitionInProgress
	}
	return nil
}

func (s *Session) selectCategory(ctx context.Context, categoryID string) error {
	if err := s.guardNavigation(); err != nil {
		return err
	}
	rootID := s.tree.RootID(categoryID)
	root, ok := s.tree.GetNode(categoryID, rootID)
	if !ok {
		return ErrUnknownNode
	}
	s.state.CategoryID = categoryID
	s.state.NodeID = rootID
	s.state.Path = []domain.Crumb{{NodeID: rootID, Label: root.Label}}
	s.state.ClearResults()
	s.navigated(ctx, "select_category")
	return nil
}

func (s *Session) open(ctx context.Context, childID string) error {
	if err := s.guardNavigation(); err != nil {
		return err
	}
	if s.state.AtHome() {
		return ErrNoCategory
	}
	current, ok := s.tree.GetNode(s.state.CategoryID, s.state.NodeID)
	if !ok || !current.HasChild(childID) {
		return ErrUnknownNode
	}
	child, ok := s.tree.GetNode(s.state.CategoryID, childID)
	if !ok {
		return ErrUnknownNode
	}
	s.state.Path = append(s.state.Path, domain.Crumb{NodeID: child.ID, Label: child.Label})
	s.state.NodeID = child.ID
	s.state.ClearResults()
	s.navigated(ctx, "open")
	return nil
}

func (s *Session) back(ctx context.Context) error {
	if err := s.guardNavigation(); err != nil {
		return err
	}
	if s.state.AtHome() {
		return ErrNoCategory
	}
	if len(s.state.Path) > 1 {
		s.state.Path = s.state.Path[:len(s.state.Path)-1]
		s.state.NodeID = s.state.Path[len(s.state.Path)-1].NodeID
		s.state.ClearResults()
	} else {
		s.state.Reset()
	}
	s.navigated(ctx, "back")
	return nil
}

func (s *Session) home(ctx context.Context) error {
	if err := s.guardNavigation(); err != nil {
		return err
	}
	s.state.Reset()
	s.navigated(ctx, "home")
	return nil
}

func (s *Session) jumpTo(ctx context.Context, index int) error {
	if err := s.guardNavigation(); err != nil {
		return err
	}
	if s.state.AtHome() {
		return ErrNoCategory
	}
	if index < 0 || index >= len(s.state.Path) {
		return ErrUnknownNode
	}
	s.state.Path = s.state.Path[:index+1]
	s.state.NodeID = s.state.Path[index].NodeID
	s.state.ClearResults()
	s.navigated(ctx, "jump")
	return nil
}

// navigated persists the new state and animates the grid toward it.
func (s *Session) navigated(ctx context.Context, action string) {
	s.commit(ctx)
	s.emitNavigate(ctx, action)
	s.transition.Start(detach(ctx), transition.Request{
		CurrentTiles: len(s.view.Tiles),
		Render: func() int {
			s.render()
			return len(s.view.Tiles)
		},
	})
}
