package session

import (
	"github.com/aretw0/letluck/internal/engine"
	"github.com/aretw0/letluck/pkg/domain"
)

const homeTitle = "Let luck decide"

// render rebuilds the view from the state and hands it to the renderer.
func (s *Session) render() {
	s.view = s.buildView()
	s.renderer.Render(s.view)
}

func (s *Session) buildView() domain.View {
	st := s.state
	v := domain.View{
		Title:       homeTitle,
		Breadcrumbs: append([]domain.Crumb{}, st.Path...),
		Tiles:       []domain.Tile{},
		Controls: domain.Controls{
			CanBack:   !st.AtHome(),
			ShowHome:  !st.AtHome(),
			CanDecide: !s.guards.Reveal.Held(),
		},
	}
	if st.LastResult != nil {
		v.Result = &domain.ResultCard{ItemID: st.LastResult.ID, Label: st.LastResult.Label}
	}

	if st.AtHome() {
		for _, c := range s.tree.Categories() {
			v.Tiles = append(v.Tiles, domain.Tile{Kind: domain.TileCategory, ID: c.ID, Label: c.Label})
		}
		return v
	}

	node, ok := s.tree.GetNode(st.CategoryID, st.NodeID)
	if !ok {
		return v
	}
	v.Title = node.Label

	switch {
	case node.IsLeaf():
		count := engine.DisplayCount(s.rnd, s.layout)
		for _, it := range engine.Preview(s.rnd, node.Pool, count, st.PendingResult, st.LastResult) {
			v.Tiles = append(v.Tiles, domain.Tile{Kind: domain.TileItem, ID: it.ID, Label: it.Label})
		}
		v.Controls.ShowReplay = st.LastResult != nil
	case node.IsBranch():
		for _, childID := range node.Children {
			child, ok := s.tree.GetNode(st.CategoryID, childID)
			if !ok {
				continue
			}
			v.Tiles = append(v.Tiles, domain.Tile{Kind: domain.TileNode, ID: child.ID, Label: child.Label})
		}
	}
	return v
}
