package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/clock"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/recency"
	"github.com/aretw0/letluck/pkg/session"
	"github.com/aretw0/letluck/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(ids ...string) []domain.Item {
	out := make([]domain.Item, len(ids))
	for i, id := range ids {
		out[i] = domain.Item{ID: id, Label: id}
	}
	return out
}

func foodTree() *tree.Tree {
	return tree.New().
		MustAddCategory(domain.Category{ID: "food", Label: "Food"},
			domain.NewBranch("food_root", "Food", "italian", "asian"),
			domain.NewBranch("italian", "Italian", "pasta", "pizza"),
			domain.NewLeaf("pasta", "Pasta", items("carbonara", "pesto", "amatriciana")...),
			domain.NewLeaf("pizza", "Pizza", items("margherita", "diavola")...),
			domain.NewLeaf("asian", "Asian", items("ramen", "pho")...),
		).
		MustAddCategory(domain.Category{ID: "empty", Label: "Empty"},
			domain.NewBranch("empty_root", "Empty", "nothing"),
			domain.NewLeaf("nothing", "Nothing"),
		)
}

func foodLoader(t *testing.T) *memory.Loader {
	t.Helper()
	return memory.NewLoader(foodTree())
}

// recorder is a Renderer that keeps everything it is told.
type recorder struct {
	mu          sync.Mutex
	views       []domain.View
	highlights  []string
	collapsed   []string
	transitions []string
}

func (r *recorder) Render(v domain.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) Highlight(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlights = append(r.highlights, id)
}

func (r *recorder) ClearHighlight() {}

func (r *recorder) Collapse(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collapsed = append(r.collapsed, id)
}

func (r *recorder) Transition(phase, style string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, phase)
}

func (r *recorder) lastView() domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

type harness struct {
	s       *session.Session
	clk     *clock.Manual
	out     *recorder
	history *recency.Store
	commits []*domain.NavigationState
}

func newHarness(t *testing.T, opts ...session.Option) *harness {
	t.Helper()
	h := &harness{
		clk:     clock.NewManual(time.Unix(0, 0)),
		out:     &recorder{},
		history: recency.New(memory.NewRecency()),
	}
	base := []session.Option{
		session.WithClock(h.clk),
		session.WithRenderer(h.out),
		session.WithReducedMotion(true),
		session.WithCommitHook(func(_ context.Context, st *domain.NavigationState) {
			h.commits = append(h.commits, st)
		}),
	}
	h.s = session.New(foodLoader(t), h.history, append(base, opts...)...)
	return h
}

func (h *harness) state(t *testing.T) *domain.NavigationState {
	t.Helper()
	st, err := h.s.State(context.Background())
	require.NoError(t, err)
	return st
}

func crumbIDs(path []domain.Crumb) []string {
	out := make([]string, len(path))
	for i, c := range path {
		out[i] = c.NodeID
	}
	return out
}

func TestSession_HomeViewListsCategories(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Render(context.Background()))

	v := h.out.lastView()
	assert.Equal(t, "Let luck decide", v.Title)
	assert.Equal(t, []string{"food", "empty"}, v.TileIDs())
	assert.False(t, v.Controls.CanBack)
	assert.False(t, v.Controls.ShowHome)
	assert.Nil(t, v.Result)
}

func TestSession_Navigation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.s.SelectCategory(ctx, "food"))
	assert.Equal(t, []string{"italian", "asian"}, h.out.lastView().TileIDs())

	require.NoError(t, h.s.Open(ctx, "italian"))
	require.NoError(t, h.s.Open(ctx, "pizza"))
	st := h.state(t)
	assert.Equal(t, []string{"food_root", "italian", "pizza"}, crumbIDs(st.Path))
	assert.Equal(t, "Pizza", h.out.lastView().Title)
	assert.ElementsMatch(t, []string{"margherita", "diavola"}, h.out.lastView().TileIDs())

	require.NoError(t, h.s.JumpTo(ctx, 0))
	assert.Equal(t, "food_root", h.state(t).NodeID)

	require.NoError(t, h.s.Back(ctx))
	assert.True(t, h.state(t).AtHome())

	assert.ErrorIs(t, h.s.Back(ctx), session.ErrNoCategory)
	assert.ErrorIs(t, h.s.Open(ctx, "italian"), session.ErrNoCategory)
	assert.ErrorIs(t, h.s.SelectCategory(ctx, "nope"), session.ErrUnknownNode)

	require.NoError(t, h.s.SelectCategory(ctx, "food"))
	assert.ErrorIs(t, h.s.Open(ctx, "pizza"), session.ErrUnknownNode)
	assert.ErrorIs(t, h.s.JumpTo(ctx, 3), session.ErrUnknownNode)

	require.NoError(t, h.s.Home(ctx))
	assert.True(t, h.state(t).AtHome())
	for _, c := range h.commits {
		assert.NoError(t, c.Validate())
	}
}

func TestSession_DecideRevealsThenCommits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	d, err := h.s.Decide(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, d.Winner.ID)
	require.NotNil(t, d.State.PendingResult)
	assert.Equal(t, d.Winner.ID, d.State.PendingResult.ID)
	assert.Nil(t, d.State.LastResult)
	assert.True(t, h.s.Revealing())

	// The pending winner is not shown as a result before the reveal ends.
	assert.Nil(t, h.out.lastView().Result)
	assert.Contains(t, h.out.lastView().TileIDs(), d.Winner.ID)

	_, err = h.s.Decide(ctx)
	assert.ErrorIs(t, err, session.ErrRevealInProgress)
	assert.ErrorIs(t, h.s.Back(ctx), session.ErrRevealInProgress)

	h.clk.RunAll(time.Minute)
	assert.False(t, h.s.Revealing())

	st := h.state(t)
	assert.Nil(t, st.PendingResult)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, d.Winner.ID, st.LastResult.ID)

	v := h.out.lastView()
	require.NotNil(t, v.Result)
	assert.Equal(t, d.Winner.ID, v.Result.ItemID)
	assert.True(t, v.Controls.ShowReplay)
	assert.Equal(t, d.Winner.ID, v.TileIDs()[0])
	assert.Equal(t, []string{d.Winner.ID}, h.out.collapsed)
	assert.Equal(t, []string{d.Winner.ID}, h.history.Get(ctx, st.NodeID))

	last := h.commits[len(h.commits)-1]
	assert.Equal(t, d.Winner.ID, last.LastResult.ID)
}

func TestSession_DecideFromBranchKeepsPrefix(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.s.SelectCategory(ctx, "food"))
	require.NoError(t, h.s.Open(ctx, "italian"))

	d, err := h.s.Decide(ctx)
	require.NoError(t, err)
	path := crumbIDs(d.State.Path)
	require.Len(t, path, 3)
	assert.Equal(t, []string{"food_root", "italian"}, path[:2])
	assert.Contains(t, []string{"pasta", "pizza"}, path[2])
	h.clk.RunAll(time.Minute)
}

func TestSession_Replay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.s.SelectCategory(ctx, "food"))
	require.NoError(t, h.s.Open(ctx, "asian"))

	_, err := h.s.Replay(ctx)
	assert.ErrorIs(t, err, session.ErrNoResult)

	first, err := h.s.Decide(ctx)
	require.NoError(t, err)
	h.clk.RunAll(time.Minute)

	second, err := h.s.Replay(ctx)
	require.NoError(t, err)
	h.clk.RunAll(time.Minute)

	// Two items, so the anti-repeat rule forces the other one.
	assert.NotEqual(t, first.Winner.ID, second.Winner.ID)
	assert.Equal(t, "asian", h.state(t).NodeID)
}

func TestSession_DecideWithoutOutcome(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.s.SelectCategory(ctx, "empty"))

	d, err := h.s.Decide(ctx)
	assert.ErrorIs(t, err, session.ErrNoOutcome)
	assert.Equal(t, "nothing", d.State.NodeID)
	assert.False(t, h.s.Revealing())
	assert.Empty(t, h.out.lastView().Tiles)
}

func TestSession_Pick(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.s.SelectCategory(ctx, "food"))

	_, err := h.s.Pick(ctx, "ramen")
	assert.ErrorIs(t, err, session.ErrNotAtLeaf)

	require.NoError(t, h.s.Open(ctx, "asian"))
	_, err = h.s.Pick(ctx, "sushi")
	assert.ErrorIs(t, err, session.ErrUnknownNode)

	item, err := h.s.Pick(ctx, "ramen")
	require.NoError(t, err)
	assert.Equal(t, "ramen", item.ID)
	assert.Equal(t, "ramen", h.state(t).LastResult.ID)
	assert.Equal(t, []string{"ramen"}, h.history.Get(ctx, "asian"))
	assert.Equal(t, []string{"ramen"}, h.out.collapsed)
}

func TestSession_TransitionBlocksNavigation(t *testing.T) {
	h := newHarness(t, session.WithReducedMotion(false))
	ctx := context.Background()
	require.NoError(t, h.s.Render(ctx))

	require.NoError(t, h.s.SelectCategory(ctx, "food"))
	assert.True(t, h.s.Transitioning())

	err := h.s.Open(ctx, "italian")
	assert.ErrorIs(t, err, session.ErrTransitionInProgress)
	_, err = h.s.Decide(ctx)
	assert.ErrorIs(t, err, session.ErrTransitionInProgress)
	assert.Equal(t, "food_root", h.state(t).NodeID)

	h.clk.RunAll(time.Minute)
	assert.False(t, h.s.Transitioning())
	assert.Equal(t, []string{"italian", "asian"}, h.out.lastView().TileIDs())
	assert.Equal(t, []string{"exit", "gap", "enter", "done"}, h.out.transitions)

	require.NoError(t, h.s.Open(ctx, "italian"))
}

func TestSession_RefreshGoesHomeWhenPositionVanishes(t *testing.T) {
	loader := foodLoader(t)
	h := newHarness(t)
	h.s = session.New(loader, h.history,
		session.WithClock(h.clk),
		session.WithRenderer(h.out),
		session.WithReducedMotion(true),
	)
	ctx := context.Background()
	require.NoError(t, h.s.SelectCategory(ctx, "food"))
	require.NoError(t, h.s.Open(ctx, "italian"))

	loader.Swap(tree.New().MustAddCategory(domain.Category{ID: "food", Label: "Food"},
		domain.NewLeaf("food_root", "Food", items("soup")...),
	))
	require.NoError(t, h.s.Refresh(ctx))
	assert.True(t, h.state(t).AtHome())
	assert.Equal(t, []string{"food"}, h.out.lastView().TileIDs())
}

func TestSession_WithStateIsCopied(t *testing.T) {
	seed := &domain.NavigationState{
		CategoryID: "food",
		NodeID:     "asian",
		Path:       []domain.Crumb{{NodeID: "food_root", Label: "Food"}, {NodeID: "asian", Label: "Asian"}},
	}
	h := newHarness(t, session.WithState(seed))
	require.NoError(t, h.s.Back(context.Background()))

	assert.Equal(t, "asian", seed.NodeID)
	assert.Equal(t, "food_root", h.state(t).NodeID)
}

func TestSession_OwnClockLoop(t *testing.T) {
	s := session.New(foodLoader(t), recency.New(memory.NewRecency()), session.WithReducedMotion(true))
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.SelectCategory(ctx, "food"))
	require.NoError(t, s.Open(ctx, "asian"))
	item, err := s.Pick(ctx, "pho")
	require.NoError(t, err)
	assert.Equal(t, "pho", item.ID)

	require.NoError(t, s.Close())
	assert.Error(t, s.Home(ctx))
}
