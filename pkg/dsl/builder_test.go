package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/tree"
)

func TestBuilder_SimpleTree(t *testing.T) {
	b := New()

	food := b.Category("food", "Food")
	food.Root().Children("italian", "mexican")
	food.Add("italian", "Italian").Children("pasta")
	food.Add("pasta", "Pasta").Items("Carbonara", "Pesto alla Genovese")
	food.Add("mexican", "Mexican").Item("tacos", "Tacos al pastor")

	b.Category("movies", "Movies").Root().Items("Alien")

	loader, err := b.Loader()
	require.NoError(t, err)
	assert.Empty(t, tree.Validate(loader))

	assert.Equal(t, []domain.Category{{ID: "food", Label: "Food"}, {ID: "movies", Label: "Movies"}}, loader.Categories())

	root, ok := loader.GetNode("food", "food_root")
	require.True(t, ok)
	assert.Equal(t, domain.KindBranch, root.Kind)
	assert.Equal(t, []string{"italian", "mexican"}, root.Children)

	pasta, ok := loader.GetNode("food", "pasta")
	require.True(t, ok)
	assert.Equal(t, domain.KindLeaf, pasta.Kind)
	assert.Equal(t, []domain.Item{
		{ID: "carbonara", Label: "Carbonara"},
		{ID: "pesto-alla-genovese", Label: "Pesto alla Genovese"},
	}, pasta.Pool)

	movies, ok := loader.GetNode("movies", "movies_root")
	require.True(t, ok)
	assert.Equal(t, domain.KindLeaf, movies.Kind)
}

func TestBuilder_ReusesBuilders(t *testing.T) {
	b := New()
	b.Category("food", "Food").Root().Children("a")
	b.Category("food", "ignored").Root().Children("b")
	b.Category("food", "").Add("a", "A").Items("x")
	b.Category("food", "").Add("b", "B").Items("y")

	tr, err := b.Build()
	require.NoError(t, err)
	require.Len(t, tr.Categories(), 1)
	assert.Equal(t, "Food", tr.Categories()[0].Label)

	root, ok := tr.GetNode("food", "food_root")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, root.Children)
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("ChildrenAndItems", func(t *testing.T) {
		b := New()
		b.Category("food", "Food").Root().Children("a").Items("x")
		_, err := b.Build()
		assert.ErrorContains(t, err, "both children and items")
	})

	t.Run("EmptyCategoryID", func(t *testing.T) {
		b := New()
		b.Category("", "Nothing")
		_, err := b.Build()
		assert.Error(t, err)
	})
}

func TestBuilder_DeadEndIsReportedByValidate(t *testing.T) {
	b := New()
	cat := b.Category("games", "Games")
	cat.Root().Children("board", "ghost")
	cat.Add("board", "Board games")

	loader, err := b.Loader()
	require.NoError(t, err)

	board, ok := loader.GetNode("games", "board")
	require.True(t, ok)
	assert.Equal(t, domain.KindDeadEnd, board.Kind)

	kinds := make([]tree.IssueKind, 0)
	for _, issue := range tree.Validate(loader) {
		kinds = append(kinds, issue.Kind)
	}
	assert.ElementsMatch(t, []tree.IssueKind{tree.IssueDeadEnd, tree.IssueDanglingChild}, kinds)
}
