package engine

import (
	"fmt"
	"testing"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigPool(n int) []domain.Item {
	out := make([]domain.Item, n)
	for i := range out {
		out[i] = domain.Item{ID: fmt.Sprintf("i%d", i), Label: fmt.Sprintf("Item %d", i)}
	}
	return out
}

func assertDistinct(t *testing.T, got []domain.Item) {
	t.Helper()
	seen := make(map[string]bool)
	for _, it := range got {
		assert.False(t, seen[it.ID], "duplicate %s", it.ID)
		seen[it.ID] = true
	}
}

func TestPreview_PendingIncludedNotFirst(t *testing.T) {
	rnd := random.NewSecure()
	pool := bigPool(40)
	pending := pool[17]

	for i := 0; i < 200; i++ {
		got := Preview(rnd, pool, 12, &pending, nil)
		require.Len(t, got, 12)
		assertDistinct(t, got)
		assert.Contains(t, got, pending)
		assert.NotEqual(t, pending.ID, got[0].ID)
	}
}

func TestPreview_LastFirstWithoutPending(t *testing.T) {
	rnd := random.NewSecure()
	pool := bigPool(30)
	last := pool[3]

	for i := 0; i < 100; i++ {
		got := Preview(rnd, pool, 25, nil, &last)
		require.Len(t, got, 25)
		assertDistinct(t, got)
		assert.Equal(t, last, got[0])
	}
}

func TestPreview_Clamps(t *testing.T) {
	rnd := random.NewSecure()
	pool := bigPool(4)

	got := Preview(rnd, pool, 36, nil, nil)
	assert.ElementsMatch(t, pool, got)
	assert.Empty(t, Preview(rnd, nil, 12, nil, nil))

	single := bigPool(1)
	got = Preview(rnd, single, 12, &single[0], nil)
	assert.Equal(t, single, got, "a lone pending item stays")
}

func TestPreview_UnknownAnchorIgnored(t *testing.T) {
	pool := bigPool(5)
	ghost := domain.Item{ID: "ghost"}
	got := Preview(random.NewSecure(), pool, 3, &ghost, nil)
	assert.Len(t, got, 3)
	assert.NotContains(t, got, ghost)
}

func TestDisplayCount(t *testing.T) {
	assert.Equal(t, 25, DisplayCount(random.NewSequence(0), LayoutDesktop))
	assert.Equal(t, 36, DisplayCount(random.NewSequence(2), LayoutDesktop))
	assert.Equal(t, 15, DisplayCount(random.NewSequence(1), LayoutMobile))
	assert.Equal(t, 30, DisplayCount(random.NewSequence(1), Layout("tv")))
}
