package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/domain"
	contract "github.com/aretw0/letluck/pkg/ports/tests"
	"github.com/aretw0/letluck/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *tree.Tree {
	return tree.New().MustAddCategory(domain.Category{ID: "games", Label: "Games"},
		domain.NewBranch("games_root", "Games", "board"),
		domain.NewLeaf("board", "Board", domain.Item{ID: "go", Label: "Go"}, domain.Item{ID: "chess", Label: "Chess"}),
	)
}

func TestInMemoryLoader_Contract(t *testing.T) {
	want := sampleTree()
	contract.TreeLoaderContractTest(t, memory.NewLoader(want), want)
}

func TestInMemoryLoader_SwapNotifiesWatchers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := memory.NewLoader(nil)
	assert.Empty(t, loader.Categories())

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	loader.Swap(sampleTree())
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("watcher was not signalled")
	}
	_, ok := loader.GetNode("games", "board")
	assert.True(t, ok)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestNewFromNodes(t *testing.T) {
	loader, err := memory.NewFromNodes(domain.Category{ID: "x"}, domain.NewLeaf("x_root", "X", domain.Item{ID: "a"}))
	require.NoError(t, err)
	assert.Equal(t, "x_root", loader.RootID("x"))

	_, err = memory.NewFromNodes(domain.Category{})
	assert.Error(t, err)
}
