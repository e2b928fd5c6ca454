package tests

import (
	"testing"

	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TreeLoaderContractTest is a reusable test suite that verifies an adapter serves the same
// tree as want through ports.TreeLoader.
func TreeLoaderContractTest(t *testing.T, loader ports.TreeLoader, want *tree.Tree) {
	t.Helper()

	t.Run("Categories", func(t *testing.T) {
		assert.Equal(t, want.Categories(), loader.Categories())
	})

	t.Run("GetNode_Success", func(t *testing.T) {
		for _, c := range want.Categories() {
			for _, expected := range want.Nodes(c.ID) {
				got, ok := loader.GetNode(c.ID, expected.ID)
				require.True(t, ok, "node %s/%s missing", c.ID, expected.ID)
				assert.Equal(t, expected.Kind, got.Kind)
				assert.Equal(t, expected.Label, got.Label)
				assert.Equal(t, expected.Children, got.Children)
				assert.Equal(t, expected.Pool, got.Pool)
			}
		}
	})

	t.Run("GetNode_NotFound", func(t *testing.T) {
		_, ok := loader.GetNode("non-existent-category", "x")
		assert.False(t, ok)
		for _, c := range want.Categories() {
			_, ok := loader.GetNode(c.ID, "non-existent-node")
			assert.False(t, ok)
		}
	})

	t.Run("RootID", func(t *testing.T) {
		for _, c := range want.Categories() {
			assert.Equal(t, want.RootID(c.ID), loader.RootID(c.ID))
		}
	})
}
