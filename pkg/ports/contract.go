package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	sample := func() *domain.NavigationState {
		return &domain.NavigationState{
			CategoryID: "food",
			NodeID:     "pasta",
			Path: []domain.Crumb{
				{NodeID: "food_root", Label: "Food"},
				{NodeID: "pasta", Label: "Pasta"},
			},
			LastResult: &domain.Item{ID: "carbonara", Label: "Carbonara"},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		state := sample()
		require.NoError(t, store.Save(ctx, sessionID, state), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.CategoryID, loaded.CategoryID)
		assert.Equal(t, state.NodeID, loaded.NodeID)
		assert.Equal(t, state.Path, loaded.Path)
		require.NotNil(t, loaded.LastResult)
		assert.Equal(t, "carbonara", loaded.LastResult.ID)
		assert.Nil(t, loaded.PendingResult)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, sample()))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Path[0].Label = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Food", again.Path[0].Label)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewNavigationState()))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewNavigationState())
		_ = store.Save(ctx, id2, domain.NewNavigationState())
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunRecencyBackendContract verifies that a RecencyBackend round-trips the history map.
// The backend must start empty.
func RunRecencyBackendContract(t *testing.T, backend RecencyBackend) {
	ctx := context.Background()

	t.Run("Empty Load", func(t *testing.T) {
		history, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("Save and Load", func(t *testing.T) {
		in := map[string][]string{
			"pasta":  {"carbonara", "amatriciana"},
			"movies": {"alien"},
		}
		require.NoError(t, backend.Save(ctx, in))

		out, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("Save replaces", func(t *testing.T) {
		require.NoError(t, backend.Save(ctx, map[string][]string{"pasta": {"pesto"}}))

		out, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"pasta": {"pesto"}}, out)
	})
}
