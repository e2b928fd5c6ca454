package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/letluck/pkg/adapters/file"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileRecency_Contract(t *testing.T) {
	ports.RunRecencyBackendContract(t, file.NewRecency(filepath.Join(t.TempDir(), "nested", "recency.json")))
}

func TestFileStore_IgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", domain.NewNavigationState()))
	require.NoError(t, store.Save(ctx, "a", domain.NewNavigationState()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-c.json-123"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileStore_EmptyID(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	assert.Error(t, store.Save(ctx, "", domain.NewNavigationState()))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileRecency_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recency.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	_, err := file.NewRecency(path).Load(context.Background())
	assert.Error(t, err)
}
