package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/letluck/pkg/adapters/file"
	contract "github.com/aretw0/letluck/pkg/ports/tests"
	"github.com/aretw0/letluck/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gamesYAML = `
categories:
  - id: games
    label: Games
    nodes:
      - id: games_root
        label: Games
        children: [board]
      - id: board
        label: Board
        pool: [Go, Chess]
`

const gamesJSON = `{"categories":[{"id":"games","label":"Games","nodes":[
  {"id":"games_root","label":"Games","children":["board"]},
  {"id":"board","label":"Board","pool":["Go","Chess","Backgammon"]}]}]}`

func writeTree(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileLoader_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	writeTree(t, path, gamesYAML)

	loader, err := file.NewLoader(path)
	require.NoError(t, err)

	want, err := tree.Parse([]byte(gamesYAML))
	require.NoError(t, err)
	contract.TreeLoaderContractTest(t, loader, want)
}

func TestFileLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := file.NewLoader(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	writeTree(t, bad, "categories: [")
	_, err = file.NewLoader(bad)
	assert.Error(t, err)
}

func TestFileLoader_ReloadKeepsTreeOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	writeTree(t, path, gamesYAML)
	loader, err := file.NewLoader(path)
	require.NoError(t, err)

	writeTree(t, path, "categories: [")
	assert.Error(t, loader.Reload())
	_, ok := loader.GetNode("games", "board")
	assert.True(t, ok)
}

func TestFileLoader_WatchReloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "tree.json")
	writeTree(t, path, gamesYAML)
	loader, err := file.NewLoader(path, file.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	writeTree(t, path, gamesJSON)
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("reload was not signalled")
	}
	board, ok := loader.GetNode("games", "board")
	require.True(t, ok)
	assert.Len(t, board.Pool, 3)
	assert.Equal(t, "backgammon", board.Pool[2].ID)
}
