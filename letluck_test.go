package letluck_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/letluck"
	"github.com/aretw0/letluck/internal/content"
	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/clock"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/session"
	"github.com/aretw0/letluck/pkg/tree"
)

func memoryConfig() letluck.Config {
	cfg := letluck.DefaultConfig()
	cfg.Store.Backend = "memory"
	return cfg
}

func newManualApp(t *testing.T, opts ...letluck.Option) (*letluck.App, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Unix(0, 0))
	opts = append(opts, letluck.WithSessionOptions(
		session.WithClock(clk),
		session.WithReducedMotion(true),
	))
	app, err := letluck.New(memoryConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, clk
}

func TestApp_DecideFromSampleTree(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	app, clk := newManualApp(t, letluck.WithRegistry(reg))

	s, err := app.Open(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, s.SelectCategory(ctx, "food"))
	clk.RunAll(time.Minute)

	decision, err := s.Decide(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, decision.Winner.ID)
	clk.RunAll(time.Minute)

	state, err := s.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.LastResult)
	assert.Equal(t, decision.Winner.ID, state.LastResult.ID)
	assert.Nil(t, state.PendingResult)

	leaf := state.NodeID
	assert.Equal(t, []string{decision.Winner.ID}, app.Recency().Get(ctx, leaf))

	stored, err := app.Manager().Load(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored.LastResult)
	assert.Equal(t, decision.Winner.ID, stored.LastResult.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics().Decisions.WithLabelValues("food", "1", "true")))
}

func TestApp_EncryptedStore(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	cfg := memoryConfig()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 32))

	open := func() *letluck.App {
		app, err := letluck.New(cfg,
			letluck.WithStore(underlying),
			letluck.WithSessionOptions(session.WithReducedMotion(true)),
		)
		require.NoError(t, err)
		return app
	}

	app := open()
	s, err := app.Open(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.SelectCategory(ctx, "food"))
	require.Eventually(t, func() bool {
		raw, err := underlying.Load(ctx, "alice")
		return err == nil && len(raw.Sealed) > 0 && raw.CategoryID == ""
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		st, err := app.Manager().Load(ctx, "alice")
		return err == nil && st.CategoryID == "food"
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, app.Close())

	again := open()
	defer again.Close()
	resumed, err := again.Open(ctx, "alice")
	require.NoError(t, err)
	state, err := resumed.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "food", state.CategoryID)
}

func TestApp_InvalidConfig(t *testing.T) {
	cfg := letluck.DefaultConfig()
	cfg.Store.Backend = "etcd"
	_, err := letluck.New(cfg)
	require.Error(t, err)
}

func TestApp_TreeFromFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/tree.yaml"
	require.NoError(t, os.WriteFile(path, content.Sample(), 0o644))

	cfg := memoryConfig()
	cfg.Tree = path
	app, err := letluck.New(cfg)
	require.NoError(t, err)
	defer app.Close()

	ids := make([]string, 0)
	for _, c := range app.Loader().Categories() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"food", "movies", "activities"}, ids)
}

func TestApp_WatchRefreshesLiveSessions(t *testing.T) {
	sample, err := content.SampleTree()
	require.NoError(t, err)
	loader := memory.NewLoader(sample)

	app, err := letluck.New(memoryConfig(),
		letluck.WithLoader(loader),
		letluck.WithSessionOptions(session.WithReducedMotion(true)),
	)
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := app.Open(ctx, "bob")
	require.NoError(t, err)
	require.NoError(t, s.SelectCategory(ctx, "food"))

	done := make(chan error, 1)
	go func() { done <- app.Watch(ctx) }()

	replacement := tree.New().MustAddCategory(domain.Category{ID: "games", Label: "Games"},
		domain.NewLeaf("games_root", "Games", domain.Item{ID: "chess", Label: "Chess"}),
	)
	require.Eventually(t, func() bool {
		loader.Swap(replacement)
		state, err := s.State(ctx)
		return err == nil && state.AtHome()
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestRunner_Commands(t *testing.T) {
	ctx := context.Background()
	app, clk := newManualApp(t)

	s, err := app.Open(ctx, "runner")
	require.NoError(t, err)

	var out bytes.Buffer
	r := &letluck.Runner{
		Input:  strings.NewReader("1\nwat\n99\nd\nr\nb\nq\nd\n"),
		Output: &out,
		Settle: func(context.Context, *session.Session) { clk.RunAll(time.Minute) },
	}
	require.NoError(t, r.Run(ctx, s))

	text := out.String()
	assert.Contains(t, text, `error: unknown command "wat"`)
	assert.Contains(t, text, "error: no such tile")
	assert.True(t, strings.HasSuffix(text, "Bye!\n"))

	state, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "food", state.CategoryID)
	assert.Nil(t, state.LastResult, "back clears the result")
}

func TestRunner_PicksItemTile(t *testing.T) {
	ctx := context.Background()
	loader, err := memory.NewFromNodes(domain.Category{ID: "dice", Label: "Dice"},
		domain.NewLeaf("dice_root", "Dice",
			domain.Item{ID: "one", Label: "One"},
			domain.Item{ID: "two", Label: "Two"},
		),
	)
	require.NoError(t, err)
	app, clk := newManualApp(t, letluck.WithLoader(loader))

	s, err := app.Open(ctx, "pick")
	require.NoError(t, err)

	var out bytes.Buffer
	r := &letluck.Runner{
		Input:  strings.NewReader("1\np two\n"),
		Output: &out,
		Settle: func(context.Context, *session.Session) { clk.RunAll(time.Minute) },
	}
	require.NoError(t, r.Run(ctx, s))

	state, err := s.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.LastResult)
	assert.Equal(t, "two", state.LastResult.ID)
}
