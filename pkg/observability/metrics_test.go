package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNavigate(ctx, &domain.NavigationEvent{Action: "open"})
	hooks.OnNavigate(ctx, &domain.NavigationEvent{Action: "open"})
	hooks.OnDecide(ctx, &domain.DecisionEvent{CategoryID: "food", Tier: 1, Outcome: true})
	hooks.OnRevealStart(ctx, &domain.RevealEvent{})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveReveals))

	hooks.OnRevealTick(ctx, &domain.RevealEvent{})
	hooks.OnRevealDone(ctx, &domain.RevealEvent{Elapsed: 5200 * time.Millisecond})
	hooks.OnTransition(ctx, &domain.TransitionEvent{Phase: "exit", Style: "flip"})
	hooks.OnTransition(ctx, &domain.TransitionEvent{Phase: "done", Style: "flip"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Navigations.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("food", "1", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reveals.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RevealTicks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("flip")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveReveals))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RevealDuration))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.OnDecide(ctx, &domain.DecisionEvent{EventBase: domain.EventBase{SessionID: "s1"}, ItemID: "pesto", Outcome: true})
	hooks.OnDecide(ctx, &domain.DecisionEvent{LeafID: "empty"})
	hooks.OnRevealTick(ctx, &domain.RevealEvent{})

	out := buf.String()
	assert.Contains(t, out, `"msg":"decide"`)
	assert.Contains(t, out, `"item_id":"pesto"`)
	assert.Contains(t, out, `"msg":"decide_no_outcome"`)
	assert.NotContains(t, out, "reveal_tick")
}
