package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/letluck/pkg/domain"
)

// LogHooks logs every lifecycle event. Reveal ticks and transitions go to Debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNavigate: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.InfoContext(ctx, "navigate",
				"session_id", e.SessionID,
				"action", e.Action,
				"category", e.CategoryID,
				"node_id", e.NodeID,
			)
		},
		OnDecide: func(ctx context.Context, e *domain.DecisionEvent) {
			if !e.Outcome {
				logger.WarnContext(ctx, "decide_no_outcome",
					"session_id", e.SessionID,
					"category", e.CategoryID,
					"leaf_id", e.LeafID,
				)
				return
			}
			logger.InfoContext(ctx, "decide",
				"session_id", e.SessionID,
				"category", e.CategoryID,
				"leaf_id", e.LeafID,
				"item_id", e.ItemID,
				"tier", e.Tier,
			)
		},
		OnRevealStart: func(ctx context.Context, e *domain.RevealEvent) {
			logger.DebugContext(ctx, "reveal_start", "session_id", e.SessionID, "winner_id", e.WinnerID)
		},
		OnRevealTick: func(ctx context.Context, e *domain.RevealEvent) {
			logger.DebugContext(ctx, "reveal_tick",
				"session_id", e.SessionID,
				"phase", e.Phase,
				"highlight_id", e.HighlightID,
				"elapsed", e.Elapsed,
			)
		},
		OnRevealDone: func(ctx context.Context, e *domain.RevealEvent) {
			logger.InfoContext(ctx, "reveal_done",
				"session_id", e.SessionID,
				"winner_id", e.WinnerID,
				"elapsed", e.Elapsed,
				"forced", e.Forced,
			)
		},
		OnRevealAbort: func(ctx context.Context, e *domain.RevealEvent) {
			logger.WarnContext(ctx, "reveal_abort", "session_id", e.SessionID, "winner_id", e.WinnerID)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition", "session_id", e.SessionID, "phase", e.Phase, "style", e.Style)
		},
	}
}
