package engine

import (
	"context"

	"github.com/aretw0/letluck/pkg/domain"
)

const (
	// Tier thresholds: relax when fewer than min(threshold, pool) candidates remain.
	relaxFirstBelow  = 8
	relaxSecondBelow = 6
	// Window sizes of the relaxed tiers.
	relaxedWindow = 10
	minimalWindow = 5
)

// PickWithAntiRepeat chooses an item of the pool while avoiding recent picks of
// the leaf, then records the pick. The bool is false for an empty pool.
func (e *Engine) PickWithAntiRepeat(ctx context.Context, leafID string, pool []domain.Item) (domain.Item, bool) {
	item, _, ok := e.pick(ctx, leafID, pool)
	return item, ok
}

func (e *Engine) pick(ctx context.Context, leafID string, pool []domain.Item) (domain.Item, int, bool) {
	if len(pool) == 0 {
		e.logger.Warn("Leaf has an empty pool", "leaf_id", leafID)
		return domain.Item{}, 0, false
	}
	history := e.recency.Get(ctx, leafID)
	candidates, tier := Candidates(pool, history)
	item := candidates[e.rnd.Index(len(candidates))]
	e.recency.Record(ctx, leafID, item.ID)
	return item, tier, true
}

// Candidates applies the tiered relaxation and returns the eligible items with
// the tier that produced them (1 = full history excluded, 4 = whole pool).
func Candidates(pool []domain.Item, history []string) ([]domain.Item, int) {
	p := len(pool)

	candidates := exclude(pool, history)
	tier := 1
	if len(candidates) < min(relaxFirstBelow, p) {
		candidates = exclude(pool, head(history, relaxedWindow))
		tier = 2
	}
	if len(candidates) < min(relaxSecondBelow, p) {
		candidates = exclude(pool, head(history, minimalWindow))
		tier = 3
	}
	if len(candidates) == 0 {
		candidates = pool
		tier = 4
	}
	return candidates, tier
}

func head(ids []string, n int) []string {
	if len(ids) <= n {
		return ids
	}
	return ids[:n]
}

func exclude(pool []domain.Item, ids []string) []domain.Item {
	if len(ids) == 0 {
		return pool
	}
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[id] = true
	}
	out := make([]domain.Item, 0, len(pool))
	for _, it := range pool {
		if !skip[it.ID] {
			out = append(out, it)
		}
	}
	return out
}
