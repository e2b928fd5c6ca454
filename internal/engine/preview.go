package engine

import (
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// Layout selects the preview size range.
type Layout string

const (
	LayoutDesktop Layout = "desktop"
	LayoutMobile  Layout = "mobile"
)

var displayCounts = map[Layout][]int{
	LayoutDesktop: {25, 30, 36},
	LayoutMobile:  {12, 15},
}

// DisplayCount picks how many preview tiles a leaf shows. Unknown layouts count as desktop.
func DisplayCount(rnd ports.Random, layout Layout) int {
	options, ok := displayCounts[layout]
	if !ok {
		options = displayCounts[LayoutDesktop]
	}
	return options[rnd.Index(len(options))]
}

// Preview samples the tiles shown for a leaf pool.
//
// The pending result is always included and never placed first, so a reveal
// does not start on it. Without a pending result the last result, if present,
// is shown first. The rest is a uniform sample of distinct items.
func Preview(rnd ports.Random, pool []domain.Item, count int, pending, last *domain.Item) []domain.Item {
	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return []domain.Item{}
	}

	indices := make([]int, len(pool))
	for i := range indices {
		indices[i] = i
	}
	chosen := make([]int, 0, count)
	take := func(pos int) {
		chosen = append(chosen, indices[pos])
		indices[pos] = indices[len(indices)-1]
		indices = indices[:len(indices)-1]
	}

	anchor := last
	if pending != nil {
		anchor = pending
	}
	anchorIdx := -1
	if anchor != nil {
		for pos, idx := range indices {
			if pool[idx].ID == anchor.ID {
				anchorIdx = idx
				take(pos)
				break
			}
		}
	}
	for len(chosen) < count {
		take(rnd.Index(len(indices)))
	}

	for i := len(chosen) - 1; i > 0; i-- {
		j := rnd.Index(i + 1)
		chosen[i], chosen[j] = chosen[j], chosen[i]
	}

	if anchorIdx >= 0 && len(chosen) > 1 {
		if pending != nil {
			if chosen[0] == anchorIdx {
				swap := rnd.Index(len(chosen)-1) + 1
				chosen[0], chosen[swap] = chosen[swap], chosen[0]
			}
		} else {
			for pos, idx := range chosen {
				if idx == anchorIdx {
					copy(chosen[1:pos+1], chosen[:pos])
					chosen[0] = anchorIdx
					break
				}
			}
		}
	}

	out := make([]domain.Item, len(chosen))
	for i, idx := range chosen {
		out[i] = pool[idx]
	}
	return out
}
