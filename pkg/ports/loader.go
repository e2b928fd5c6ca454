package ports

import (
	"context"

	"github.com/aretw0/letluck/pkg/domain"
)

// TreeLoader is the read-only view over the category tree.
type TreeLoader interface {
	// Categories returns the categories in their declared order.
	Categories() []domain.Category

	// GetNode looks a node up inside a category.
	GetNode(categoryID, nodeID string) (domain.Node, bool)

	// RootID returns the root node id of a category.
	RootID(categoryID string) string
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload in dev mode.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying tree changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
