package ports

import (
	"context"

	"github.com/aretw0/letluck/pkg/domain"
)

// StateStore persists NavigationState snapshots so a session survives restarts.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.NavigationState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.NavigationState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}

// RecencyBackend is the durable home of the recency history.
// Implementations must tolerate absent storage by returning an empty map.
type RecencyBackend interface {
	Load(ctx context.Context) (map[string][]string, error)
	Save(ctx context.Context, history map[string][]string) error
}
