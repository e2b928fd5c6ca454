/*
Package recency keeps the per-leaf history of recently picked items.

Every mutation is written through to a ports.RecencyBackend before it returns,
so a crash loses at most the selection in flight. Backend failures never reach
the caller: the store logs them and behaves as if the history were empty.
*/
package recency

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/ports"
)

// DefaultLimit is the number of item ids kept per leaf.
const DefaultLimit = 20

// Store is the recency history of every leaf.
// Writes are serialized so sessions sharing a Store do not lose each other's picks.
type Store struct {
	mu      sync.Mutex
	backend ports.RecencyBackend
	limit   int
	logger  *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLimit overrides DefaultLimit.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger configures a logger for absorbed backend errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over the given backend.
func New(backend ports.RecencyBackend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		limit:   DefaultLimit,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the per-leaf capacity.
func (s *Store) Limit() int {
	return s.limit
}

func (s *Store) load(ctx context.Context) map[string][]string {
	history, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("Recency history unreadable, treating as empty", "err", err)
		return map[string][]string{}
	}
	if history == nil {
		return map[string][]string{}
	}
	return history
}

func (s *Store) save(ctx context.Context, history map[string][]string) {
	if err := s.backend.Save(ctx, history); err != nil {
		s.logger.Warn("Failed to persist recency history", "err", err)
	}
}

// Get returns the history of a leaf, most recent first. It never returns nil.
func (s *Store) Get(ctx context.Context, leafID string) []string {
	ids := s.load(ctx)[leafID]
	return append([]string{}, ids...)
}

// Record moves itemID to the front of the leaf history and persists it.
func (s *Store) Record(ctx context.Context, leafID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.load(ctx)
	history[leafID] = push(history[leafID], itemID, s.limit)
	s.save(ctx, history)
}

// Clear drops the history of one leaf, or of every leaf when leafID is empty.
func (s *Store) Clear(ctx context.Context, leafID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if leafID == "" {
		s.save(ctx, map[string][]string{})
		return
	}
	history := s.load(ctx)
	if _, ok := history[leafID]; !ok {
		return
	}
	delete(history, leafID)
	s.save(ctx, history)
}

// Snapshot returns a copy of the whole history.
func (s *Store) Snapshot(ctx context.Context) map[string][]string {
	history := s.load(ctx)
	out := make(map[string][]string, len(history))
	for k, v := range history {
		out[k] = append([]string{}, v...)
	}
	return out
}

func push(ids []string, itemID string, limit int) []string {
	next := make([]string, 0, limit)
	next = append(next, itemID)
	for _, id := range ids {
		if id == itemID {
			continue
		}
		if len(next) == limit {
			break
		}
		next = append(next, id)
	}
	return next
}
