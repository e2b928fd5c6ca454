// Package redis stores sessions and recency history in Redis and provides a
// distributed session lock.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "letluck:"

// Store implements ports.StateStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix + "session:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so the recency backend and the locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the state and indexes the session by its expiry.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.NavigationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Score = Now + TTL. Without a TTL the entry never leaves the index.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(sessionID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the state from Redis.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.NavigationState, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	state := domain.NewNavigationState()
	if err := json.Unmarshal(val, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if state.Path == nil {
		state.Path = []domain.Crumb{}
	}
	return state, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List prunes expired entries from the index and returns the rest.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ ports.StateStore = (*Store)(nil)
