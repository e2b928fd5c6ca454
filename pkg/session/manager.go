package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session lock.
const DefaultLockTTL = 30 * time.Second

// Factory builds a live session. The manager passes the caller's extra options
// followed by WithID, WithState and WithCommitHook.
type Factory func(opts ...Option) *Session

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.StateStore
	factory Factory

	mu    sync.Mutex            // Global lock for the lock map
	locks map[string]*lockEntry // Map of active locks

	liveMu sync.Mutex
	live   map[string]*Session

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) ManagerOption {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithFactory sets how live sessions are built.
func WithFactory(f Factory) ManagerOption {
	return func(m *Manager) {
		m.factory = f
	}
}

// WithManagerLogger configures a logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*Session),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load retrieves a stored snapshot.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.NavigationState, error) {
	var state *domain.NavigationState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Save persists a snapshot.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.NavigationState) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete closes the live session, if any, and removes the snapshot.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.liveMu.Lock()
	s, ok := m.live[sessionID]
	delete(m.live, sessionID)
	m.liveMu.Unlock()
	if ok {
		_ = s.Close()
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Live returns the ids of sessions held in memory.
func (m *Manager) Live() []string {
	m.liveMu.Lock()
	defer m.liveMu.Unlock()
	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Get returns a live session.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.liveMu.Lock()
	defer m.liveMu.Unlock()
	s, ok := m.live[sessionID]
	return s, ok
}

// Open returns the live session for id, building it from the stored snapshot
// or from scratch. A snapshot taken mid-reveal resumes with its winner committed.
// extra only applies when the session is built by this call.
func (m *Manager) Open(ctx context.Context, sessionID string, extra ...Option) (*Session, error) {
	if s, ok := m.Get(sessionID); ok {
		return s, nil
	}
	if m.factory == nil {
		return nil, ErrNoFactory
	}

	var s *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if live, ok := m.Get(sessionID); ok {
			s = live
			return nil
		}

		state, err := m.store.Load(ctx, sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			state = domain.NewNavigationState()
			if err := m.store.Save(ctx, sessionID, state); err != nil {
				return fmt.Errorf("failed to initialize session: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		default:
			if state.Commit() {
				m.logger.Info("Committed result of an interrupted reveal", "session_id", sessionID)
			}
			if verr := state.Validate(); verr != nil {
				m.logger.Warn("Stored session is inconsistent, starting over", "session_id", sessionID, "err", verr)
				state = domain.NewNavigationState()
			}
		}

		opts := append(append([]Option{}, extra...), WithID(sessionID), WithState(state), WithCommitHook(m.persist(sessionID)))
		s = m.factory(opts...)
		m.liveMu.Lock()
		m.live[sessionID] = s
		m.liveMu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// persist saves snapshots committed by a live session. Failures are logged:
// the live session stays authoritative.
func (m *Manager) persist(sessionID string) CommitFunc {
	return func(ctx context.Context, state *domain.NavigationState) {
		if err := m.Save(ctx, sessionID, state); err != nil {
			m.logger.Warn("Failed to persist session", "session_id", sessionID, "err", err)
		}
	}
}

// Close closes every live session.
func (m *Manager) Close() error {
	m.liveMu.Lock()
	live := m.live
	m.live = make(map[string]*Session)
	m.liveMu.Unlock()

	var errs []error
	for _, s := range live {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
