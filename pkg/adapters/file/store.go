// Package file provides filesystem adapters: a JSON session store, a JSON
// recency backend and a watched YAML/JSON tree loader.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// DefaultDir is where file adapters keep their data unless told otherwise.
const DefaultDir = ".letluck"

var errEmptyID = errors.New("sessionID cannot be empty")

// Store implements ports.StateStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".letluck/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(DefaultDir, "sessions")
	}
	return &Store{BasePath: basePath}
}

// Save persists the session state to a JSON file atomically.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.NavigationState) error {
	if sessionID == "" {
		return errEmptyID
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := writeAtomic(s.BasePath, sessionID+".json", data); err != nil {
		return fmt.Errorf("failed to save session %q: %w", sessionID, err)
	}
	return nil
}

// Load retrieves the session state from a JSON file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.NavigationState, error) {
	if sessionID == "" {
		return nil, errEmptyID
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, sessionID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	state := domain.NewNavigationState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	if state.Path == nil {
		state.Path = []domain.Crumb{}
	}
	return state, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errEmptyID
	}
	err := os.Remove(filepath.Join(s.BasePath, sessionID+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(sessions)
	return sessions, nil
}

var _ ports.StateStore = (*Store)(nil)
