package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/letluck/pkg/ports"
)

// Recency keeps the whole history in one JSON document.
type Recency struct {
	mu   sync.Mutex
	path string
}

// NewRecency creates a backend over path, defaulting to ".letluck/recency.json".
func NewRecency(path string) *Recency {
	if path == "" {
		path = filepath.Join(DefaultDir, "recency.json")
	}
	return &Recency{path: path}
}

// Path returns the document location.
func (r *Recency) Path() string {
	return r.path
}

// Load reads the history. A missing file is an empty history.
func (r *Recency) Load(ctx context.Context) (map[string][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("failed to read recency file: %w", err)
	}
	history := map[string][]string{}
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recency history: %w", err)
	}
	return history, nil
}

// Save replaces the history document atomically.
func (r *Recency) Save(ctx context.Context, history map[string][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recency history: %w", err)
	}
	return writeAtomic(filepath.Dir(r.path), filepath.Base(r.path), data)
}

var _ ports.RecencyBackend = (*Recency)(nil)
