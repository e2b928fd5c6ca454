package memory

import (
	"context"
	"sync"
)

// Recency implements ports.RecencyBackend in memory.
type Recency struct {
	mu      sync.Mutex
	history map[string][]string
}

// NewRecency creates an empty backend.
func NewRecency() *Recency {
	return &Recency{history: map[string][]string{}}
}

// Load returns a copy of the history.
func (r *Recency) Load(ctx context.Context) (map[string][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyHistory(r.history), nil
}

// Save replaces the history.
func (r *Recency) Save(ctx context.Context, history map[string][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = copyHistory(history)
	return nil
}

func copyHistory(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string{}, v...)
	}
	return out
}
