package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/letluck/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Recency keeps the history in one hash: field = leaf id, value = JSON id list.
type Recency struct {
	client *backend.Client
	key    string
}

// NewRecency creates a backend under prefix+"recency".
func NewRecency(client *backend.Client, prefix string) *Recency {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Recency{client: client, key: prefix + "recency"}
}

// Load reads every leaf history.
func (r *Recency) Load(ctx context.Context) (map[string][]string, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recency from redis: %w", err)
	}
	history := make(map[string][]string, len(fields))
	for leafID, raw := range fields {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recency of %q: %w", leafID, err)
		}
		history[leafID] = ids
	}
	return history, nil
}

// Save replaces the hash in one transaction.
func (r *Recency) Save(ctx context.Context, history map[string][]string) error {
	values := make([]any, 0, 2*len(history))
	for leafID, ids := range history {
		data, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("failed to marshal recency of %q: %w", leafID, err)
		}
		values = append(values, leafID, data)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key)
	if len(values) > 0 {
		pipe.HSet(ctx, r.key, values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save recency to redis: %w", err)
	}
	return nil
}

var _ ports.RecencyBackend = (*Recency)(nil)
