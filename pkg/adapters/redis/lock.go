package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aretw0/letluck/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultRetry is the polling interval while a lock is contended.
const DefaultRetry = 100 * time.Millisecond

// unlockScript deletes the key only when it still holds our token.
var unlockScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var tokenSeq atomic.Uint64

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		retry:  DefaultRetry,
	}
}

// Lock acquires a distributed lock for the given key using SET NX PX,
// polling until it succeeds or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := fmt.Sprintf("%d-%d", time.Now().UnixNano(), tokenSeq.Add(1))

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ ports.DistributedLocker = (*Locker)(nil)
