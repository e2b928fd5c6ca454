package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to a session across replicas sharing one StateStore.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if the holder never calls the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
