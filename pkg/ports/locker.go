package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock acquired through a RunLocker.
type UnlockFunc func(ctx context.Context) error

// RunLocker serializes runs that share a key, possibly across replicas.
type RunLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if never released. The returned UnlockFunc MUST be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
