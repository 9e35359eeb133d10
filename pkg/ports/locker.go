package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes writers of one conversation key across replicas.
// session.Manager takes it around every load-modify-save so two servers never
// advance the same adventure at once.
type DistributedLocker interface {
	// Lock blocks until key is held, ctx is done or the lock cannot be taken.
	// The lock lapses after ttl if the holder dies; callers must release it with the returned func.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
