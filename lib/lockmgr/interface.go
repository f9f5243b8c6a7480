package lockmgr

import (
	"context"
	"time"
)

// ILockManager defines the interface for a lock provider.
type ILockManager interface {
	// AcquireLock tries to acquire the lock for the given key. A ttl > 0 releases the lock
	// automatically after the given duration.
	// Returns whether the lock was acquired, the owner ID needed to release it, and an error if any.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (ok bool, ownerID string, err error)

	// ReleaseLock releases the lock for the given key if it is held by ownerID.
	// Returns whether the lock was released, and an error if any.
	// The method also returns true if the lock did not exist (anymore).
	ReleaseLock(ctx context.Context, key string, ownerID string) (ok bool, err error)
}
