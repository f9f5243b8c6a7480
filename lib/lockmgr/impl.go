package lockmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/google/uuid"
)

type lockMgrImpl struct {
	executor batch.IExecutor
}

// NewLockManager creates a lock manager that stores its locks through executor.
func NewLockManager(executor batch.IExecutor) ILockManager {
	return &lockMgrImpl{
		executor: executor,
	}
}

func (lm *lockMgrImpl) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	ownerID := uuid.NewString()

	opts := batch.NewSetOptions().SetOnlyIfDoesNotExist()
	if ttl > 0 {
		opts.SetExpiry(batch.NewExpiryIn(ttl))
	}

	// SET NX is the compare and swap, GET tells if we won the race
	results, err := batch.NewBatch(true).
		SetWithOptions(key, ownerID, opts).
		Get(key).
		Exec(ctx, lm.executor, true)
	if err != nil {
		return false, "", fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}

	if owner, ok := results[1].Value.(string); ok && owner == ownerID {
		return true, ownerID, nil
	}
	return false, "", nil
}

func (lm *lockMgrImpl) ReleaseLock(ctx context.Context, key string, ownerID string) (bool, error) {
	results, err := batch.NewBatch(true).
		DelIfEq(key, ownerID).
		Exists(key).
		Exec(ctx, lm.executor, true)
	if err != nil {
		return false, fmt.Errorf("failed to release lock %q: %w", key, err)
	}

	deleted := results[0].Value == int64(1)
	missing := results[1].Value == int64(0)
	return deleted || missing, nil
}
