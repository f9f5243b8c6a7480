package lockmgr

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/memdb"
	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/ValentinKolb/kvbatch/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutor() batch.IExecutor {
	return store.NewSession(lstore.NewLocalStore(func() db.KVDB { return memdb.NewMemDB(nil) }))
}

func TestAcquireRelease(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager(newExecutor())

	ok, owner, err := lm.AcquireLock(ctx, "res", 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, owner)

	// held by someone else
	ok, other, err := lm.AcquireLock(ctx, "res", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, other)

	// wrong owner cannot release
	ok, err = lm.ReleaseLock(ctx, "res", "not-the-owner")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = lm.ReleaseLock(ctx, "res", owner)
	require.NoError(t, err)
	assert.True(t, ok)

	// releasing a missing lock succeeds
	ok, err = lm.ReleaseLock(ctx, "res", owner)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = lm.AcquireLock(ctx, "res", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockExpires(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager(newExecutor())

	ok, _, err := lm.AcquireLock(ctx, "res", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		ok, _, err := lm.AcquireLock(ctx, "res", 0)
		return err == nil && ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestOnlyOneWinner(t *testing.T) {
	ctx := context.Background()
	executor := newExecutor()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := NewLockManager(executor).AcquireLock(ctx, "res", time.Minute)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}
