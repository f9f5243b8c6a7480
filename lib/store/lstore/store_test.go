package lstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/badgerdb"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/memdb"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/pebbledb"
	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// factories returns one factory per engine
func factories(t *testing.T) map[string]store.DBFactory {
	return map[string]store.DBFactory{
		"memdb": func() db.KVDB {
			return memdb.NewMemDB(nil)
		},
		"pebble": func() db.KVDB {
			database, err := pebbledb.NewPebbleDB(pebbledb.DBOptions{Dir: t.TempDir(), NoSync: true})
			require.NoError(t, err)
			return database
		},
		"badger": func() db.KVDB {
			database, err := badgerdb.NewBadgerDB(badgerdb.DBOptions{})
			require.NoError(t, err)
			return database
		},
	}
}

func TestBatchesAgainstEngines(t *testing.T) {
	for name, factory := range factories(t) {
		t.Run(name, func(t *testing.T) {
			s := NewLocalStore(factory)
			defer s.Close()
			session := store.NewSession(s)
			ctx := context.Background()

			// SELECT followed by COPY into a third database
			_, err := batch.NewBatch(false).Select(1).Set("k1", "v").Exec(ctx, session, true)
			require.NoError(t, err)

			results, err := batch.NewBatch(true).Select(1).Copy("k1", "k2", 2, false).Exec(ctx, session, false)
			require.NoError(t, err)
			assert.Equal(t, []any{"OK", true}, batch.Values(results))
			assert.Equal(t, uint64(1), session.Selected())

			results, err = batch.NewBatch(false).Select(2).Get("k2").Exec(ctx, session, true)
			require.NoError(t, err)
			assert.Equal(t, []any{"OK", "v"}, batch.Values(results))

			// plain pipeline
			results, err = batch.NewBatch(false).Set("a", "1").Set("b", "2").Exec(ctx, session, false)
			require.NoError(t, err)
			assert.Equal(t, []any{"OK", "OK"}, batch.Values(results))

			info, err := s.GetDBInfo()
			require.NoError(t, err)
			assert.Equal(t, 4, info.Keys)
		})
	}
}

func TestAtomicAbortKeepsSelection(t *testing.T) {
	s := NewLocalStore(func() db.KVDB { return memdb.NewMemDB(nil) })
	session := store.NewSession(s)
	ctx := context.Background()

	_, err := batch.NewBatch(false).Select(3).Set("list", "not a list").Exec(ctx, session, true)
	require.NoError(t, err)

	b := batch.NewBatch(true).Set("a", "1").Select(4).Select(3).LPush("list", "x")
	results, err := b.Exec(ctx, session, false)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, batch.IsCode(err, batch.ErrCExecAborted))
	assert.Equal(t, batch.StateFailed, b.State())
	assert.Equal(t, uint64(3), session.Selected())

	results, err = batch.NewBatch(false).Exists("a").Exec(ctx, session, true)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(0)}, batch.Values(results))
}

func TestPipelineRaiseOnError(t *testing.T) {
	s := NewLocalStore(func() db.KVDB { return memdb.NewMemDB(nil) })
	session := store.NewSession(s)
	ctx := context.Background()

	b := batch.NewBatch(false).Set("s", "x").Incr("s").Get("s")

	results, err := b.Exec(ctx, session, false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.True(t, batch.IsCode(results[1].Err, batch.ErrCCommandFailed))
	assert.Equal(t, "x", results[2].Value)

	// resubmission is an independent execution
	_, err = b.Exec(ctx, session, true)
	var be *batch.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Index)
}

func TestExpiryUsesStoreClock(t *testing.T) {
	current := time.UnixMilli(1_000_000)
	s := newLocalStore(memdb.NewMemDB(nil), func() time.Time { return current })
	session := store.NewSession(s)
	ctx := context.Background()

	_, err := batch.NewBatch(false).
		SetWithOptions("k", "v", batch.NewSetOptions().SetExpiry(batch.NewExpiryIn(2*time.Second))).
		Exec(ctx, session, true)
	require.NoError(t, err)

	results, err := batch.NewBatch(false).Get("k").TTL("k").Exec(ctx, session, true)
	require.NoError(t, err)
	assert.Equal(t, []any{"v", int64(2)}, batch.Values(results))

	current = current.Add(2 * time.Second)
	results, err = batch.NewBatch(false).Get("k").TTL("k").Exec(ctx, session, true)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, int64(-2)}, batch.Values(results))
}

func TestWriteIndexCountsWritingBatches(t *testing.T) {
	s := newLocalStore(memdb.NewMemDB(nil), time.Now)
	ctx := context.Background()

	_, _, err := s.Exec(ctx, 0, batch.NewBatch(false).Set("a", "1").Commands(), false)
	require.NoError(t, err)
	_, _, err = s.Exec(ctx, 0, batch.NewBatch(false).Get("a").Commands(), false)
	require.NoError(t, err)
	_, _, err = s.Exec(ctx, 0, batch.NewBatch(true).Set("a", "2").Incr("a").Commands(), true)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), s.engine.DB().WriteIdx())
}

func TestCanceledContext(t *testing.T) {
	s := NewLocalStore(func() db.KVDB { return memdb.NewMemDB(nil) })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := batch.NewBatch(false).Ping().Exec(ctx, store.NewSession(s), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAtomicIncrements(t *testing.T) {
	s := NewLocalStore(func() db.KVDB { return memdb.NewMemDB(nil) })
	ctx := context.Background()

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			session := store.NewSession(s)
			for i := 0; i < perWorker; i++ {
				b := batch.NewBatch(true).Incr("counter").Set(fmt.Sprintf("w%d", w), fmt.Sprint(i))
				if _, err := b.Exec(ctx, session, true); err != nil {
					t.Errorf("worker %d: %v", w, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	results, err := batch.NewBatch(false).Get("counter").DBSize().Exec(ctx, store.NewSession(s), true)
	require.NoError(t, err)
	assert.Equal(t, []any{fmt.Sprint(workers * perWorker), int64(workers + 1)}, batch.Values(results))
}
