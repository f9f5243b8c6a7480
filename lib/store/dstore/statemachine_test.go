package dstore

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/memdb"
	"github.com/ValentinKolb/kvbatch/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const now = int64(1_700_000_000_000)

func newTestStateMachine() *KVStateMachine {
	return newStateMachine(1, 1, memdb.NewMemDB(nil))
}

func entry(index uint64, p internal.Proposal) sm.Entry {
	return sm.Entry{Index: index, Cmd: p.Serialize()}
}

func TestUpdateAppliesBatches(t *testing.T) {
	fsm := newTestStateMachine()

	entries, err := fsm.Update([]sm.Entry{
		entry(1, internal.Proposal{DB: 1, Now: now, Commands: batch.NewBatch(false).Set("k1", "v").Commands()}),
		entry(2, internal.Proposal{Atomic: true, DB: 0, Now: now, Commands: batch.NewBatch(true).Select(1).Copy("k1", "k2", 2, false).Commands()}),
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		require.Equal(t, uint64(internal.ResultOK), e.Result.Value)
	}
	replies, selected, err := internal.DecodeReplies(entries[1].Result.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), selected)
	assert.Equal(t, []batch.Reply{batch.OKReply(), batch.BoolReply(true)}, replies)
	assert.Equal(t, uint64(2), fsm.database.WriteIdx())

	// read-only batches go through Lookup
	res, err := fsm.Lookup(internal.Query{
		Type:     internal.QueryTBatch,
		DB:       2,
		Now:      now,
		Commands: batch.NewBatch(false).Get("k2").Commands(),
	})
	require.NoError(t, err)
	assert.Equal(t, internal.QueryResult{Replies: []batch.Reply{batch.StringReply("v")}, Selected: 2}, res)
}

func TestUpdateAbortedBatch(t *testing.T) {
	fsm := newTestStateMachine()

	entries, err := fsm.Update([]sm.Entry{
		entry(1, internal.Proposal{Atomic: true, Now: now, Commands: batch.NewBatch(true).Set("a", "x").Incr("a").Commands()}),
		{Index: 2, Cmd: []byte{1, 2}},
	})
	require.NoError(t, err)

	require.Equal(t, uint64(internal.ResultFailed), entries[0].Result.Value)
	be := internal.DecodeError(entries[0].Result.Data)
	assert.Equal(t, batch.ErrCExecAborted, be.Code)
	assert.Equal(t, 1, be.Index)

	require.Equal(t, uint64(internal.ResultFailed), entries[1].Result.Value)
	assert.Equal(t, batch.ErrCInternal, internal.DecodeError(entries[1].Result.Data).Code)

	// the aborted batch left nothing behind
	res, err := fsm.Lookup(internal.Query{Type: internal.QueryTBatch, Now: now, Commands: batch.NewBatch(false).Exists("a").Commands()})
	require.NoError(t, err)
	assert.Equal(t, []batch.Reply{batch.IntReply(0)}, res.(internal.QueryResult).Replies)
}

func TestLookupRejectsWrites(t *testing.T) {
	fsm := newTestStateMachine()
	_, err := fsm.Lookup(internal.Query{Type: internal.QueryTBatch, Commands: batch.NewBatch(false).Set("a", "1").Commands()})
	assert.Error(t, err)

	_, err = fsm.Lookup("not a query")
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	fsm := newTestStateMachine()
	_, err := fsm.Update([]sm.Entry{
		entry(5, internal.Proposal{DB: 3, Now: now, Commands: batch.NewBatch(false).Set("a", "1").RPush("l", "x", "y").Commands()}),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fsm.SaveSnapshot(nil, &buf, nil, nil))

	restored := newTestStateMachine()
	require.NoError(t, restored.RecoverFromSnapshot(&buf, nil, nil))
	assert.Equal(t, uint64(5), restored.database.WriteIdx())

	res, err := restored.Lookup(internal.Query{
		Type:     internal.QueryTBatch,
		DB:       3,
		Now:      now,
		Commands: batch.NewBatch(false).Get("a").LRange("l", 0, -1).Commands(),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"1", []any{"x", "y"}}, batch.Values(batch.Results(res.(internal.QueryResult).Replies)))
}
