package dstore

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/ValentinKolb/kvbatch/lib/store/dstore/internal"
	"github.com/ValentinKolb/kvbatch/lib/store/engine"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// KVStateMachine is a state machine implementation for Dragonboat RAFT.
// Every log entry is one command batch, executed by the engine.
type KVStateMachine struct {
	replicaID uint64
	shardID   uint64
	database  db.KVDB // the actual dataStorage
	engine    *engine.Engine

	// Update runs batches with writes, Lookup runs read-only batches.
	// Both are called concurrently by dragonboat.
	mu sync.RWMutex
}

// CreateStateMaschineFactory returns a function that can be used by dragenboat to create a new standmaschine for a node host
// The factory pattern is used to enable the caller to pass an interchangeable dbFactory
func CreateStateMaschineFactory(dbFactory store.DBFactory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return newStateMachine(shardID, replicaID, dbFactory())
	}
}

func newStateMachine(shardID, replicaID uint64, database db.KVDB) *KVStateMachine {
	return &KVStateMachine{
		replicaID: replicaID,
		shardID:   shardID,
		database:  database,
		engine:    engine.New(database),
	}
}

// Lookup handles read-only queries.
func (fsm *KVStateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, fmt.Errorf("invalid query type: %T", itf)
	}

	switch q.Type {
	case internal.QueryTBatch:
		if !engine.IsReadOnly(q.Commands) {
			return nil, fmt.Errorf("query batch contains writing commands")
		}
		fsm.mu.RLock()
		defer fsm.mu.RUnlock()
		replies, selected, err := fsm.engine.Run(q.DB, q.Now, q.Commands, q.Atomic)
		if err != nil {
			return nil, err
		}
		return internal.QueryResult{Replies: replies, Selected: selected}, nil
	case internal.QueryTGetDBInfo:
		return fsm.database.GetInfo(), nil
	default:
		return nil, fmt.Errorf("unknown query type: %d", q.Type)
	}
}

// Update applies committed batches. The raft index of the last entry becomes
// the write index of the database.
func (fsm *KVStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {

	// Nothing to do
	if len(entries) == 0 {
		return entries, nil
	}

	// Stats
	start := time.Now()
	commands := 0

	fsm.mu.Lock()
	defer fsm.mu.Unlock()

	for idx, e := range entries {
		var p internal.Proposal
		if err := p.Deserialize(e.Cmd); err != nil {
			entries[idx].Result = sm.Result{
				Value: uint64(internal.ResultFailed),
				Data:  internal.EncodeError(fmt.Errorf("failed to deserialize proposal: %w", err)),
			}
			continue
		}
		commands += len(p.Commands)

		replies, selected, err := fsm.engine.Run(p.DB, p.Now, p.Commands, p.Atomic)
		if err != nil {
			entries[idx].Result = sm.Result{Value: uint64(internal.ResultFailed), Data: internal.EncodeError(err)}
			continue
		}
		entries[idx].Result = sm.Result{
			Value: uint64(internal.ResultOK),
			Data:  internal.EncodeReplies(selected, replies),
		}
	}
	fsm.database.SetWriteIdx(entries[len(entries)-1].Index)

	// Log if the update took long
	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("Statemachine took long to update. Applied %d batches (%d commands), took %.2fms",
			len(entries), commands, float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// PrepareSnapshot is not used. We don't need to prepare anything since we use fuzzy snapshotting
func (fsm *KVStateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot saves a fuzzy db snapshot to the writer
func (fsm *KVStateMachine) SaveSnapshot(_ interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	if !fsm.database.SupportsFeature(db.FeatureSave) {
		return fmt.Errorf("the used KVDB implementation does not support Save() operations")
	}
	return fsm.database.Save(writer)
}

// RecoverFromSnapshot replaces the database content with the snapshot
func (fsm *KVStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	if !fsm.database.SupportsFeature(db.FeatureLoad) {
		return fmt.Errorf("the used KVDB implementation does not support Load() operations")
	}
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	return fsm.database.Load(r)
}

// Close performs any necessary cleanup.
func (fsm *KVStateMachine) Close() error {
	return fsm.database.Close()
}
