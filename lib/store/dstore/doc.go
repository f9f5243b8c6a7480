// Package dstore implements store.IStore on top of a Dragonboat RAFT shard.
// Every replica of the shard runs the same engine.Engine on its own db.KVDB,
// so a batch applied through the log produces identical results everywhere.
//
// Components:
//
//   - Store Client (store.go): implements store.IStore. It decides whether a
//     batch needs the log at all, proposes or reads, and decodes the result.
//
//   - State Machine (statemachine.go): a Dragonboat IConcurrentStateMachine.
//     Update executes proposed batches, Lookup executes read-only batches.
//
//   - Wire Protocol (internal): the Proposal that is written to the log, the
//     encoded result of Update and the Query passed to Lookup.
//
// Write Path:
//
//	1. The client stamps the batch with its clock (Now) and serializes it as a Proposal
//	2. The Proposal is replicated via SyncPropose and committed by a majority
//	3. Each replica deserializes the Proposal and runs it in the engine. Expiry is
//	   evaluated against the stamped Now, never against the local clock, which keeps
//	   all replicas deterministic
//	4. The result (replies plus the final selected database, or the abort error)
//	   is returned in sm.Result. Value carries the status, Data the payload
//
//	The RAFT index of the last applied entry is used as the write index.
//
// Read Path:
//
//	Batches that contain only read-only commands (engine.IsReadOnly) skip the log.
//	They are executed on the local replica with SyncRead, which waits until the
//	replica has applied everything committed before the read started. Read-only
//	batches never purge expired keys, so Lookup does not modify state.
//
//	GetDBInfo uses StaleRead.
//
// Atomicity:
//
//	An atomic batch is one log entry. If one of its commands fails, the engine
//	rolls back the partial effects before the next entry is applied, every
//	replica does the same and the client receives an ErrCExecAborted error.
//
// Retries:
//
//	ErrSystemBusy is retried up to 5 times. Other errors of Dragonboat are
//	returned as is (wrapped), errors of the engine are returned as *batch.Error.
//
// Snapshots:
//
//	Fuzzy snapshots are written with db.KVDB.Save and restored with Load.
//
// Usage:
//
//	nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	if err != nil { ... }
//
//	dbFactory := func() db.KVDB { return memdb.NewMemDB(nil) }
//
//	err = nh.StartConcurrentReplica(
//	    clusterMembers,
//	    false,
//	    dstore.CreateStateMaschineFactory(dbFactory),
//	    shardConfig)
//	if err != nil { ... }
//
//	s := dstore.NewDistributedStore(nh, shardID, 5*time.Second)
//	session := store.NewSession(s)
//	results, err := batch.NewBatch(true).Incr("visits").Get("visits").Exec(ctx, session, true)
package dstore
