// Package store executes command batches against a db.KVDB and hands the
// results back in order.
//
// Key Components:
//
//   - IStore: runs one ordered command list, atomically or as a pipeline,
//     starting from a given selected database. The command semantics live in
//     the engine subpackage and are identical for every implementation.
//
//   - Session: adapts an IStore into a batch.IExecutor so that batches can be
//     executed in-process with batch.(*Batch).Exec. The session carries the
//     selected database from one batch to the next.
//
//   - DBFactory: creates the db.KVDB a store works on (memdb, pebbledb,
//     badgerdb).
//
// Implementations:
//
//   - Local Store (lstore): executes batches directly on a local database.
//     Writing batches are serialized with a mutex, read-only batches run in
//     parallel.
//
//   - Distributed Store (dstore): replicates batches with the Dragonboat
//     raft library. A whole batch is one log entry, so atomic batches are
//     applied (or rolled back) identically on every replica.
//
// Usage:
//
//	s := lstore.NewLocalStore(func() db.KVDB { return memdb.NewMemDB(nil) })
//	results, err := batch.NewBatch(true).
//		Set("a", "1").
//		Get("a").
//		Exec(ctx, store.NewSession(s), false)
package store
