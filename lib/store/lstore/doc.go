// Package lstore implements a local, single-node store.IStore on top of any
// db.KVDB engine. Whether the data survives a restart depends on the engine
// (memdb keeps it in memory, pebble and badger on disk).
//
// Batches run through the shared engine package, so a local store behaves
// exactly like one replica of a dstore shard:
//
//   - Read-only batches run concurrently under a read lock.
//   - All other batches are serialized under the write lock. Atomic batches
//     are rolled back if a command fails.
//   - Expiry uses the wall clock of the process (time.Now), keys are purged
//     lazily when they are accessed.
//   - Every successful write batch increments the write index of the engine.
//
// Usage Example:
//
//	st := lstore.NewLocalStore(func() db.KVDB { return memdb.NewMemDB(nil) })
//	defer st.Close()
//
//	session := store.NewSession(st)
//	results, err := batch.NewBatch(true).
//		SetWithOptions("session:123", "data", batch.NewSetOptions().SetExpiry(batch.NewExpiryIn(5*time.Minute))).
//		Get("session:123").
//		Exec(ctx, session, true)
//
// For replication across nodes use the dstore package, which implements the
// same interface with raft.
package lstore
