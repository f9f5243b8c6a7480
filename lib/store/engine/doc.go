// Package engine is the command interpreter of the stores. It executes
// ordered command lists against a db.KVDB.
//
// Semantics:
//   - Commands run strictly in order. SELECT changes the database used by all
//     following commands of the same batch, the selection after the last
//     command is returned to the caller.
//   - Values are typed (string or list). A command on a key of the wrong type
//     fails with a WRONGTYPE error.
//   - Expiry is lazy and based on the time passed to Run, never on the wall
//     clock. Expired keys are invisible to every command. Batches that write
//     also remove them physically, read-only batches never modify the
//     database.
//   - Atomic batches journal the previous state of every key they modify.
//     The first failing command restores the journal in reverse order, so
//     an aborted batch leaves no trace.
//
// The engine does no locking. The stores serialize writing batches.
package engine
