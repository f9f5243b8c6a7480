// Package internal defines the messages exchanged between the dstore client
// and the replicated state machine.
//
//   - Proposal: a writing batch. It is serialized into a single raft log
//     entry together with the selected database and the proposer's clock.
//   - Result encoding: the state machine stores the selected database and the
//     encoded replies (or the encoded *batch.Error of an aborted batch) in the
//     sm.Result of the entry.
//   - Query: a read-only batch or a request for database info. Queries are
//     executed on the local replica and never serialized.
//
// This package is intended for internal use by the dstore implementation and
// should not be imported directly by external code.
package internal
