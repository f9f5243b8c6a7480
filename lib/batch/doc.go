// Package batch provides the command batches of kvbatch: an ordered list of
// store operations that is built locally and then executed either as an atomic
// transaction or as a non-atomic pipeline.
//
// Key Components:
//
//   - Arg and ToArg: A command argument is either text or raw bytes. Every
//     generically typed parameter (keys, values, cursors) is checked by ToArg
//     before anything is built. Any other Go type fails with
//     ErrCInvalidArgumentType.
//
//   - ArgsBuilder: Assembles the ordered argument list of one command. Mandatory
//     arguments come first, then protocol keywords (e.g. "DB"), then optional
//     tokens that are only present if their condition holds (e.g. "REPLACE").
//     The argument order is part of the wire contract.
//
//   - Command and NewCommand: An immutable command descriptor, consisting of a
//     RequestType from a closed set and its arguments. NewCommand checks the
//     arity of the request type, the server uses the same check when decoding.
//
//   - Batch: The accumulator. It has one method per supported operation, each
//     of which validates, builds and appends exactly one command and returns
//     the same *Batch for chaining. A call with an invalid parameter does not
//     append anything. The error is recorded (see Batch.Err) and the batch is
//     refused by Exec until the caller takes the errors with Batch.TakeErr.
//     Commands that were appended before are kept.
//
//   - Exec and IExecutor: The execution contract. IExecutor is implemented by
//     the stores and the rpc client. Exec guarantees that the returned result
//     slice has exactly one entry per command, in command order. An atomic batch
//     either succeeds as a whole or fails with ErrCExecAborted and no results.
//     In a pipeline every command succeeds or fails on its own and errors are
//     reported per command in Result.Err.
//
//   - Reply and the codec: Reply is the serializable form of a Result used on
//     the wire and in the raft log. AppendCommand/ReadCommand and
//     AppendReply/ReadReply implement the binary format.
//
// Usage:
//
//	b := batch.NewBatch(true).
//		Select(1).
//		Copy("k1", "k2", 2, false)
//	results, err := b.Exec(ctx, client, false)
//
// Lifecycle:
//
//	A batch starts in StateBuilding. The first call to Exec seals it
//	(StateSubmitted) and it ends in StateCompleted or StateFailed. A sealed
//	batch rejects appends with ErrCBatchSealed but can be executed again, every
//	execution is independent.
//
// Cluster mode:
//
//	A batch created with NewClusterBatch rejects operations that address a
//	numbered database (SELECT, MOVE and COPY with a destination database) with
//	ErrCUnsupportedInCluster.
//
// A Batch is meant to be built by a single goroutine, it does no locking.
package batch
