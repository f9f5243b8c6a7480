package store

import (
	"context"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() db.KVDB

// IStore executes command batches against a keyspace of numbered databases.
// A store keeps no per-client state: the selected database travels with
// every call.
type IStore interface {
	// Exec runs cmds in order, starting with dbIdx as the selected database.
	//
	// On success it returns one reply per command and the database selected
	// after the last command (SELECT changes it).
	//
	// If atomic is true, either all commands take effect or none does. The
	// first failing command aborts the batch with an ErrCExecAborted
	// *batch.Error and no replies are returned. If atomic is false, a failing
	// command yields an error reply and the following commands still run.
	//
	// Any other error (timeouts, unreachable replicas, corrupt results) means
	// the outcome is unknown.
	Exec(ctx context.Context, dbIdx uint64, cmds []batch.Command, atomic bool) (replies []batch.Reply, selected uint64, err error)

	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info db.DatabaseInfo, err error)

	// Close releases the resources of the store.
	Close() error
}
