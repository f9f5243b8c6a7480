package internal

import "github.com/ValentinKolb/kvbatch/lib/batch"

// QueryType defines the possible read operations of the state machine.
type QueryType uint8

const (
	QueryTBatch     QueryType = iota // Run a read-only batch
	QueryTGetDBInfo                  // Get the db.DatabaseInfo of the replica
)

// Query is a read-only request. Queries are not stored in the raft log and
// are therefore never serialized.
type Query struct {
	Type     QueryType
	DB       uint64
	Now      int64
	Atomic   bool
	Commands []batch.Command
}

// QueryResult is the result of a QueryTBatch query
type QueryResult struct {
	Replies  []batch.Reply
	Selected uint64
}
