// Package memdb implements an in-memory key-value database (KVDB) with one
// concurrent map (xsync.MapOf) per logical database.
//
// The package focuses on:
//   - Lock-free concurrent reads and writes within and across logical databases
//   - Copy-on-write semantics: entries are copied on Put and on Get, so callers
//     never share memory with the stored data
//   - Binary snapshots through the shared db.Dump and db.Restore format
//
// memdb is the default engine of the local and the replicated store. It keeps
// no data on disk, the replicated store relies on raft snapshots for durability.
//
// Usage:
//
//	database := memdb.NewMemDB(nil) // 16 logical databases
//	err := database.Put(0, "key", db.Entry{Kind: db.KindString, Str: []byte("value")})
package memdb
