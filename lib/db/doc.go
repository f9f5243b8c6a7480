// Package db defines the storage contract (KVDB) behind the command
// interpreter of the store.
//
// A KVDB holds a fixed number of logical databases addressed by index, the
// way SELECT addresses them. Each database maps keys to typed entries
// (strings or lists) with an optional absolute expiry timestamp. Engines only
// store what they are given: expiry is evaluated lazily by the interpreter
// against a clock value carried in each batch, so replicas that apply the
// same log reach the same state.
//
// Key Components:
//
//   - KVDB: Put, Get, Delete, Keys and Size per logical database, Flush of a
//     whole database, Save and Load of all databases.
//
//   - Entry: the stored value with its kind and expiry, plus a compact binary
//     encoding used by the persistent engines and by snapshots.
//
//   - Feature flags: engines advertise what they support through
//     SupportsFeature. FeaturePersistent marks engines that keep data on disk.
//
//   - Snapshots: Dump and Restore implement one snapshot format on top of
//     the KVDB interface, shared by all engines.
//
//   - Write index: engines embed WriteIndex to track the last applied raft
//     log index. The index only increases.
//
// Engines live in the engines subpackages (memdb, pebbledb, badgerdb). The
// testing package provides a conformance suite and benchmarks for them.
package db
