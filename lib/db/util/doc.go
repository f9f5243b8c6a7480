// Package util provides small helpers shared by the db.KVDB engines and the
// server.
//
// The package contains:
//   - SizeHistogram: a bucketed, concurrency safe size distribution used by
//     engines that cannot compute their memory footprint cheaply
//   - Spread: min/max/mean/stddev over per-database values, reported in
//     db.DatabaseInfo metadata
//   - HashString: FNV-1a hashing, used to derive replica ids from node names
package util
