// Package pebbledb implements a persistent key-value database (KVDB) on top of
// the pebble LSM storage engine.
//
// All logical databases share one pebble instance. Stored keys carry the
// database index as an 8 byte big endian prefix (see db.EncodeKey), so
// listing the keys of a database is a bounded range scan that already yields
// them in sorted order, and FLUSHDB is a single range deletion.
//
// An empty DBOptions.Dir opens pebble on an in-memory filesystem, which is
// mainly useful for tests.
package pebbledb
