// Package badgerdb implements a persistent key-value database (KVDB) on top of
// badger.
//
// Keys use the same database-prefixed layout as the pebble engine. Flushing a
// logical database drops its prefix, key listing is a prefix iteration
// without value prefetching.
package badgerdb
