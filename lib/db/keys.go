package db

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Key Layout of persistent engines
// --------------------------------------------------------------------------

// Persistent engines keep all logical databases in one ordered keyspace.
// A stored key is the 8 byte big endian database index followed by the user
// key, so the keys of one database are contiguous and sorted by user key.

// DBPrefix returns the prefix shared by all stored keys of the database dbIdx.
func DBPrefix(dbIdx uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), dbIdx)
}

// EncodeKey returns the stored key of key in the database dbIdx.
func EncodeKey(dbIdx uint64, key string) []byte {
	buf := make([]byte, 0, 8+len(key))
	buf = binary.BigEndian.AppendUint64(buf, dbIdx)
	return append(buf, key...)
}

// DecodeKey splits a stored key into database index and user key.
func DecodeKey(raw []byte) (uint64, string, error) {
	if len(raw) < 8 {
		return 0, "", fmt.Errorf("stored key too short: %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw[:8]), string(raw[8:]), nil
}
