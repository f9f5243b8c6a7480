package db

import "io"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMemDB  Implementation = "memdb"
	ImplPebble Implementation = "pebble"
	ImplBadger Implementation = "badger"
)

// DefaultNumDatabases is the number of logical databases an engine provides if not configured otherwise.
const DefaultNumDatabases = 16

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureGet        Feature = 1 << iota // Support for Get operations
	FeaturePut                            // Support for Put operations
	FeatureDelete                         // Support for Delete operations
	FeatureKeys                           // Support for listing the keys of a database
	FeatureFlush                          // Support for Flush operations
	FeatureSave                           // Support for Save operations
	FeatureLoad                           // Support for Load operations
	FeaturePersistent                     // Data survives a restart of the process
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeaturePut:
		return "Put"
	case FeatureDelete:
		return "Delete"
	case FeatureKeys:
		return "Keys"
	case FeatureFlush:
		return "Flush"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	case FeaturePersistent:
		return "Persistent"
	default:
		return "Unknown"
	}
}

// Features returns the single flags contained in f.
func (f Feature) Features() []Feature {
	var out []Feature
	for bit := FeatureGet; bit <= FeaturePersistent; bit <<= 1 {
		if f&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	Keys              int            `json:"keys"`
	Databases         uint64         `json:"databases"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines the keyspace a store executes commands against.
//
// A KVDB is divided into NumDatabases() logical databases, addressed by a zero
// based index. Every database maps string keys to typed entries. An index out
// of range is an error.
//
// A KVDB does not interpret entries: expiry is evaluated by the caller, which
// allows replicated stores to use a deterministic clock. Implementations must be
// safe for concurrent use, but callers serialise mutations of the same key.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put inserts or replaces the entry of key in the database dbIdx.
	// The entry is copied, the caller may reuse it.
	Put(dbIdx uint64, key string, entry Entry) (err error)

	// Delete removes key from the database dbIdx.
	// The boolean return value indicates whether the key existed.
	Delete(dbIdx uint64, key string) (deleted bool, err error)

	// Flush removes all keys of the database dbIdx.
	Flush(dbIdx uint64) (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the entry of key in the database dbIdx.
	// The boolean return value indicates whether the key exists. The returned
	// entry is a copy and safe to modify.
	Get(dbIdx uint64, key string) (entry Entry, loaded bool, err error)

	// Keys returns all keys of the database dbIdx in ascending byte order.
	Keys(dbIdx uint64) (keys []string, err error)

	// Size returns the number of keys in the database dbIdx, including keys whose entry is expired.
	Size(dbIdx uint64) (n int, err error)

	// NumDatabases returns the number of logical databases.
	NumDatabases() uint64

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of all databases to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load replaces the state of all databases with the data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// --------------------------------------------------------------------------
	// Write Index Operations
	// --------------------------------------------------------------------------

	// SetWriteIdx sets the current index of the database only if the provided index is greater than the current index.
	SetWriteIdx(index uint64)

	// WriteIdx returns the current index of the database.
	WriteIdx() (index uint64)

	// Close closes the database.
	Close() (err error)
}

// CheckDBIndex returns an error if dbIdx is not a valid database index of database.
func CheckDBIndex(database KVDB, dbIdx uint64) error {
	if dbIdx >= database.NumDatabases() {
		return ErrInvalidDBIndex{Index: dbIdx, Max: database.NumDatabases()}
	}
	return nil
}

// ErrInvalidDBIndex is returned for a database index out of range.
type ErrInvalidDBIndex struct {
	Index uint64
	Max   uint64
}

func (e ErrInvalidDBIndex) Error() string {
	return "DB index is out of range"
}
