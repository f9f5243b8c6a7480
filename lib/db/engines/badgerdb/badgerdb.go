package badgerdb

import (
	"errors"
	"io"

	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/db/util"
	"github.com/dgraph-io/badger/v4"
)

// badgerDBImpl stores all logical databases in one badger instance (see db.EncodeKey)
type badgerDBImpl struct {
	db.WriteIndex
	bdb          *badger.DB
	numDatabases uint64
}

// DBOptions configures the badgerDBImpl behavior during initialization
type DBOptions struct {
	Dir          string // Data directory ("" = in memory)
	NumDatabases uint64 // Number of logical databases (0 = db.DefaultNumDatabases)
}

// NewBadgerDB opens (or creates) a badger backed database.
func NewBadgerDB(opts DBOptions) (db.KVDB, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.Dir == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}

	bdb, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	n := opts.NumDatabases
	if n == 0 {
		n = db.DefaultNumDatabases
	}

	return &badgerDBImpl{
		bdb:          bdb,
		numDatabases: n,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db.KVDB)
// --------------------------------------------------------------------------

func (b *badgerDBImpl) Put(dbIdx uint64, key string, entry db.Entry) error {
	if err := db.CheckDBIndex(b, dbIdx); err != nil {
		return err
	}
	return b.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(db.EncodeKey(dbIdx, key), entry.Encode())
	})
}

func (b *badgerDBImpl) Delete(dbIdx uint64, key string) (bool, error) {
	if err := db.CheckDBIndex(b, dbIdx); err != nil {
		return false, err
	}

	deleted := false
	err := b.bdb.Update(func(txn *badger.Txn) error {
		raw := db.EncodeKey(dbIdx, key)
		if _, err := txn.Get(raw); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		deleted = true
		return txn.Delete(raw)
	})
	return deleted, err
}

func (b *badgerDBImpl) Flush(dbIdx uint64) error {
	if err := db.CheckDBIndex(b, dbIdx); err != nil {
		return err
	}
	return b.bdb.DropPrefix(db.DBPrefix(dbIdx))
}

func (b *badgerDBImpl) Get(dbIdx uint64, key string) (db.Entry, bool, error) {
	if err := db.CheckDBIndex(b, dbIdx); err != nil {
		return db.Entry{}, false, err
	}

	var (
		entry db.Entry
		found bool
	)
	err := b.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get(db.EncodeKey(dbIdx, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			// DecodeEntry copies, val is only valid inside this function
			e, err := db.DecodeEntry(val)
			if err != nil {
				return err
			}
			entry, found = e, true
			return nil
		})
	})
	if err != nil {
		return db.Entry{}, false, err
	}
	return entry, found, nil
}

func (b *badgerDBImpl) Keys(dbIdx uint64) ([]string, error) {
	keys := []string{}
	err := b.iterate(dbIdx, func(key string) {
		keys = append(keys, key)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *badgerDBImpl) Size(dbIdx uint64) (int, error) {
	n := 0
	err := b.iterate(dbIdx, func(string) {
		n++
	})
	return n, err
}

// iterate calls fn for every key of the database dbIdx in ascending order.
func (b *badgerDBImpl) iterate(dbIdx uint64, fn func(key string)) error {
	if err := db.CheckDBIndex(b, dbIdx); err != nil {
		return err
	}
	return b.bdb.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			Prefix:         db.DBPrefix(dbIdx),
			PrefetchValues: false,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			_, key, err := db.DecodeKey(it.Item().Key())
			if err != nil {
				return err
			}
			fn(key)
		}
		return nil
	})
}

func (b *badgerDBImpl) NumDatabases() uint64 {
	return b.numDatabases
}

func (b *badgerDBImpl) Save(w io.Writer) error {
	return db.Dump(w, b)
}

func (b *badgerDBImpl) Load(r io.Reader) error {
	return db.Restore(r, b)
}

const supportedFeatures = db.FeatureGet | db.FeaturePut | db.FeatureDelete | db.FeatureKeys |
	db.FeatureFlush | db.FeatureSave | db.FeatureLoad | db.FeaturePersistent

func (b *badgerDBImpl) SupportsFeature(feature db.Feature) bool {
	return feature&supportedFeatures == feature
}

func (b *badgerDBImpl) GetInfo() db.DatabaseInfo {
	keys := 0
	perDB := make([]float64, b.numDatabases)
	for dbIdx := uint64(0); dbIdx < b.numDatabases; dbIdx++ {
		n, _ := b.Size(dbIdx)
		perDB[dbIdx] = float64(n)
		keys += n
	}
	lsm, vlog := b.bdb.Size()
	return db.DatabaseInfo{
		SizeBytes:         int(lsm + vlog),
		Keys:              keys,
		Databases:         b.numDatabases,
		DbType:            db.ImplBadger,
		SupportedFeatures: supportedFeatures.Features(),
		Metadata: map[string]any{
			"lsm_bytes":   lsm,
			"vlog_bytes":  vlog,
			"keys_per_db": util.NewSpread(perDB),
		},
	}
}

func (b *badgerDBImpl) Close() error {
	return b.bdb.Close()
}
