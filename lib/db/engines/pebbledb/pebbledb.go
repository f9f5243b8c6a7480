package pebbledb

import (
	"errors"
	"io"

	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/db/util"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// pebbleDBImpl stores all logical databases in one pebble instance (see db.EncodeKey)
type pebbleDBImpl struct {
	db.WriteIndex
	pdb          *pebble.DB
	numDatabases uint64
	sync         *pebble.WriteOptions
}

// DBOptions configures the pebbleDBImpl behavior during initialization
type DBOptions struct {
	Dir          string // Data directory ("" = in memory)
	NumDatabases uint64 // Number of logical databases (0 = db.DefaultNumDatabases)
	NoSync       bool   // Do not fsync after each write
}

// NewPebbleDB opens (or creates) a pebble backed database.
func NewPebbleDB(opts DBOptions) (db.KVDB, error) {
	pebbleOpts := &pebble.Options{}
	if opts.Dir == "" {
		pebbleOpts.FS = vfs.NewMem()
	}

	pdb, err := pebble.Open(opts.Dir, pebbleOpts)
	if err != nil {
		return nil, err
	}

	n := opts.NumDatabases
	if n == 0 {
		n = db.DefaultNumDatabases
	}

	writeOpts := pebble.Sync
	if opts.NoSync {
		writeOpts = pebble.NoSync
	}

	return &pebbleDBImpl{
		pdb:          pdb,
		numDatabases: n,
		sync:         writeOpts,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db.KVDB)
// --------------------------------------------------------------------------

func (p *pebbleDBImpl) Put(dbIdx uint64, key string, entry db.Entry) error {
	if err := db.CheckDBIndex(p, dbIdx); err != nil {
		return err
	}
	return p.pdb.Set(db.EncodeKey(dbIdx, key), entry.Encode(), p.sync)
}

func (p *pebbleDBImpl) Delete(dbIdx uint64, key string) (bool, error) {
	if err := db.CheckDBIndex(p, dbIdx); err != nil {
		return false, err
	}
	raw := db.EncodeKey(dbIdx, key)

	_, closer, err := p.pdb.Get(raw)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()

	return true, p.pdb.Delete(raw, p.sync)
}

func (p *pebbleDBImpl) Flush(dbIdx uint64) error {
	if err := db.CheckDBIndex(p, dbIdx); err != nil {
		return err
	}
	return p.pdb.DeleteRange(db.DBPrefix(dbIdx), db.DBPrefix(dbIdx+1), p.sync)
}

func (p *pebbleDBImpl) Get(dbIdx uint64, key string) (db.Entry, bool, error) {
	if err := db.CheckDBIndex(p, dbIdx); err != nil {
		return db.Entry{}, false, err
	}

	val, closer, err := p.pdb.Get(db.EncodeKey(dbIdx, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return db.Entry{}, false, nil
	}
	if err != nil {
		return db.Entry{}, false, err
	}
	defer closer.Close()

	// DecodeEntry copies, val is only valid until closer is closed
	entry, err := db.DecodeEntry(val)
	if err != nil {
		return db.Entry{}, false, err
	}
	return entry, true, nil
}

func (p *pebbleDBImpl) Keys(dbIdx uint64) ([]string, error) {
	var keys []string
	err := p.iterate(dbIdx, func(key string) {
		keys = append(keys, key)
	})
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (p *pebbleDBImpl) Size(dbIdx uint64) (int, error) {
	n := 0
	err := p.iterate(dbIdx, func(string) {
		n++
	})
	return n, err
}

// iterate calls fn for every key of the database dbIdx in ascending order.
func (p *pebbleDBImpl) iterate(dbIdx uint64, fn func(key string)) error {
	if err := db.CheckDBIndex(p, dbIdx); err != nil {
		return err
	}

	iter := p.pdb.NewIter(&pebble.IterOptions{
		LowerBound: db.DBPrefix(dbIdx),
		UpperBound: db.DBPrefix(dbIdx + 1),
	})
	for iter.First(); iter.Valid(); iter.Next() {
		_, key, err := db.DecodeKey(iter.Key())
		if err != nil {
			iter.Close()
			return err
		}
		fn(key)
	}
	return iter.Close()
}

func (p *pebbleDBImpl) NumDatabases() uint64 {
	return p.numDatabases
}

func (p *pebbleDBImpl) Save(w io.Writer) error {
	return db.Dump(w, p)
}

func (p *pebbleDBImpl) Load(r io.Reader) error {
	return db.Restore(r, p)
}

const supportedFeatures = db.FeatureGet | db.FeaturePut | db.FeatureDelete | db.FeatureKeys |
	db.FeatureFlush | db.FeatureSave | db.FeatureLoad | db.FeaturePersistent

func (p *pebbleDBImpl) SupportsFeature(feature db.Feature) bool {
	return feature&supportedFeatures == feature
}

func (p *pebbleDBImpl) GetInfo() db.DatabaseInfo {
	keys := 0
	perDB := make([]float64, p.numDatabases)
	for dbIdx := uint64(0); dbIdx < p.numDatabases; dbIdx++ {
		n, _ := p.Size(dbIdx)
		perDB[dbIdx] = float64(n)
		keys += n
	}
	usage, _ := p.pdb.EstimateDiskUsage(db.DBPrefix(0), db.DBPrefix(p.numDatabases))
	return db.DatabaseInfo{
		SizeBytes:         int(usage),
		Keys:              keys,
		Databases:         p.numDatabases,
		DbType:            db.ImplPebble,
		SupportedFeatures: supportedFeatures.Features(),
		Metadata: map[string]any{
			"keys_per_db": util.NewSpread(perDB),
		},
	}
}

func (p *pebbleDBImpl) Close() error {
	return p.pdb.Close()
}
