package memdb

import (
	"io"
	"sort"

	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Core MemDB structure
// --------------------------------------------------------------------------

// memDBImpl keeps every logical database in its own concurrent map
type memDBImpl struct {
	db.WriteIndex
	databases []*xsync.MapOf[string, db.Entry]
	sizes     *util.SizeHistogram // distribution of written entry sizes
}

// DBOptions configures the memDBImpl behavior during initialization
type DBOptions struct {
	NumDatabases uint64 // Number of logical databases (0 = db.DefaultNumDatabases)
}

// DefaultOptions returns the default memDBImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumDatabases: db.DefaultNumDatabases,
	}
}

// NewMemDB creates a new in-memory database with the specified options (optional)
func NewMemDB(opts *DBOptions) db.KVDB {
	if opts == nil {
		opts = DefaultOptions()
	}
	n := opts.NumDatabases
	if n == 0 {
		n = db.DefaultNumDatabases
	}

	databases := make([]*xsync.MapOf[string, db.Entry], n)
	for i := range databases {
		databases[i] = xsync.NewMapOf[string, db.Entry]()
	}

	return &memDBImpl{
		databases: databases,
		sizes:     util.NewSizeHistogram(),
	}
}

// database returns the map of the logical database dbIdx
func (m *memDBImpl) database(dbIdx uint64) (*xsync.MapOf[string, db.Entry], error) {
	if err := db.CheckDBIndex(m, dbIdx); err != nil {
		return nil, err
	}
	return m.databases[dbIdx], nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db.KVDB)
// --------------------------------------------------------------------------

func (m *memDBImpl) Put(dbIdx uint64, key string, entry db.Entry) error {
	data, err := m.database(dbIdx)
	if err != nil {
		return err
	}
	// Copy value to prevent memory corruption
	data.Store(key, entry.Clone())
	m.sizes.AddSample(entry.SizeBytes())
	return nil
}

func (m *memDBImpl) Delete(dbIdx uint64, key string) (bool, error) {
	data, err := m.database(dbIdx)
	if err != nil {
		return false, err
	}
	_, loaded := data.LoadAndDelete(key)
	return loaded, nil
}

func (m *memDBImpl) Flush(dbIdx uint64) error {
	data, err := m.database(dbIdx)
	if err != nil {
		return err
	}
	data.Clear()
	return nil
}

func (m *memDBImpl) Get(dbIdx uint64, key string) (db.Entry, bool, error) {
	data, err := m.database(dbIdx)
	if err != nil {
		return db.Entry{}, false, err
	}
	entry, ok := data.Load(key)
	if !ok {
		return db.Entry{}, false, nil
	}
	return entry.Clone(), true, nil
}

func (m *memDBImpl) Keys(dbIdx uint64) ([]string, error) {
	data, err := m.database(dbIdx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, data.Size())
	data.Range(func(key string, _ db.Entry) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

func (m *memDBImpl) Size(dbIdx uint64) (int, error) {
	data, err := m.database(dbIdx)
	if err != nil {
		return 0, err
	}
	return data.Size(), nil
}

func (m *memDBImpl) NumDatabases() uint64 {
	return uint64(len(m.databases))
}

func (m *memDBImpl) Save(w io.Writer) error {
	return db.Dump(w, m)
}

func (m *memDBImpl) Load(r io.Reader) error {
	return db.Restore(r, m)
}

func (m *memDBImpl) SupportsFeature(feature db.Feature) bool {
	supported := db.FeatureGet | db.FeaturePut | db.FeatureDelete | db.FeatureKeys |
		db.FeatureFlush | db.FeatureSave | db.FeatureLoad
	return feature&supported == feature
}

func (m *memDBImpl) GetInfo() db.DatabaseInfo {
	keys := 0
	perDB := make([]float64, len(m.databases))
	for i, data := range m.databases {
		perDB[i] = float64(data.Size())
		keys += data.Size()
	}
	return db.DatabaseInfo{
		// estimated from the average size of all writes
		SizeBytes: keys * m.sizes.AverageSize(),
		Keys:      keys,
		Databases: m.NumDatabases(),
		DbType:    db.ImplMemDB,
		SupportedFeatures: (db.FeatureGet | db.FeaturePut | db.FeatureDelete | db.FeatureKeys |
			db.FeatureFlush | db.FeatureSave | db.FeatureLoad).Features(),
		Metadata: map[string]any{
			"writes":             m.sizes.GetCount(),
			"median_entry_bytes": m.sizes.MedianEstimate(),
			"p99_entry_bytes":    m.sizes.GetPercentileEstimate(99),
			"keys_per_db":        util.NewSpread(perDB),
		},
	}
}

func (m *memDBImpl) Close() error {
	for _, data := range m.databases {
		data.Clear()
	}
	return nil
}
