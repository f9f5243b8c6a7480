package memdb

import (
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/db"
	dbtesting "github.com/ValentinKolb/kvbatch/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MemDB", func() db.KVDB {
		return NewMemDB(nil)
	})
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "MemDB", func() db.KVDB {
		return NewMemDB(nil)
	})
}
