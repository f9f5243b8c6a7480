package badgerdb

import (
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/db"
	dbtesting "github.com/ValentinKolb/kvbatch/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "BadgerDB", func() db.KVDB {
		database, err := NewBadgerDB(DBOptions{Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("failed to open badger: %v", err)
		}
		return database
	})
}

func TestInMemory(t *testing.T) {
	dbtesting.RunKVDBTests(t, "BadgerDBInMemory", func() db.KVDB {
		database, err := NewBadgerDB(DBOptions{})
		if err != nil {
			t.Fatalf("failed to open badger: %v", err)
		}
		return database
	})
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "BadgerDB", func() db.KVDB {
		database, err := NewBadgerDB(DBOptions{})
		if err != nil {
			b.Fatalf("failed to open badger: %v", err)
		}
		return database
	})
}
