package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/db"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, factory())
		})

		b.Run("PutLargeValue", func(b *testing.B) {
			benchmarkPutLargeValue(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Delete", func(b *testing.B) {
			benchmarkDelete(b, factory())
		})

		b.Run("Keys", func(b *testing.B) {
			benchmarkKeys(b, factory())
		})

		b.Run("SaveLoad", func(b *testing.B) {
			benchmarkSaveLoad(b, factory)
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Put operation
func benchmarkPut(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			_ = database.Put(0, key, str(key))
			counter++
		}
	})
}

// Benchmark for Put operation with large values
func benchmarkPutLargeValue(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	largeValue := make([]byte, 1*1024*1024) // 1MB

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%100)
			_ = database.Put(0, key, db.Entry{Kind: db.KindString, Str: largeValue})
			counter++
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureGet)

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = database.Put(0, key, str(key))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			_, _, _ = database.Get(0, key)
			counter++
		}
	})
}

// Benchmark for Delete operation
func benchmarkDelete(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureDelete)

	// Prepare data
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = database.Put(0, key, str(key))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = database.Delete(0, fmt.Sprintf("test-key-%d", i))
	}
}

// Benchmark for listing the keys of a database (used by SCAN)
func benchmarkKeys(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureKeys)

	for i := 0; i < 10000; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = database.Put(0, key, str(key))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = database.Keys(0)
	}
}

// Benchmark for Save and Load
func benchmarkSaveLoad(b *testing.B, factory DBFactory) {
	database := factory()
	target := factory()

	b.Cleanup(func() {
		database.Close()
		target.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureSave|db.FeatureLoad)

	for i := 0; i < 10000; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = database.Put(uint64(i%4), key, str(key))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := database.Save(&buf); err != nil {
			b.Fatal(err)
		}
		if err := target.Load(&buf); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark for a mix of reads and writes
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureGet|db.FeatureDelete)

	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = database.Put(0, key, str(key))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", r.Intn(numKeys))
			switch r.Intn(10) {
			case 0, 1, 2:
				_ = database.Put(0, key, str(key))
			case 3:
				_, _ = database.Delete(0, key)
			default:
				_, _, _ = database.Get(0, key)
			}
		}
	})
}
