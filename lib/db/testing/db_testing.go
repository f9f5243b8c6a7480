package testing

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Lists", func(t *testing.T) {
			testLists(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("DatabaseIsolation", func(t *testing.T) {
			testDatabaseIsolation(t, factory())
		})

		t.Run("InvalidIndex", func(t *testing.T) {
			testInvalidIndex(t, factory())
		})

		t.Run("KeysAndSize", func(t *testing.T) {
			testKeysAndSize(t, factory())
		})

		t.Run("Flush", func(t *testing.T) {
			testFlush(t, factory())
		})

		t.Run("WriteIdx", func(t *testing.T) {
			testWriteIdx(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

func str(s string) db.Entry {
	return db.Entry{Kind: db.KindString, Str: []byte(s)}
}

func mustPut(t testing.TB, database db.KVDB, dbIdx uint64, key string, entry db.Entry) {
	if err := database.Put(dbIdx, key, entry); err != nil {
		t.Fatalf("Unexpected error during Put(%d, %q): %v", dbIdx, key, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	testKey := "test-key"

	mustPut(t, database, 0, testKey, str("test-value1"))

	result, exists, err := database.Get(0, testKey)
	if err != nil || !exists {
		t.Fatalf("Expected key %s to exist after Put (err=%v)", testKey, err)
	}
	if result.Kind != db.KindString || !bytes.Equal(result.Str, []byte("test-value1")) {
		t.Errorf("Expected value test-value1, got %s", result.Str)
	}

	// overwrite with expiry
	entry := str("test-value2")
	entry.ExpireAt = 1_700_000_000_000
	mustPut(t, database, 0, testKey, entry)

	result, exists, _ = database.Get(0, testKey)
	if !exists {
		t.Fatalf("Expected key %s to exist after Put", testKey)
	}
	if !bytes.Equal(result.Str, []byte("test-value2")) {
		t.Errorf("Expected value test-value2, got %s", result.Str)
	}
	if result.ExpireAt != entry.ExpireAt {
		t.Errorf("Expected expireAt %d, got %d", entry.ExpireAt, result.ExpireAt)
	}

	_, exists, err = database.Get(0, "nonexistent-key")
	if err != nil || exists {
		t.Errorf("Expected nonexistent key to return exists=false (err=%v)", err)
	}

	// the returned entry must be a copy
	result.Str[0] = 'X'
	again, _, _ := database.Get(0, testKey)
	if again.Str[0] == 'X' {
		t.Errorf("Modifying a returned entry changed the stored value")
	}

	// the stored entry must be a copy
	value := []byte("mutable")
	mustPut(t, database, 0, "copy-key", db.Entry{Kind: db.KindString, Str: value})
	value[0] = 'X'
	again, _, _ = database.Get(0, "copy-key")
	if string(again.Str) != "mutable" {
		t.Errorf("Modifying the value after Put changed the stored value: %s", again.Str)
	}
}

func testLists(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	list := db.Entry{Kind: db.KindList, List: [][]byte{[]byte("a"), {}, []byte("c")}}
	mustPut(t, database, 1, "list", list)

	result, exists, err := database.Get(1, "list")
	if err != nil || !exists {
		t.Fatalf("Expected list to exist (err=%v)", err)
	}
	if result.Kind != db.KindList {
		t.Fatalf("Expected kind list, got %s", result.Kind)
	}
	if len(result.List) != 3 {
		t.Fatalf("Expected 3 elements, got %d", len(result.List))
	}
	for i, want := range []string{"a", "", "c"} {
		if string(result.List[i]) != want {
			t.Errorf("Element %d: expected %q, got %q", i, want, result.List[i])
		}
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureDelete)

	mustPut(t, database, 0, "delete-key", str("value"))

	deleted, err := database.Delete(0, "delete-key")
	if err != nil || !deleted {
		t.Errorf("Expected Delete to report the key as deleted (err=%v)", err)
	}

	if _, exists, _ := database.Get(0, "delete-key"); exists {
		t.Errorf("Expected key to not exist after Delete")
	}

	deleted, err = database.Delete(0, "delete-key")
	if err != nil || deleted {
		t.Errorf("Expected second Delete to report nothing deleted (err=%v)", err)
	}
}

func testDatabaseIsolation(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	if database.NumDatabases() < 2 {
		t.Skip("need at least two databases")
	}

	mustPut(t, database, 0, "shared-key", str("zero"))
	mustPut(t, database, 1, "shared-key", str("one"))

	e0, _, _ := database.Get(0, "shared-key")
	e1, _, _ := database.Get(1, "shared-key")
	if string(e0.Str) != "zero" || string(e1.Str) != "one" {
		t.Errorf("Databases are not isolated: db0=%s db1=%s", e0.Str, e1.Str)
	}

	if _, err := database.Delete(1, "shared-key"); err != nil {
		t.Fatalf("Unexpected error during Delete: %v", err)
	}
	if _, exists, _ := database.Get(0, "shared-key"); !exists {
		t.Errorf("Delete in database 1 removed the key from database 0")
	}
}

func testInvalidIndex(t *testing.T, database db.KVDB) {
	defer database.Close()

	n := database.NumDatabases()
	if err := database.Put(n, "key", str("value")); err == nil {
		t.Errorf("Expected Put with index %d to fail", n)
	}
	if _, _, err := database.Get(n, "key"); err == nil {
		t.Errorf("Expected Get with index %d to fail", n)
	}
	if _, err := database.Keys(n); err == nil {
		t.Errorf("Expected Keys with index %d to fail", n)
	}
}

func testKeysAndSize(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureKeys)

	for _, key := range []string{"b", "a", "c", "aa"} {
		mustPut(t, database, 2, key, str(key))
	}
	mustPut(t, database, 3, "other", str("x"))

	keys, err := database.Keys(2)
	if err != nil {
		t.Fatalf("Unexpected error during Keys: %v", err)
	}
	want := []string{"a", "aa", "b", "c"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("Expected keys %v, got %v", want, keys)
	}

	size, err := database.Size(2)
	if err != nil || size != 4 {
		t.Errorf("Expected size 4, got %d (err=%v)", size, err)
	}

	size, err = database.Size(4)
	if err != nil || size != 0 {
		t.Errorf("Expected size 0 for an empty database, got %d (err=%v)", size, err)
	}
}

func testFlush(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureFlush)

	for i := 0; i < 100; i++ {
		mustPut(t, database, 0, fmt.Sprintf("flush-%d", i), str("v"))
	}
	mustPut(t, database, 1, "keep", str("v"))

	if err := database.Flush(0); err != nil {
		t.Fatalf("Unexpected error during Flush: %v", err)
	}

	if size, _ := database.Size(0); size != 0 {
		t.Errorf("Expected empty database after Flush, got %d keys", size)
	}
	if _, exists, _ := database.Get(1, "keep"); !exists {
		t.Errorf("Flush of database 0 removed a key of database 1")
	}
}

func testWriteIdx(t *testing.T, database db.KVDB) {
	defer database.Close()

	database.SetWriteIdx(10)
	database.SetWriteIdx(5)
	if idx := database.WriteIdx(); idx != 10 {
		t.Errorf("Expected write index 10, got %d", idx)
	}
	database.SetWriteIdx(11)
	if idx := database.WriteIdx(); idx != 11 {
		t.Errorf("Expected write index 11, got %d", idx)
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	// close the databases after the test
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureSave|db.FeatureLoad)

	numEntries := 1000
	for i := 0; i < numEntries; i++ {
		entry := str(fmt.Sprintf("save-load-test-value-%d", i))
		if i%10 == 0 {
			entry.ExpireAt = int64(i)
		}
		mustPut(t, database, uint64(i%3), fmt.Sprintf("save-load-test-key-%d", i), entry)
	}
	mustPut(t, database, 0, "list", db.Entry{Kind: db.KindList, List: [][]byte{[]byte("x"), []byte("y")}})
	database.SetWriteIdx(42)

	// must be gone after load
	mustPut(t, database2, 0, "stale", str("stale"))

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}
	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("save-load-test-key-%d", i)
		actual, exists, err := database2.Get(uint64(i%3), key)
		if err != nil || !exists {
			t.Errorf("Key %s not found after Load (err=%v)", key, err)
			continue
		}
		if want := fmt.Sprintf("save-load-test-value-%d", i); string(actual.Str) != want {
			t.Errorf("Value mismatch for key %s: expected %s, got %s", key, want, actual.Str)
		}
		if i%10 == 0 && actual.ExpireAt != int64(i) {
			t.Errorf("ExpireAt mismatch for key %s: expected %d, got %d", key, i, actual.ExpireAt)
		}
	}

	list, exists, _ := database2.Get(0, "list")
	if !exists || len(list.List) != 2 || string(list.List[1]) != "y" {
		t.Errorf("List not restored correctly: %+v", list)
	}
	if _, exists, _ := database2.Get(0, "stale"); exists {
		t.Errorf("Load did not replace the previous content")
	}
	if idx := database2.WriteIdx(); idx != 42 {
		t.Errorf("Expected write index 42 after Load, got %d", idx)
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	// Empty key
	mustPut(t, database, 0, "", str("empty-key-value"))
	if e, exists, _ := database.Get(0, ""); !exists || string(e.Str) != "empty-key-value" {
		t.Errorf("Empty key not handled correctly")
	}

	// Empty value
	mustPut(t, database, 0, "empty-value", str(""))
	if e, exists, _ := database.Get(0, "empty-value"); !exists || len(e.Str) != 0 {
		t.Errorf("Empty value not handled correctly")
	}

	// Binary key and value
	binKey := string([]byte{0x00, 0xff, 0x10})
	mustPut(t, database, 0, binKey, db.Entry{Kind: db.KindString, Str: []byte{0x00, 0x01}})
	if e, exists, _ := database.Get(0, binKey); !exists || !bytes.Equal(e.Str, []byte{0x00, 0x01}) {
		t.Errorf("Binary key not handled correctly")
	}

	// Large value
	large := make([]byte, 1024*1024)
	for i := range large {
		large[i] = byte(i % 251)
	}
	mustPut(t, database, 0, "large", db.Entry{Kind: db.KindString, Str: large})
	if e, exists, _ := database.Get(0, "large"); !exists || !bytes.Equal(e.Str, large) {
		t.Errorf("Large value not handled correctly")
	}

	// Empty list
	mustPut(t, database, 0, "empty-list", db.Entry{Kind: db.KindList})
	if e, exists, _ := database.Get(0, "empty-list"); !exists || e.Kind != db.KindList || len(e.List) != 0 {
		t.Errorf("Empty list not handled correctly")
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureDelete)

	numWorkers := 8
	opsPerWorker := 500

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	var errorCount int32

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			dbIdx := uint64(workerId % 4)
			for i := 0; i < opsPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i%50)
				var err error
				switch i % 10 {
				case 0, 1, 2, 3, 4, 5, 6:
					err = database.Put(dbIdx, key, str(fmt.Sprintf("value-%d", i)))
				case 7, 8:
					_, _, err = database.Get(dbIdx, key)
				case 9:
					_, err = database.Delete(dbIdx, key)
				}
				if err != nil {
					atomic.AddInt32(&errorCount, 1)
				}
			}
		}(w)
	}

	wg.Wait()

	if errorCount > 0 {
		t.Errorf("Encountered %d errors during concurrent usage", errorCount)
	}

	// every worker writes its own keys, so the last write of each key is known
	for w := 0; w < numWorkers; w++ {
		dbIdx := uint64(w % 4)
		for k := 0; k < 50; k++ {
			key := fmt.Sprintf("worker-%d-key-%d", w, k)
			_, _, err := database.Get(dbIdx, key)
			if err != nil {
				t.Errorf("Unexpected error for key %s: %v", key, err)
			}
		}
	}
}
