package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandStrings(b *Batch) []string {
	out := make([]string, 0, b.Len())
	for _, cmd := range b.Commands() {
		out = append(out, cmd.String())
	}
	return out
}

func TestSelectAndCopy(t *testing.T) {
	b := NewBatch(true).Select(1).Copy("k1", "k2", 2, false)

	require.NoError(t, b.Err())
	assert.True(t, b.IsAtomic())
	assert.Equal(t, []string{"SELECT 1", "COPY k1 k2 DB 2"}, commandStrings(b))

	cmds := b.Commands()
	assert.Equal(t, RequestSelect, cmds[0].Type())
	assert.Equal(t, RequestCopy, cmds[1].Type())
	assert.Equal(t, 4, cmds[1].NumArgs())
}

func TestCopyReplaceToken(t *testing.T) {
	b := NewBatch(false).Copy("src", []byte("dst"), 0, true)
	require.NoError(t, b.Err())
	assert.Equal(t, []string{"COPY src dst DB 0 REPLACE"}, commandStrings(b))

	b = NewBatch(false).CopyWithOptions("src", "dst", NewCopyOptions())
	require.NoError(t, b.Err())
	assert.Equal(t, []string{"COPY src dst"}, commandStrings(b))
}

func TestOperationArgumentOrder(t *testing.T) {
	b := NewBatch(false).
		Move("k", 3).
		Scan("0").
		ScanWithOptions("17", NewScanOptions().SetMatch("user:*").SetCount(10).SetType(ObjectTypeList)).
		Set("a", "1").
		SetWithOptions("a", "2", NewSetOptions().SetOnlyIfEquals("1").SetReturnOldValue(true).SetExpiry(NewExpiryIn(5*time.Second))).
		Get("a").
		Del("a", "b").
		IncrBy("n", -4).
		Expire("a", 30).
		Rename("a", "b").
		RPush("l", "x", []byte("y")).
		LRange("l", 0, -1).
		DelIfEq("lock", "owner").
		DBSize().
		Ping()

	require.NoError(t, b.Err())
	assert.Equal(t, []string{
		"MOVE k 3",
		"SCAN 0",
		"SCAN 17 MATCH user:* COUNT 10 TYPE list",
		"SET a 1",
		"SET a 2 IFEQ 1 GET EX 5",
		"GET a",
		"DEL a b",
		"INCRBY n -4",
		"EXPIRE a 30",
		"RENAME a b",
		"RPUSH l x y",
		"LRANGE l 0 -1",
		"DELIFEQ lock owner",
		"DBSIZE",
		"PING",
	}, commandStrings(b))
}

func TestOrderPreservation(t *testing.T) {
	b := NewBatch(false)
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			b.Set("k", "v")
		} else {
			b.Get("k")
		}
	}
	require.Equal(t, 100, b.Len())
	for i, cmd := range b.Commands() {
		if i%2 == 0 {
			assert.Equal(t, RequestSet, cmd.Type(), "command %d", i)
		} else {
			assert.Equal(t, RequestGet, cmd.Type(), "command %d", i)
		}
	}
}

func TestFluentIdentity(t *testing.T) {
	b := NewBatch(false)
	assert.Same(t, b, b.Select(0))
	assert.Same(t, b, b.Set("a", "b"))
	assert.Same(t, b, b.Set(1, "b"))
	assert.Same(t, b, b.Scan("0"))
	assert.Same(t, b, b.LPush("l", "x"))
	assert.Same(t, b, b.FlushDB())
}

func TestAppendAtomicity(t *testing.T) {
	b := NewBatch(false).Set("a", "1")
	before := b.Commands()

	// every kind of invalid call leaves the sequence untouched
	b.Set(42, "x")
	b.Move(struct{}{}, 1)
	b.Copy("k1", 3.5, 2, true)
	b.Scan(nil)
	b.RPush("l", "ok", 7)
	b.ScanWithOptions("0", NewScanOptions().SetCount(-1))

	assert.Equal(t, before, b.Commands())
	require.Error(t, b.Err())
	assert.Len(t, b.Errors(), 6)
	for _, err := range b.Errors() {
		assert.True(t, IsCode(err, ErrCInvalidArgumentType), err.Error())
	}

	// prior appends are kept and later calls are validated independently
	b.Get("a")
	assert.Equal(t, []string{"SET a 1", "GET a"}, commandStrings(b))
}

func TestRecordedErrorCarriesIndex(t *testing.T) {
	b := NewBatch(false).Set("a", "1").Get(1)
	errs := b.Errors()
	require.Len(t, errs, 1)

	var be *Error
	require.ErrorAs(t, errs[0], &be)
	assert.Equal(t, 1, be.Index)
}

func TestArityViolation(t *testing.T) {
	b := NewBatch(false).Del()
	assert.Equal(t, 0, b.Len())
	assert.True(t, IsCode(b.Err(), ErrCMalformedArgumentList))

	b = NewBatch(false).LPush("l")
	assert.Equal(t, 0, b.Len())
	assert.True(t, IsCode(b.Err(), ErrCMalformedArgumentList))
}

func TestClusterBatch(t *testing.T) {
	b := NewClusterBatch(true).
		Set("a", "1").
		Select(1).
		Move("a", 2).
		Copy("a", "b", 1, false).
		CopyWithOptions("a", "b", NewCopyOptions().SetReplace()).
		Get("a")

	assert.True(t, b.IsCluster())
	assert.Equal(t, []string{"SET a 1", "COPY a b REPLACE", "GET a"}, commandStrings(b))

	errs := b.Errors()
	require.Len(t, errs, 3)
	for _, err := range errs {
		assert.True(t, IsCode(err, ErrCUnsupportedInCluster), err.Error())
	}

	// the same operations are fine in a standalone batch
	b = NewBatch(true).Select(1).Move("a", 2).Copy("a", "b", 1, false)
	assert.NoError(t, b.Err())
	assert.Equal(t, 3, b.Len())
}

func TestAppendPrebuiltCommand(t *testing.T) {
	b := NewBatch(false).AppendCommand(MustCommand(RequestEcho, Text("hi")))
	require.NoError(t, b.Err())
	assert.Equal(t, []string{"ECHO hi"}, commandStrings(b))

	b = NewClusterBatch(false).AppendCommand(MustCommand(RequestSelect, Text("3")))
	assert.Equal(t, 0, b.Len())
	assert.True(t, IsCode(b.Err(), ErrCUnsupportedInCluster))
}

func TestCommandsReturnsCopy(t *testing.T) {
	b := NewBatch(false).Set("a", "1")
	cmds := b.Commands()
	cmds[0] = MustCommand(RequestPing)
	assert.Equal(t, RequestSet, b.Commands()[0].Type())
}
