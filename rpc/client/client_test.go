package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/ValentinKolb/kvbatch/rpc/serializer"
	"github.com/ValentinKolb/kvbatch/rpc/server"
	"github.com/ValentinKolb/kvbatch/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopback connects a client directly to the handler of a server
type loopback struct {
	handler transport.ServerHandleFunc
	// reply overrides the server response if set
	reply func(req []byte) []byte
	err   error
}

func (l *loopback) RegisterHandler(handler transport.ServerHandleFunc) { l.handler = handler }
func (l *loopback) Listen(common.ServerConfig) error                   { return nil }
func (l *loopback) Connect(common.ClientConfig) error                  { return nil }
func (l *loopback) Close() error                                       { return nil }

func (l *loopback) Send(ctx context.Context, shardId uint64, req []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.err != nil {
		return nil, l.err
	}
	if l.reply != nil {
		return l.reply(req), nil
	}
	return l.handler(shardId, req), nil
}

func newTestClient(t *testing.T, ser serializer.IRPCSerializer) (*RPCClient, *loopback) {
	t.Helper()
	lb := &loopback{}
	s := server.NewRPCServer(common.ServerConfig{
		Shards:   []common.ServerShard{{ShardID: 100, Type: common.ShardTypeLocalIStore}},
		LogLevel: "error",
	}, lb, ser)
	require.NoError(t, s.Serve())
	t.Cleanup(func() { _ = s.Close() })

	c, err := NewRPCClient(100, common.ClientConfig{}, lb, ser)
	require.NoError(t, err)
	return c, lb
}

func TestExecPipeline(t *testing.T) {
	for name, ser := range map[string]serializer.IRPCSerializer{
		"binary": serializer.NewBinarySerializer(),
		"json":   serializer.NewJSONSerializer(),
		"gob":    serializer.NewGOBSerializer(),
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, ser)
			ctx := context.Background()

			b := batch.NewBatch(false).
				Set("a", "1").
				Incr("a").
				RPush("l", "x", "y").
				LRange("l", 0, -1).
				Get("missing")
			results, err := c.Exec(ctx, b, false)
			require.NoError(t, err)
			require.Len(t, results, 5)

			assert.Equal(t, []any{"OK", int64(2), int64(2), []any{"x", "y"}, nil}, batch.Values(results))
		})
	}
}

func TestExecPipelineKeepsGoingAfterFailure(t *testing.T) {
	c, _ := newTestClient(t, serializer.NewBinarySerializer())
	ctx := context.Background()

	b := batch.NewBatch(false).Set("s", "text").Incr("s").Set("after", "1")
	results, err := c.Exec(ctx, b, false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	// raiseOnError reports the first failing command
	b = batch.NewBatch(false).Set("s", "text").Incr("s")
	_, err = c.Exec(ctx, b, true)
	require.Error(t, err)
	var be *batch.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Index)
}

func TestExecTransactionAbort(t *testing.T) {
	c, _ := newTestClient(t, serializer.NewBinarySerializer())
	ctx := context.Background()

	b := batch.NewBatch(true).Set("x", "1").Set("s", "text").Incr("s")
	_, err := c.Exec(ctx, b, true)
	require.Error(t, err)
	assert.True(t, batch.IsCode(err, batch.ErrCExecAborted))

	results, err := c.Exec(ctx, batch.NewBatch(false).Exists("x"), true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), results[0].Value)
}

func TestSelectedDatabaseCarriesOver(t *testing.T) {
	c, _ := newTestClient(t, serializer.NewBinarySerializer())
	ctx := context.Background()

	_, err := c.Exec(ctx, batch.NewBatch(false).Select(2).Set("k", "v"), true)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), c.Selected())

	results, err := c.Exec(ctx, batch.NewBatch(false).Get("k"), true)
	require.NoError(t, err)
	assert.Equal(t, "v", results[0].Value)

	// a failed transaction does not change the selection
	_, err = c.Exec(ctx, batch.NewBatch(true).Select(0).Set("s", "text").Incr("s"), true)
	require.Error(t, err)
	assert.Equal(t, uint64(2), c.Selected())
}

func TestMalformedResponses(t *testing.T) {
	c, lb := newTestClient(t, serializer.NewBinarySerializer())
	ctx := context.Background()
	ser := serializer.NewBinarySerializer()

	// undecodable
	lb.reply = func([]byte) []byte { return []byte{0xff} }
	_, err := c.Exec(ctx, batch.NewBatch(false).Get("a"), false)
	assert.True(t, batch.IsCode(err, batch.ErrCMalformedResponse))

	// wrong number of replies
	lb.reply = func([]byte) []byte {
		data, _ := ser.Serialize(*common.NewBatchResponse([]batch.Reply{batch.NilReply(), batch.NilReply()}, 0))
		return data
	}
	_, err = c.Exec(ctx, batch.NewBatch(false).Get("a"), false)
	assert.True(t, batch.IsCode(err, batch.ErrCMalformedResponse))

	// a request echoed back is not a response
	lb.reply = func(req []byte) []byte { return req }
	_, err = c.Exec(ctx, batch.NewBatch(false).Get("a"), false)
	assert.True(t, batch.IsCode(err, batch.ErrCMalformedResponse))
}

func TestTransportErrorsAreWrapped(t *testing.T) {
	c, lb := newTestClient(t, serializer.NewBinarySerializer())

	sentinel := errors.New("connection reset")
	lb.err = sentinel
	_, err := c.Exec(context.Background(), batch.NewBatch(false).Get("a"), false)
	assert.ErrorIs(t, err, sentinel)

	lb.err = nil
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	_, err = c.Exec(ctx, batch.NewBatch(false).Get("a"), false)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRPCLockMgr(t *testing.T) {
	lb := &loopback{}
	ser := serializer.NewBinarySerializer()
	s := server.NewRPCServer(common.ServerConfig{
		Shards:   []common.ServerShard{{ShardID: 7, Type: common.ShardTypeLocalIStore}},
		LogLevel: "error",
	}, lb, ser)
	require.NoError(t, s.Serve())
	defer s.Close()

	lm, c, err := NewRPCLockMgr(7, common.ClientConfig{}, lb, ser)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	ok, owner, err := lm.AcquireLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = lm.AcquireLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = lm.ReleaseLock(ctx, "job", owner)
	require.NoError(t, err)
	assert.True(t, ok)
}
