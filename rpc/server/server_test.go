package server

import (
	"context"
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/ValentinKolb/kvbatch/rpc/serializer"
	"github.com/ValentinKolb/kvbatch/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport captures the handler instead of listening
type fakeTransport struct {
	handler transport.ServerHandleFunc
	closed  bool
}

func (f *fakeTransport) RegisterHandler(handler transport.ServerHandleFunc) { f.handler = handler }
func (f *fakeTransport) Listen(common.ServerConfig) error                   { return nil }
func (f *fakeTransport) Close() error                                       { f.closed = true; return nil }

func newTestServer(t *testing.T) (*fakeTransport, serializer.IRPCSerializer) {
	t.Helper()
	ft := &fakeTransport{}
	ser := serializer.NewBinarySerializer()
	s := NewRPCServer(common.ServerConfig{
		Shards: []common.ServerShard{
			{ShardID: 1, Type: common.ShardTypeLocalIStore},
			{ShardID: 2, Type: common.ShardTypeLocalIStore, Engine: common.EngineMemDB},
		},
		TimeoutSecond: 5,
		LogLevel:      "error",
	}, ft, ser)
	require.NoError(t, s.Serve())
	require.NotNil(t, ft.handler)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
		assert.True(t, ft.closed)
	})
	return ft, ser
}

func roundTrip(t *testing.T, ft *fakeTransport, ser serializer.IRPCSerializer, shard uint64, req *common.Message) common.Message {
	t.Helper()
	data, err := ser.Serialize(*req)
	require.NoError(t, err)
	var resp common.Message
	require.NoError(t, ser.Deserialize(ft.handler(shard, data), &resp))
	return resp
}

func commands(b *batch.Batch) []batch.Command { return b.Commands() }

func TestServePipeline(t *testing.T) {
	ft, ser := newTestServer(t)

	b := batch.NewBatch(false).Set("a", "1").Get("a").Incr("a").Get("missing")
	resp := roundTrip(t, ft, ser, 1, common.NewBatchRequest(0, commands(b), false))

	require.Equal(t, common.MsgTResponse, resp.MsgType)
	require.NoError(t, resp.AsError())
	require.Len(t, resp.Replies, 4)
	assert.Equal(t, batch.OKReply(), resp.Replies[0])
	assert.Equal(t, batch.StringReply("1"), resp.Replies[1])
	assert.Equal(t, batch.IntReply(2), resp.Replies[2])
	assert.Equal(t, batch.NilReply(), resp.Replies[3])
	assert.NotEmpty(t, resp.TraceID)
}

func TestServeSelectTravelsWithResponse(t *testing.T) {
	ft, ser := newTestServer(t)

	b := batch.NewBatch(false).Select(3).Set("k", "v")
	resp := roundTrip(t, ft, ser, 1, common.NewBatchRequest(0, commands(b), false))
	require.NoError(t, resp.AsError())
	assert.Equal(t, uint64(3), resp.DB)

	// db 0 does not see the key, db 3 does
	get := commands(batch.NewBatch(false).Get("k"))
	resp = roundTrip(t, ft, ser, 1, common.NewBatchRequest(0, get, false))
	assert.Equal(t, batch.NilReply(), resp.Replies[0])
	resp = roundTrip(t, ft, ser, 1, common.NewBatchRequest(3, get, false))
	assert.Equal(t, batch.StringReply("v"), resp.Replies[0])
}

func TestServeTransactionAbort(t *testing.T) {
	ft, ser := newTestServer(t)

	// INCR on a non numeric value aborts the whole transaction
	b := batch.NewBatch(true).Set("x", "1").Set("s", "text").Incr("s")
	resp := roundTrip(t, ft, ser, 2, common.NewBatchRequest(0, commands(b), true))

	require.Equal(t, common.MsgTError, resp.MsgType)
	err := resp.AsError()
	assert.True(t, batch.IsCode(err, batch.ErrCExecAborted))
	assert.Equal(t, int64(2), resp.Index)

	// nothing of the aborted batch is visible
	get := commands(batch.NewBatch(false).Get("x"))
	resp = roundTrip(t, ft, ser, 2, common.NewBatchRequest(0, get, false))
	assert.Equal(t, batch.NilReply(), resp.Replies[0])
}

func TestServeShardsAreIsolated(t *testing.T) {
	ft, ser := newTestServer(t)

	set := commands(batch.NewBatch(false).Set("k", "v"))
	get := commands(batch.NewBatch(false).Get("k"))
	roundTrip(t, ft, ser, 1, common.NewBatchRequest(0, set, false))

	resp := roundTrip(t, ft, ser, 2, common.NewBatchRequest(0, get, false))
	assert.Equal(t, batch.NilReply(), resp.Replies[0])
}

func TestServeErrors(t *testing.T) {
	ft, ser := newTestServer(t)
	get := commands(batch.NewBatch(false).Get("k"))

	// unknown shard
	resp := roundTrip(t, ft, ser, 99, common.NewBatchRequest(0, get, false))
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Contains(t, resp.Err, "shard 99 not found")

	// garbage request
	var msg common.Message
	require.NoError(t, ser.Deserialize(ft.handler(1, []byte{1, 2, 3}), &msg))
	assert.Equal(t, common.MsgTError, msg.MsgType)
	assert.True(t, batch.IsCode(msg.AsError(), batch.ErrCInternal))

	// malformed command frame
	resp = roundTrip(t, ft, ser, 1, &common.Message{
		MsgType:  common.MsgTPipeline,
		Commands: []common.CommandFrame{{Type: batch.RequestGet}},
	})
	assert.True(t, batch.IsCode(resp.AsError(), batch.ErrCMalformedArgumentList))

	// responses are not valid requests
	resp = roundTrip(t, ft, ser, 1, common.NewBatchResponse(nil, 0))
	assert.Equal(t, common.MsgTError, resp.MsgType)
}

func TestAdapterNilStore(t *testing.T) {
	resp := NewIStoreServerAdapter().Handle(context.Background(), common.NewBatchRequest(0, nil, false), nil)
	assert.Equal(t, common.MsgTError, resp.MsgType)
}

func TestInitRejectsBadConfig(t *testing.T) {
	for name, shards := range map[string][]common.ServerShard{
		"duplicate": {{ShardID: 1, Type: common.ShardTypeLocalIStore}, {ShardID: 1, Type: common.ShardTypeLocalIStore}},
		"engine":    {{ShardID: 1, Type: common.ShardTypeLocalIStore, Engine: "nope"}},
		"type":      {{ShardID: 1, Type: "nope"}},
		"raft-disk": {{ShardID: 1, Type: common.ShardTypeRemoteIStore, Engine: common.EnginePebble}},
	} {
		t.Run(name, func(t *testing.T) {
			s := NewRPCServer(common.ServerConfig{Shards: shards}, &fakeTransport{}, serializer.NewJSONSerializer())
			assert.Error(t, s.Serve())
		})
	}
}
