package common

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRequestFrames(t *testing.T) {
	cmds := batch.NewBatch(true).Select(1).Copy("k1", "k2", 2, false).Commands()

	req := NewBatchRequest(7, cmds, true)
	assert.Equal(t, MsgTTransaction, req.MsgType)
	assert.True(t, req.IsAtomic())
	assert.Equal(t, uint64(7), req.DB)
	require.Len(t, req.Commands, 2)
	assert.Equal(t, batch.RequestCopy, req.Commands[1].Type)
	assert.Equal(t, [][]byte{[]byte("k1"), []byte("k2"), []byte("DB"), []byte("2")}, req.Commands[1].Args)

	decoded, err := req.BatchCommands()
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	for i := range cmds {
		assert.Equal(t, cmds[i].String(), decoded[i].String())
	}

	assert.False(t, NewBatchRequest(0, nil, false).IsAtomic())
}

func TestBatchCommandsRejectsMalformedFrames(t *testing.T) {
	msg := &Message{
		MsgType:  MsgTPipeline,
		Commands: []CommandFrame{{Type: batch.RequestGet}},
	}
	_, err := msg.BatchCommands()
	assert.True(t, batch.IsCode(err, batch.ErrCMalformedArgumentList))

	msg.Commands = []CommandFrame{{Type: batch.RequestUnknown, Args: [][]byte{[]byte("a")}}}
	_, err = msg.BatchCommands()
	assert.Error(t, err)
}

func TestErrorResponse(t *testing.T) {
	resp := NewErrorResponse(batch.NewError(batch.ErrCExecAborted, "boom").WithIndex(3))
	err := resp.AsError()
	var be *batch.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, batch.ErrCExecAborted, be.Code)
	assert.Equal(t, 3, be.Index)
	assert.Equal(t, "boom", be.Msg)

	resp = NewErrorResponse(fmt.Errorf("shard not found"))
	assert.True(t, batch.IsCode(resp.AsError(), batch.ErrCInternal))
	assert.Equal(t, int64(-1), resp.Index)

	assert.NoError(t, NewBatchResponse(nil, 0).AsError())
	assert.NotNil(t, NewBatchResponse(nil, 0).Replies)
}

func TestMessageTypeJSON(t *testing.T) {
	for _, mt := range []MessageType{MsgTPipeline, MsgTTransaction, MsgTResponse, MsgTError} {
		data, err := mt.MarshalJSON()
		require.NoError(t, err)

		var decoded MessageType
		require.NoError(t, decoded.UnmarshalJSON(data))
		assert.Equal(t, mt, decoded)
	}

	var decoded MessageType
	assert.Error(t, decoded.UnmarshalJSON([]byte(`"set"`)))
}

func TestShardValidate(t *testing.T) {
	for _, shard := range []ServerShard{
		{ShardID: 1, Type: ShardTypeLocalIStore},
		{ShardID: 1, Type: ShardTypeLocalIStore, Engine: EngineBadger},
		{ShardID: 1, Type: ShardTypeRemoteIStore, Engine: EngineMemDB},
	} {
		assert.NoError(t, shard.Validate(), "%s(%s)", shard.Type, shard.Engine)
	}

	for _, shard := range []ServerShard{
		{ShardID: 1, Type: "nope"},
		{ShardID: 1, Type: ShardTypeLocalIStore, Engine: "rocksdb"},
		{ShardID: 1, Type: ShardTypeRemoteIStore, Engine: EnginePebble},
		{ShardID: 1, Type: ShardTypeRemoteIStore, Engine: EngineBadger},
	} {
		assert.Error(t, shard.Validate(), "%s(%s)", shard.Type, shard.Engine)
	}
}

func TestConfigStrings(t *testing.T) {
	server := ServerConfig{
		Shards: []ServerShard{
			{ShardID: 100, Type: ShardTypeLocalIStore},
			{ShardID: 101, Type: ShardTypeLocalIStore, Engine: EnginePebble},
			{ShardID: 200, Type: ShardTypeRemoteIStore},
		},
		ReplicaID:      1,
		ClusterMembers: map[uint64]string{2: "b:63001", 1: "a:63001"},
		DataDir:        "data",
		Transport:      ServerTransportConfig{Endpoint: ":8080"},
	}
	assert.True(t, server.HasRemoteShard())
	s := server.String()
	assert.Contains(t, s, "lstore(memdb)")
	assert.Contains(t, s, "lstore(pebble)")
	assert.Contains(t, s, "dstore(memdb)")
	assert.Less(t, strings.Index(s, "a:63001"), strings.Index(s, "b:63001"))
	assert.Equal(t, "a:63001", server.ToNodeHostConfig().RaftAddress)
	assert.Equal(t, uint64(200), server.ToDragonboatConfig(200).ShardID)

	client := ClientConfig{Transport: ClientTransportConfig{Endpoints: []string{"localhost:8080"}}}
	assert.Contains(t, client.String(), "localhost:8080")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("rpc", &buf)

	l.Debugf("hidden")
	l.Infof("shown %d", 1)
	l.SetLevel(logger.ERROR)
	l.Warningf("hidden")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO  | rpc             | shown 1")

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
	lvl, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, logger.WARNING, lvl)
}
