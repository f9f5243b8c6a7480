package serve

import (
	"testing"

	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShards(t *testing.T) {
	shards, err := parseShards("100=lstore, 101=lstore(pebble),102=lstore(badger),200=dstore(memdb)")
	require.NoError(t, err)
	assert.Equal(t, []common.ServerShard{
		{ShardID: 100, Type: common.ShardTypeLocalIStore},
		{ShardID: 101, Type: common.ShardTypeLocalIStore, Engine: common.EnginePebble},
		{ShardID: 102, Type: common.ShardTypeLocalIStore, Engine: common.EngineBadger},
		{ShardID: 200, Type: common.ShardTypeRemoteIStore, Engine: common.EngineMemDB},
	}, shards)
}

func TestParseShardsErrors(t *testing.T) {
	for _, spec := range []string{
		"100",
		"abc=lstore",
		"100=lockmgr(lstore)",
		"100=lstore(rocksdb)",
		"100=lstore(pebble",
		"200=dstore(pebble)",
		"200=dstore(badger)",
	} {
		_, err := parseShards(spec)
		assert.Error(t, err, spec)
	}
}
