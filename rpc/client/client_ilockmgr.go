package client

import (
	"github.com/ValentinKolb/kvbatch/lib/lockmgr"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/ValentinKolb/kvbatch/rpc/serializer"
	"github.com/ValentinKolb/kvbatch/rpc/transport"
)

// NewRPCLockMgr creates a lock manager whose locks live on the given shard.
// Every lock operation is a single atomic batch, so no server side support is needed.
func NewRPCLockMgr(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (lockmgr.ILockManager, *RPCClient, error) {
	c, err := NewRPCClient(shardId, config, transport, serializer)
	if err != nil {
		return nil, nil, err
	}
	return lockmgr.NewLockManager(c), c, nil
}
