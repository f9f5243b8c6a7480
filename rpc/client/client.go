package client

import (
	"context"
	"sync"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/ValentinKolb/kvbatch/rpc/serializer"
	"github.com/ValentinKolb/kvbatch/rpc/transport"
)

// NewRPCClient connects the transport and returns a client for one shard.
// The client starts with database 0 selected.
//
// Usage:
//
//	c, err := client.NewRPCClient(100, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	results, err := c.Exec(ctx, batch.NewBatch(true).Set("a", "1").Incr("a"), true)
func NewRPCClient(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &RPCClient{
		rpcClientAdapter: rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// RPCClient submits batches to a shard of an rpc server. It implements batch.IExecutor.
//
// Like a connection, the client remembers the database selected by the last
// successful batch and sends it along with the next one. Concurrent callers
// share this selection.
type RPCClient struct {
	rpcClientAdapter

	mu       sync.Mutex
	selected uint64
}

// Submit implements batch.IExecutor.
func (c *RPCClient) Submit(ctx context.Context, cmds []batch.Command, isAtomic bool) ([]batch.Result, error) {
	c.mu.Lock()
	dbIdx := c.selected
	c.mu.Unlock()

	resp, err := c.invokeRPCRequest(ctx, common.NewBatchRequest(dbIdx, cmds, isAtomic))
	if err != nil {
		return nil, err
	}

	if len(resp.Replies) != len(cmds) {
		return nil, batch.NewErrorf(batch.ErrCMalformedResponse,
			"got %d replies for %d commands", len(resp.Replies), len(cmds))
	}

	c.mu.Lock()
	c.selected = resp.DB
	c.mu.Unlock()

	return batch.Results(resp.Replies), nil
}

// Exec submits b through the client, see batch.Batch.Exec.
func (c *RPCClient) Exec(ctx context.Context, b *batch.Batch, raiseOnError bool) ([]batch.Result, error) {
	return b.Exec(ctx, c, raiseOnError)
}

// Selected returns the database the next batch starts in.
func (c *RPCClient) Selected() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Close closes the transport.
func (c *RPCClient) Close() error {
	return c.transport.Close()
}
