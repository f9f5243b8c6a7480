package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/ValentinKolb/kvbatch/rpc/serializer"
	"github.com/ValentinKolb/kvbatch/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter stores all data needed to talk to one shard of an rpc server
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest sends a request to the shard and returns the decoded response.
// Error responses of the server are returned as *batch.Error, transport and
// serializer failures are wrapped.
func (a *rpcClientAdapter) invokeRPCRequest(ctx context.Context, req *common.Message) (*common.Message, error) {
	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	respBytes, err := a.transport.Send(ctx, a.shardId, reqBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to shard %d: %w", a.shardId, err)
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, batch.NewErrorf(batch.ErrCMalformedResponse, "failed to decode response: %s", err)
	}

	if err := resp.AsError(); err != nil {
		if resp.TraceID != "" {
			Logger.Debugf("batch failed on server (trace %s): %v", resp.TraceID, err)
		}
		return nil, err
	}

	if resp.MsgType != common.MsgTResponse {
		return nil, batch.NewErrorf(batch.ErrCMalformedResponse, "unexpected message type: %s", resp.MsgType)
	}

	return resp, nil
}
