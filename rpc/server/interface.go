package server

import (
	"context"

	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/ValentinKolb/kvbatch/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle runs the request against the store and returns the response.
	// Failures are reported as an error response, never as a nil message.
	Handle(ctx context.Context, req *common.Message, store store.IStore) (resp *common.Message)
}
