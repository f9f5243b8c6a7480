package server

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/ValentinKolb/kvbatch/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(ctx context.Context, req *common.Message, store store.IStore) *common.Message {
	if store == nil {
		return common.NewErrorResponse(batch.NewError(batch.ErrCInternal, "handler: store is nil"))
	}

	switch req.MsgType {
	case common.MsgTPipeline, common.MsgTTransaction:
	default:
		return common.NewErrorResponse(batch.NewErrorf(batch.ErrCInternal,
			"unsupported message type: %s", req.MsgType))
	}

	cmds, err := req.BatchCommands()
	if err != nil {
		return common.NewErrorResponse(err)
	}

	start := time.Now()
	replies, selected, err := store.Exec(ctx, req.DB, cmds, req.IsAtomic())
	observeBatch(req.MsgType, len(cmds), start, err)

	if err != nil {
		return common.NewErrorResponse(err)
	}

	// every command must be answered
	if len(replies) != len(cmds) {
		return common.NewErrorResponse(batch.NewError(batch.ErrCInternal,
			fmt.Sprintf("store returned %d replies for %d commands", len(replies), len(cmds))))
	}

	return common.NewBatchResponse(replies, selected)
}
