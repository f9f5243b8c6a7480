package dstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/ValentinKolb/kvbatch/lib/store/dstore/internal"
	"github.com/ValentinKolb/kvbatch/lib/store/engine"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	retries = 5
	log     = logger.GetLogger("store")
)

// storeImpl is the concrete implementation of the distributed store.
// It encapsulates a Dragonboat NodeHost which is used to communicate with the state machine.
type storeImpl struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	timeout time.Duration
	now     func() time.Time
}

// NewDistributedStore creates a new distributed store instance which uses raft consensus to ensure strict linearizability
// across multiple nodes.
func NewDistributedStore(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration) store.IStore {
	return &storeImpl{
		nh:      nh,
		shardID: shardID,
		cs:      nh.GetNoOPSession(shardID),
		timeout: timeout,
		now:     time.Now,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// withTimeout derives the context of a single raft request
func (s *storeImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// backoff waits before the next retry, it returns false if ctx is done
func (s *storeImpl) backoff(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.timeout / 10):
		return true
	}
}

// write proposes the batch as one raft log entry and decodes the result of the state machine.
func (s *storeImpl) write(ctx context.Context, p internal.Proposal) ([]batch.Reply, uint64, error) {
	data := p.Serialize()

	for i := 0; i < retries; i++ {
		reqCtx, cancel := s.withTimeout(ctx)
		res, err := s.nh.SyncPropose(reqCtx, s.cs, data)
		cancel()

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: System busy, retrying (%d/%d)...", i+1, retries)
			if !s.backoff(ctx) {
				return nil, p.DB, ctx.Err()
			}
			continue
		}
		if err != nil {
			return nil, p.DB, fmt.Errorf("failed to propose batch: %w", err)
		}

		if internal.ResultStatus(res.Value) != internal.ResultOK {
			return nil, p.DB, internal.DecodeError(res.Data)
		}
		replies, selected, err := internal.DecodeReplies(res.Data)
		if err != nil {
			return nil, p.DB, batch.NewErrorf(batch.ErrCInternal, "failed to decode batch result: %v", err)
		}
		return replies, selected, nil
	}
	return nil, p.DB, batch.NewError(batch.ErrCInternal, "timeout: raft shard stayed busy")
}

// read is a generic helper function that queries the state machine
// and attempts to convert the response into the expected type R.
//
// This function uses the SyncRead function (dragonboat) by default to query the state machine.
// If linearizability is not required, the stale parameter can be set to true to use the faster StaleRead function.
//
// If the read operation fails due to a system busy error, the function retries up to 5 times.
func read[R any](ctx context.Context, s *storeImpl, q internal.Query, stale bool) (R, error) {
	var zero R
	for i := 0; i < retries; i++ {

		var res interface{}
		var err error

		// Query the state machine, use StaleRead if stale is set otherwise use SyncRead (default)
		if stale {
			res, err = s.nh.StaleRead(s.shardID, q)
		} else {
			reqCtx, cancel := s.withTimeout(ctx)
			res, err = s.nh.SyncRead(reqCtx, s.shardID, q)
			cancel()
		}

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: System busy, retrying (%d/%d)...", i+1, retries)
			if !s.backoff(ctx) {
				return zero, ctx.Err()
			}
			continue
		}

		if err != nil {
			// errors of the state machine (e.g. an aborted batch) are passed through
			var be *batch.Error
			if errors.As(err, &be) {
				return zero, be
			}
			return zero, fmt.Errorf("failed to read from shard %d: %w", s.shardID, err)
		}

		// The state machine is expected to return the response in the expected type R.
		casted, ok := res.(R)
		if !ok {
			return zero, batch.NewErrorf(batch.ErrCInternal, "unexpected type: received %T, expected %T", res, zero)
		}
		return casted, nil
	}
	return zero, batch.NewError(batch.ErrCInternal, "timeout: raft shard stayed busy")
}

// --------------------------------------------------------------------------
// Interface Methods (docs see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Exec(ctx context.Context, dbIdx uint64, cmds []batch.Command, atomic bool) ([]batch.Reply, uint64, error) {
	now := s.now().UnixMilli()

	// read-only batches are not written to the log
	if engine.IsReadOnly(cmds) {
		res, err := read[internal.QueryResult](ctx, s, internal.Query{
			Type:     internal.QueryTBatch,
			DB:       dbIdx,
			Now:      now,
			Atomic:   atomic,
			Commands: cmds,
		}, false)
		if err != nil {
			return nil, dbIdx, err
		}
		return res.Replies, res.Selected, nil
	}

	return s.write(ctx, internal.Proposal{
		Atomic:   atomic,
		DB:       dbIdx,
		Now:      now,
		Commands: cmds,
	})
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return read[db.DatabaseInfo](
		context.Background(),
		s,
		internal.Query{Type: internal.QueryTGetDBInfo},
		true, // Note: allow for stale reads
	)
}

// Close does nothing, the replica is owned by the NodeHost.
func (s *storeImpl) Close() error {
	return nil
}
