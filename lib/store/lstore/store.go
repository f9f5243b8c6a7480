package lstore

import (
	"context"
	"sync"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/ValentinKolb/kvbatch/lib/store/engine"
)

type storeImpl struct {
	engine *engine.Engine
	mu     sync.RWMutex
	now    func() time.Time
	index  uint64 // number of applied writing batches
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
func NewLocalStore(factory store.DBFactory) store.IStore {
	return newLocalStore(factory(), time.Now)
}

func newLocalStore(database db.KVDB, now func() time.Time) *storeImpl {
	return &storeImpl{
		engine: engine.New(database),
		now:    now,
		index:  database.WriteIdx(),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Exec(ctx context.Context, dbIdx uint64, cmds []batch.Command, atomic bool) ([]batch.Reply, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbIdx, err
	}

	if engine.IsReadOnly(cmds) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.engine.Run(dbIdx, s.now().UnixMilli(), cmds, atomic)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replies, selected, err := s.engine.Run(dbIdx, s.now().UnixMilli(), cmds, atomic)
	if err == nil {
		s.index++
		s.engine.DB().SetWriteIdx(s.index)
	}
	return replies, selected, err
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.engine.DB().GetInfo(), nil
}

func (s *storeImpl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DB().Close()
}
