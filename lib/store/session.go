package store

import (
	"context"
	"sync"

	"github.com/ValentinKolb/kvbatch/lib/batch"
)

// Session adapts an IStore into a batch.IExecutor. It remembers the database
// selected by previous batches, like a connection to a server would.
//
// Thread-safety: a Session may be shared, but batches of concurrent callers
// then see each other's SELECT.
type Session struct {
	store IStore

	mu       sync.Mutex
	selected uint64
}

// NewSession creates a session on s with database 0 selected.
func NewSession(s IStore) *Session {
	return &Session{store: s}
}

// Selected returns the currently selected database.
func (s *Session) Selected() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Submit implements batch.IExecutor.
func (s *Session) Submit(ctx context.Context, cmds []batch.Command, isAtomic bool) ([]batch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replies, selected, err := s.store.Exec(ctx, s.selected, cmds, isAtomic)
	if err != nil {
		return nil, err
	}
	s.selected = selected
	return batch.Results(replies), nil
}
