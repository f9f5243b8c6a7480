package engine

import (
	"errors"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
)

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

// Engine interprets command batches against a db.KVDB.
//
// Thread-safety: Run with a batch containing writes must not be called
// concurrently with any other Run. Read-only batches may run in parallel.
type Engine struct {
	db db.KVDB
}

// New creates an engine working on database.
func New(database db.KVDB) *Engine {
	return &Engine{db: database}
}

// DB returns the database the engine works on.
func (e *Engine) DB() db.KVDB {
	return e.db
}

// IsReadOnly reports whether no command of cmds modifies data.
// Read-only batches are never journaled and never purge expired keys.
func IsReadOnly(cmds []batch.Command) bool {
	for _, cmd := range cmds {
		if !cmd.Type().IsReadOnly() {
			return false
		}
	}
	return true
}

// Run executes cmds in order, starting with dbIdx as the selected database.
// nowMs is the unix millisecond time all expiry decisions are based on.
//
// Returns one reply per command and the database selected after execution.
//
// In a pipeline (atomic == false) a failing command yields an error reply and
// execution continues with the next command.
//
// In an atomic batch every modification is journaled. The first failing
// command rolls back the journal and Run returns an ErrCExecAborted error
// carrying the index of that command together with the original dbIdx.
func (e *Engine) Run(dbIdx uint64, nowMs int64, cmds []batch.Command, atomic bool) ([]batch.Reply, uint64, error) {
	if err := db.CheckDBIndex(e.db, dbIdx); err != nil {
		return nil, dbIdx, batch.NewError(batch.ErrCCommandFailed, err.Error())
	}

	x := &execution{
		db:      e.db,
		cur:     dbIdx,
		now:     nowMs,
		atomic:  atomic,
		mutable: !IsReadOnly(cmds),
	}

	replies := make([]batch.Reply, len(cmds))
	for i, cmd := range cmds {
		reply, err := x.exec(cmd)
		if err == nil {
			replies[i] = reply
			continue
		}

		if atomic {
			if rbErr := x.rollback(); rbErr != nil {
				return nil, dbIdx, batch.NewErrorf(batch.ErrCInternal,
					"rollback after failed command %d (%s) failed: %v", i, cmd.Type(), rbErr)
			}
			return nil, dbIdx, batch.NewErrorf(batch.ErrCExecAborted,
				"transaction aborted: %s", message(err)).WithIndex(i)
		}
		replies[i] = batch.ErrorReply(err)
	}

	return replies, x.cur, nil
}

// --------------------------------------------------------------------------
// Execution State
// --------------------------------------------------------------------------

// undo is the state of one key before a modification
type undo struct {
	dbIdx   uint64
	key     string
	prev    db.Entry
	existed bool
}

// execution holds the state of a single Run
type execution struct {
	db      db.KVDB
	cur     uint64 // selected database
	now     int64
	atomic  bool
	mutable bool // false for read-only batches
	journal []undo
}

// handler executes one command. args are already checked for arity.
type handler func(x *execution, args []batch.Arg) (batch.Reply, error)

var handlers map[batch.RequestType]handler

func init() {
	handlers = map[batch.RequestType]handler{
		batch.RequestPing:    cmdPing,
		batch.RequestEcho:    cmdEcho,
		batch.RequestSelect:  cmdSelect,
		batch.RequestDBSize:  cmdDBSize,
		batch.RequestFlushDB: cmdFlushDB,

		batch.RequestMove:    cmdMove,
		batch.RequestCopy:    cmdCopy,
		batch.RequestScan:    cmdScan,
		batch.RequestDel:     cmdDel,
		batch.RequestExists:  cmdExists,
		batch.RequestDelIfEq: cmdDelIfEq,
		batch.RequestExpire:  cmdExpire,
		batch.RequestTTL:     cmdTTL,
		batch.RequestPersist: cmdPersist,
		batch.RequestKeyType: cmdType,
		batch.RequestRename:  cmdRename,

		batch.RequestSet:    cmdSet,
		batch.RequestGet:    cmdGet,
		batch.RequestGetDel: cmdGetDel,
		batch.RequestAppend: cmdAppend,
		batch.RequestStrlen: cmdStrlen,
		batch.RequestIncr:   cmdIncr,
		batch.RequestIncrBy: cmdIncrBy,
		batch.RequestDecr:   cmdDecr,
		batch.RequestDecrBy: cmdDecrBy,

		batch.RequestLPush:  cmdLPush,
		batch.RequestRPush:  cmdRPush,
		batch.RequestLPop:   cmdLPop,
		batch.RequestRPop:   cmdRPop,
		batch.RequestLLen:   cmdLLen,
		batch.RequestLRange: cmdLRange,
	}
}

func (x *execution) exec(cmd batch.Command) (batch.Reply, error) {
	h, ok := handlers[cmd.Type()]
	if !ok {
		return batch.Reply{}, failf("unknown command '%s'", cmd.Type())
	}
	// commands built outside of batch.NewCommand (e.g. decoded by hand) are checked again
	checked, err := batch.NewCommand(cmd.Type(), cmd.Args())
	if err != nil {
		return batch.Reply{}, err
	}
	return h(x, checked.Args())
}

// --------------------------------------------------------------------------
// Keyspace Access
// --------------------------------------------------------------------------

// lookupIn returns the live entry of key in database dbIdx. Expired entries
// are reported as missing and purged if the batch is allowed to write.
func (x *execution) lookupIn(dbIdx uint64, key string) (db.Entry, bool, error) {
	entry, ok, err := x.db.Get(dbIdx, key)
	if err != nil {
		return db.Entry{}, false, internal(err)
	}
	if !ok {
		return db.Entry{}, false, nil
	}
	if entry.Expired(x.now) {
		if x.mutable {
			if _, err := x.deleteIn(dbIdx, key); err != nil {
				return db.Entry{}, false, err
			}
		}
		return db.Entry{}, false, nil
	}
	return entry, true, nil
}

// lookup is lookupIn on the selected database
func (x *execution) lookup(key string) (db.Entry, bool, error) {
	return x.lookupIn(x.cur, key)
}

// lookupString returns the string value of key or a WRONGTYPE error
func (x *execution) lookupString(key string) (db.Entry, bool, error) {
	entry, ok, err := x.lookup(key)
	if err != nil || !ok {
		return entry, ok, err
	}
	if entry.Kind != db.KindString {
		return db.Entry{}, false, errWrongType
	}
	return entry, true, nil
}

// lookupList returns the list value of key or a WRONGTYPE error
func (x *execution) lookupList(key string) (db.Entry, bool, error) {
	entry, ok, err := x.lookup(key)
	if err != nil || !ok {
		return entry, ok, err
	}
	if entry.Kind != db.KindList {
		return db.Entry{}, false, errWrongType
	}
	return entry, true, nil
}

// record journals the current state of key before it is modified
func (x *execution) record(dbIdx uint64, key string) error {
	if !x.atomic {
		return nil
	}
	prev, existed, err := x.db.Get(dbIdx, key)
	if err != nil {
		return internal(err)
	}
	x.journal = append(x.journal, undo{dbIdx: dbIdx, key: key, prev: prev, existed: existed})
	return nil
}

func (x *execution) putIn(dbIdx uint64, key string, entry db.Entry) error {
	if err := x.record(dbIdx, key); err != nil {
		return err
	}
	if err := x.db.Put(dbIdx, key, entry); err != nil {
		return internal(err)
	}
	return nil
}

func (x *execution) put(key string, entry db.Entry) error {
	return x.putIn(x.cur, key, entry)
}

func (x *execution) deleteIn(dbIdx uint64, key string) (bool, error) {
	if err := x.record(dbIdx, key); err != nil {
		return false, err
	}
	deleted, err := x.db.Delete(dbIdx, key)
	if err != nil {
		return false, internal(err)
	}
	return deleted, nil
}

func (x *execution) delete(key string) (bool, error) {
	return x.deleteIn(x.cur, key)
}

// flush removes all keys of the selected database
func (x *execution) flush() error {
	if x.atomic {
		keys, err := x.db.Keys(x.cur)
		if err != nil {
			return internal(err)
		}
		for _, key := range keys {
			if err := x.record(x.cur, key); err != nil {
				return err
			}
		}
	}
	if err := x.db.Flush(x.cur); err != nil {
		return internal(err)
	}
	return nil
}

// liveKeys returns the sorted live keys of the selected database
func (x *execution) liveKeys() ([]string, error) {
	keys, err := x.db.Keys(x.cur)
	if err != nil {
		return nil, internal(err)
	}
	live := keys[:0]
	for _, key := range keys {
		_, ok, err := x.lookup(key)
		if err != nil {
			return nil, err
		}
		if ok {
			live = append(live, key)
		}
	}
	return live, nil
}

// rollback undoes every journaled modification in reverse order
func (x *execution) rollback() error {
	for i := len(x.journal) - 1; i >= 0; i-- {
		u := x.journal[i]
		var err error
		if u.existed {
			err = x.db.Put(u.dbIdx, u.key, u.prev)
		} else {
			_, err = x.db.Delete(u.dbIdx, u.key)
		}
		if err != nil {
			return err
		}
	}
	x.journal = nil
	return nil
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	errWrongType = batch.NewError(batch.ErrCCommandFailed,
		"WRONGTYPE Operation against a key holding the wrong kind of value")
	errNotInteger = batch.NewError(batch.ErrCCommandFailed,
		"value is not an integer or out of range")
	errSyntax      = batch.NewError(batch.ErrCCommandFailed, "syntax error")
	errExpireRange = batch.NewError(batch.ErrCCommandFailed, "expire time out of range")
)

// failf creates a command failure
func failf(format string, args ...any) error {
	return batch.NewErrorf(batch.ErrCCommandFailed, format, args...)
}

// internal wraps a storage error
func internal(err error) error {
	return batch.NewErrorf(batch.ErrCInternal, "storage error: %v", err)
}

// message returns the bare message of err
func message(err error) string {
	var be *batch.Error
	if errors.As(err, &be) {
		return be.Msg
	}
	return err.Error()
}
