package engine

import (
	"math"
	"strconv"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/gobwas/glob"
)

// defaultScanCount is the number of keys a SCAN step visits without COUNT
const defaultScanCount = 10

func cmdMove(x *execution, args []batch.Arg) (batch.Reply, error) {
	key := args[0].String()
	dst, err := x.parseDBIndex(args[1])
	if err != nil {
		return batch.Reply{}, err
	}
	if dst == x.cur {
		return batch.Reply{}, failf("source and destination objects are the same")
	}

	entry, ok, err := x.lookup(key)
	if err != nil || !ok {
		return batch.BoolReply(false), err
	}
	if _, exists, err := x.lookupIn(dst, key); err != nil || exists {
		return batch.BoolReply(false), err
	}

	if err := x.putIn(dst, key, entry); err != nil {
		return batch.Reply{}, err
	}
	if _, err := x.delete(key); err != nil {
		return batch.Reply{}, err
	}
	return batch.BoolReply(true), nil
}

// COPY source destination [DB n] [REPLACE]
func cmdCopy(x *execution, args []batch.Arg) (batch.Reply, error) {
	src, dst := args[0].String(), args[1].String()
	dstDB := x.cur
	replace := false

	for i := 2; i < len(args); i++ {
		switch {
		case keyword(args[i], batch.DBKeyword) && i+1 < len(args):
			idx, err := x.parseDBIndex(args[i+1])
			if err != nil {
				return batch.Reply{}, err
			}
			dstDB = idx
			i++
		case keyword(args[i], batch.ReplaceKeyword):
			replace = true
		default:
			return batch.Reply{}, errSyntax
		}
	}

	if dstDB == x.cur && src == dst {
		return batch.Reply{}, failf("source and destination objects are the same")
	}

	entry, ok, err := x.lookup(src)
	if err != nil || !ok {
		return batch.BoolReply(false), err
	}
	if _, exists, err := x.lookupIn(dstDB, dst); err != nil {
		return batch.Reply{}, err
	} else if exists && !replace {
		return batch.BoolReply(false), nil
	}

	if err := x.putIn(dstDB, dst, entry); err != nil {
		return batch.Reply{}, err
	}
	return batch.BoolReply(true), nil
}

// SCAN cursor [MATCH pattern] [COUNT count] [TYPE type]
//
// The cursor is the offset into the sorted live keys of the selected
// database. A step visits count keys and returns those passing the filters,
// so a step may return fewer keys than count (also none). Cursor 0 in the
// reply marks the end of the iteration.
func cmdScan(x *execution, args []batch.Arg) (batch.Reply, error) {
	cursor, err := strconv.ParseUint(args[0].String(), 10, 64)
	if err != nil {
		return batch.Reply{}, failf("invalid cursor")
	}

	var (
		pattern  glob.Glob
		count    = int64(defaultScanCount)
		wantType string
	)
	for i := 1; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return batch.Reply{}, errSyntax
		}
		value := args[i+1]
		switch {
		case keyword(args[i], batch.MatchKeyword):
			if pattern, err = glob.Compile(value.String()); err != nil {
				return batch.Reply{}, failf("invalid MATCH pattern: %v", err)
			}
		case keyword(args[i], batch.CountKeyword):
			if count, err = parseInt(value); err != nil {
				return batch.Reply{}, err
			}
			if count < 1 {
				return batch.Reply{}, errSyntax
			}
		case keyword(args[i], batch.TypeKeyword):
			wantType = value.String()
		default:
			return batch.Reply{}, errSyntax
		}
	}

	keys, err := x.liveKeys()
	if err != nil {
		return batch.Reply{}, err
	}

	start := min(cursor, uint64(len(keys)))
	end := min(start+uint64(count), uint64(len(keys)))

	found := []batch.Reply{}
	for _, key := range keys[start:end] {
		if pattern != nil && !pattern.Match(key) {
			continue
		}
		if wantType != "" {
			entry, _, err := x.lookup(key)
			if err != nil {
				return batch.Reply{}, err
			}
			if typeName(entry) != wantType {
				continue
			}
		}
		found = append(found, batch.StringReply(key))
	}

	next := end
	if end >= uint64(len(keys)) {
		next = 0
	}
	return batch.ArrayReply([]batch.Reply{
		batch.StringReply(strconv.FormatUint(next, 10)),
		batch.ArrayReply(found),
	}), nil
}

func cmdDel(x *execution, args []batch.Arg) (batch.Reply, error) {
	var n int64
	for _, arg := range args {
		_, ok, err := x.lookup(arg.String())
		if err != nil {
			return batch.Reply{}, err
		}
		if !ok {
			continue
		}
		if _, err := x.delete(arg.String()); err != nil {
			return batch.Reply{}, err
		}
		n++
	}
	return batch.IntReply(n), nil
}

func cmdExists(x *execution, args []batch.Arg) (batch.Reply, error) {
	var n int64
	for _, arg := range args {
		_, ok, err := x.lookup(arg.String())
		if err != nil {
			return batch.Reply{}, err
		}
		if ok {
			n++
		}
	}
	return batch.IntReply(n), nil
}

// DELIFEQ key value: delete key if it holds the string value. Returns 1 if deleted.
func cmdDelIfEq(x *execution, args []batch.Arg) (batch.Reply, error) {
	key := args[0].String()
	entry, ok, err := x.lookupString(key)
	if err != nil {
		return batch.Reply{}, err
	}
	if !ok || string(entry.Str) != args[1].String() {
		return batch.IntReply(0), nil
	}
	if _, err := x.delete(key); err != nil {
		return batch.Reply{}, err
	}
	return batch.IntReply(1), nil
}

func cmdExpire(x *execution, args []batch.Arg) (batch.Reply, error) {
	key := args[0].String()
	seconds, err := parseInt(args[1])
	if err != nil {
		return batch.Reply{}, err
	}

	entry, ok, err := x.lookup(key)
	if err != nil || !ok {
		return batch.BoolReply(false), err
	}

	// a timeout in the past deletes the key
	if seconds <= 0 {
		if _, err := x.delete(key); err != nil {
			return batch.Reply{}, err
		}
		return batch.BoolReply(true), nil
	}

	expireAt, err := expireTime(x.now, seconds, 1000, false)
	if err != nil {
		return batch.Reply{}, failf("invalid expire time in 'expire' command")
	}
	entry.ExpireAt = expireAt
	if err := x.put(key, entry); err != nil {
		return batch.Reply{}, err
	}
	return batch.BoolReply(true), nil
}

// expireTime converts a timeout of n units (unitMs milliseconds each) into an
// absolute unix time in milliseconds. Absolute timeouts are taken as they are.
// Values that do not fit into an int64 are rejected.
func expireTime(now, n, unitMs int64, absolute bool) (int64, error) {
	if n <= 0 || n > math.MaxInt64/unitMs {
		return 0, errExpireRange
	}
	ms := n * unitMs
	if absolute {
		return ms, nil
	}
	if ms > math.MaxInt64-now {
		return 0, errExpireRange
	}
	return now + ms, nil
}

// TTL returns -2 for missing keys, -1 for keys without timeout and the
// remaining time to live in (rounded) seconds otherwise.
func cmdTTL(x *execution, args []batch.Arg) (batch.Reply, error) {
	entry, ok, err := x.lookup(args[0].String())
	if err != nil {
		return batch.Reply{}, err
	}
	if !ok {
		return batch.IntReply(-2), nil
	}
	if entry.ExpireAt == 0 {
		return batch.IntReply(-1), nil
	}
	return batch.IntReply((entry.ExpireAt - x.now + 500) / 1000), nil
}

func cmdPersist(x *execution, args []batch.Arg) (batch.Reply, error) {
	key := args[0].String()
	entry, ok, err := x.lookup(key)
	if err != nil || !ok || entry.ExpireAt == 0 {
		return batch.BoolReply(false), err
	}
	entry.ExpireAt = 0
	if err := x.put(key, entry); err != nil {
		return batch.Reply{}, err
	}
	return batch.BoolReply(true), nil
}

func cmdType(x *execution, args []batch.Arg) (batch.Reply, error) {
	entry, ok, err := x.lookup(args[0].String())
	if err != nil {
		return batch.Reply{}, err
	}
	if !ok {
		return batch.StringReply(string(batch.ObjectTypeNone)), nil
	}
	return batch.StringReply(typeName(entry)), nil
}

func typeName(entry db.Entry) string {
	if entry.Kind == db.KindList {
		return string(batch.ObjectTypeList)
	}
	return string(batch.ObjectTypeString)
}

func cmdRename(x *execution, args []batch.Arg) (batch.Reply, error) {
	key, newKey := args[0].String(), args[1].String()
	entry, ok, err := x.lookup(key)
	if err != nil {
		return batch.Reply{}, err
	}
	if !ok {
		return batch.Reply{}, failf("no such key")
	}
	if key == newKey {
		return batch.OKReply(), nil
	}
	if err := x.put(newKey, entry); err != nil {
		return batch.Reply{}, err
	}
	if _, err := x.delete(key); err != nil {
		return batch.Reply{}, err
	}
	return batch.OKReply(), nil
}
