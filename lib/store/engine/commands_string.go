package engine

import (
	"math"
	"strconv"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
)

// setArgs are the parsed optional arguments of SET
type setArgs struct {
	condition batch.ConditionalSet
	compareTo string
	getOld    bool
	expireAt  int64 // 0 = no expiry
	keepTTL   bool
}

// parseSetArgs parses [NX|XX|IFEQ v] [GET] [EX s|PX ms|EXAT s|PXAT ms|KEEPTTL]
// in any order. Conflicting flags are a syntax error.
func (x *execution) parseSetArgs(args []batch.Arg) (setArgs, error) {
	var (
		opts      setArgs
		hasExpiry bool
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case keyword(arg, batch.OnlyIfNotExists), keyword(arg, batch.OnlyIfExists):
			if opts.condition != batch.SetAlways {
				return opts, errSyntax
			}
			if keyword(arg, batch.OnlyIfNotExists) {
				opts.condition = batch.SetIfNotExists
			} else {
				opts.condition = batch.SetIfExists
			}
		case keyword(arg, batch.OnlyIfEquals):
			if opts.condition != batch.SetAlways || i+1 >= len(args) {
				return opts, errSyntax
			}
			opts.condition = batch.SetIfValueEquals
			opts.compareTo = args[i+1].String()
			i++
		case keyword(arg, batch.ReturnOldValue):
			opts.getOld = true
		case keyword(arg, string(batch.KeepExisting)):
			if hasExpiry {
				return opts, errSyntax
			}
			hasExpiry, opts.keepTTL = true, true
		case keyword(arg, string(batch.Seconds)), keyword(arg, string(batch.Milliseconds)),
			keyword(arg, string(batch.UnixSeconds)), keyword(arg, string(batch.UnixMilliseconds)):
			if hasExpiry || i+1 >= len(args) {
				return opts, errSyntax
			}
			n, err := parseInt(args[i+1])
			if err != nil {
				return opts, err
			}
			var expireAt int64
			switch {
			case keyword(arg, string(batch.Seconds)):
				expireAt, err = expireTime(x.now, n, 1000, false)
			case keyword(arg, string(batch.Milliseconds)):
				expireAt, err = expireTime(x.now, n, 1, false)
			case keyword(arg, string(batch.UnixSeconds)):
				expireAt, err = expireTime(x.now, n, 1000, true)
			default:
				expireAt, err = expireTime(x.now, n, 1, true)
			}
			if err != nil {
				return opts, failf("invalid expire time in 'set' command")
			}
			opts.expireAt = expireAt
			hasExpiry = true
			i++
		default:
			return opts, errSyntax
		}
	}
	return opts, nil
}

// SET key value [options]
//
// Replies OK (or the old value with GET). If the condition is not met
// nothing is written and the reply is nil (or the old value with GET).
func cmdSet(x *execution, args []batch.Arg) (batch.Reply, error) {
	key := args[0].String()
	opts, err := x.parseSetArgs(args[2:])
	if err != nil {
		return batch.Reply{}, err
	}

	old, exists, err := x.lookup(key)
	if err != nil {
		return batch.Reply{}, err
	}
	oldIsString := exists && old.Kind == db.KindString
	if exists && !oldIsString && (opts.getOld || opts.condition == batch.SetIfValueEquals) {
		return batch.Reply{}, errWrongType
	}

	oldReply := batch.NilReply()
	if oldIsString {
		oldReply = batch.StringReply(string(old.Str))
	}

	var write bool
	switch opts.condition {
	case batch.SetIfNotExists:
		write = !exists
	case batch.SetIfExists:
		write = exists
	case batch.SetIfValueEquals:
		write = oldIsString && string(old.Str) == opts.compareTo
	default:
		write = true
	}

	if write {
		entry := db.Entry{Kind: db.KindString, Str: args[1].Bytes(), ExpireAt: opts.expireAt}
		if opts.keepTTL && exists {
			entry.ExpireAt = old.ExpireAt
		}
		if err := x.put(key, entry); err != nil {
			return batch.Reply{}, err
		}
	}

	switch {
	case opts.getOld:
		return oldReply, nil
	case write:
		return batch.OKReply(), nil
	default:
		return batch.NilReply(), nil
	}
}

func cmdGet(x *execution, args []batch.Arg) (batch.Reply, error) {
	entry, ok, err := x.lookupString(args[0].String())
	if err != nil || !ok {
		return batch.NilReply(), err
	}
	return batch.StringReply(string(entry.Str)), nil
}

func cmdGetDel(x *execution, args []batch.Arg) (batch.Reply, error) {
	key := args[0].String()
	entry, ok, err := x.lookupString(key)
	if err != nil || !ok {
		return batch.NilReply(), err
	}
	if _, err := x.delete(key); err != nil {
		return batch.Reply{}, err
	}
	return batch.StringReply(string(entry.Str)), nil
}

func cmdAppend(x *execution, args []batch.Arg) (batch.Reply, error) {
	key := args[0].String()
	entry, ok, err := x.lookupString(key)
	if err != nil {
		return batch.Reply{}, err
	}
	if !ok {
		entry = db.Entry{Kind: db.KindString}
	}
	entry.Str = append(entry.Str, args[1].Bytes()...)
	if err := x.put(key, entry); err != nil {
		return batch.Reply{}, err
	}
	return batch.IntReply(int64(len(entry.Str))), nil
}

func cmdStrlen(x *execution, args []batch.Arg) (batch.Reply, error) {
	entry, _, err := x.lookupString(args[0].String())
	if err != nil {
		return batch.Reply{}, err
	}
	return batch.IntReply(int64(len(entry.Str))), nil
}

// --------------------------------------------------------------------------
// Counters
// --------------------------------------------------------------------------

func cmdIncr(x *execution, args []batch.Arg) (batch.Reply, error) {
	return x.incrBy(args[0].String(), 1)
}

func cmdDecr(x *execution, args []batch.Arg) (batch.Reply, error) {
	return x.incrBy(args[0].String(), -1)
}

func cmdIncrBy(x *execution, args []batch.Arg) (batch.Reply, error) {
	n, err := parseInt(args[1])
	if err != nil {
		return batch.Reply{}, err
	}
	return x.incrBy(args[0].String(), n)
}

func cmdDecrBy(x *execution, args []batch.Arg) (batch.Reply, error) {
	n, err := parseInt(args[1])
	if err != nil {
		return batch.Reply{}, err
	}
	if n == math.MinInt64 {
		return batch.Reply{}, failf("decrement would overflow")
	}
	return x.incrBy(args[0].String(), -n)
}

// incrBy adds delta to the integer stored at key (missing keys count as 0),
// keeping the timeout of the key.
func (x *execution) incrBy(key string, delta int64) (batch.Reply, error) {
	entry, ok, err := x.lookupString(key)
	if err != nil {
		return batch.Reply{}, err
	}

	var current int64
	if ok {
		if current, err = strconv.ParseInt(string(entry.Str), 10, 64); err != nil {
			return batch.Reply{}, errNotInteger
		}
	} else {
		entry = db.Entry{Kind: db.KindString}
	}

	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return batch.Reply{}, failf("increment or decrement would overflow")
	}
	current += delta

	entry.Str = strconv.AppendInt(nil, current, 10)
	if err := x.put(key, entry); err != nil {
		return batch.Reply{}, err
	}
	return batch.IntReply(current), nil
}
