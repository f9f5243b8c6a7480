package engine

import (
	"slices"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
)

func cmdLPush(x *execution, args []batch.Arg) (batch.Reply, error) {
	return x.push(args[0].String(), args[1:], true)
}

func cmdRPush(x *execution, args []batch.Arg) (batch.Reply, error) {
	return x.push(args[0].String(), args[1:], false)
}

// push inserts the elements one after another at the head (LPUSH) or the
// tail (RPUSH), so LPUSH k a b c results in [c b a]. Replies the new length.
func (x *execution) push(key string, elements []batch.Arg, head bool) (batch.Reply, error) {
	entry, ok, err := x.lookupList(key)
	if err != nil {
		return batch.Reply{}, err
	}
	if !ok {
		entry = db.Entry{Kind: db.KindList}
	}

	values := make([][]byte, len(elements))
	for i, el := range elements {
		values[i] = el.Bytes()
	}
	if head {
		slices.Reverse(values)
		entry.List = append(values, entry.List...)
	} else {
		entry.List = append(entry.List, values...)
	}

	if err := x.put(key, entry); err != nil {
		return batch.Reply{}, err
	}
	return batch.IntReply(int64(len(entry.List))), nil
}

func cmdLPop(x *execution, args []batch.Arg) (batch.Reply, error) {
	return x.pop(args[0].String(), true)
}

func cmdRPop(x *execution, args []batch.Arg) (batch.Reply, error) {
	return x.pop(args[0].String(), false)
}

// pop removes one element. An emptied list removes the key.
func (x *execution) pop(key string, head bool) (batch.Reply, error) {
	entry, ok, err := x.lookupList(key)
	if err != nil || !ok || len(entry.List) == 0 {
		return batch.NilReply(), err
	}

	var el []byte
	if head {
		el, entry.List = entry.List[0], entry.List[1:]
	} else {
		last := len(entry.List) - 1
		el, entry.List = entry.List[last], entry.List[:last]
	}

	if len(entry.List) == 0 {
		_, err = x.delete(key)
	} else {
		err = x.put(key, entry)
	}
	if err != nil {
		return batch.Reply{}, err
	}
	return batch.StringReply(string(el)), nil
}

func cmdLLen(x *execution, args []batch.Arg) (batch.Reply, error) {
	entry, _, err := x.lookupList(args[0].String())
	if err != nil {
		return batch.Reply{}, err
	}
	return batch.IntReply(int64(len(entry.List))), nil
}

// LRANGE key start stop, both inclusive. Negative indexes count from the end.
func cmdLRange(x *execution, args []batch.Arg) (batch.Reply, error) {
	start, err := parseInt(args[1])
	if err != nil {
		return batch.Reply{}, err
	}
	stop, err := parseInt(args[2])
	if err != nil {
		return batch.Reply{}, err
	}

	entry, _, err := x.lookupList(args[0].String())
	if err != nil {
		return batch.Reply{}, err
	}

	n := int64(len(entry.List))
	if start < 0 {
		start = max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	stop = min(stop, n-1)

	items := []batch.Reply{}
	for i := start; i <= stop; i++ {
		items = append(items, batch.StringReply(string(entry.List[i])))
	}
	return batch.ArrayReply(items), nil
}
