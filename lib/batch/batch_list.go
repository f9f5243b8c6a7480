package batch

// LPush prepends elements to the list at key, one after another, so the last
// element ends up first. Replies the new length.
//
// Command: LPUSH key element [element ...]
func (b *Batch) LPush(key any, elements ...any) *Batch {
	return b.push(RequestLPush, key, elements)
}

// RPush appends elements to the list at key. Replies the new length.
//
// Command: RPUSH key element [element ...]
func (b *Batch) RPush(key any, elements ...any) *Batch {
	return b.push(RequestRPush, key, elements)
}

func (b *Batch) push(tag RequestType, key any, elements []any) *Batch {
	return b.add(tag, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).
			Fail(CheckArgs(elements...)).
			Add(key).
			AddAll(elements...)
	})
}

// LPop removes and replies the first element of the list at key, or nil.
//
// Command: LPOP key
func (b *Batch) LPop(key any) *Batch {
	return b.add(RequestLPop, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// RPop removes and replies the last element of the list at key, or nil.
//
// Command: RPOP key
func (b *Batch) RPop(key any) *Batch {
	return b.add(RequestRPop, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// LLen replies the length of the list at key, 0 if it does not exist.
//
// Command: LLEN key
func (b *Batch) LLen(key any) *Batch {
	return b.add(RequestLLen, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// LRange replies the elements between start and stop (both inclusive).
// Negative indexes count from the end, -1 is the last element.
//
// Command: LRANGE key start stop
func (b *Batch) LRange(key any, start, stop int64) *Batch {
	return b.add(RequestLRange, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key).Add(start).Add(stop)
	})
}
