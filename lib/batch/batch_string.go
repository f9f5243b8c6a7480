package batch

// Set stores value at key, replacing any value and its timeout. Replies "OK".
//
// Command: SET key value
func (b *Batch) Set(key, value any) *Batch {
	return b.add(RequestSet, func(ab *ArgsBuilder) {
		ab.Fail(CheckArgs(key, value)).Add(key).Add(value)
	})
}

// SetWithOptions is Set with a write condition, old value return or expiry.
// Replies "OK", or nil if the condition was not met. With ReturnOldValue the
// old value (or nil) is replied instead.
//
// Command: SET key value [NX | XX | IFEQ comparison] [GET] [EX s | PX ms | EXAT s | PXAT ms | KEEPTTL]
func (b *Batch) SetWithOptions(key, value any, opts *SetOptions) *Batch {
	return b.add(RequestSet, func(ab *ArgsBuilder) {
		optArgs, err := opts.ToArgs()
		ab.Fail(CheckArgs(key, value)).
			Fail(err).
			Add(key).
			Add(value).
			AddStrings(optArgs)
	})
}

// Get replies the string value at key, or nil.
//
// Command: GET key
func (b *Batch) Get(key any) *Batch {
	return b.add(RequestGet, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// GetDel replies the string value at key, or nil, and deletes the key.
//
// Command: GETDEL key
func (b *Batch) GetDel(key any) *Batch {
	return b.add(RequestGetDel, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// Append appends value to the string at key (creating it). Replies the new length.
//
// Command: APPEND key value
func (b *Batch) Append(key, value any) *Batch {
	return b.add(RequestAppend, func(ab *ArgsBuilder) {
		ab.Fail(CheckArgs(key, value)).Add(key).Add(value)
	})
}

// Strlen replies the length of the string at key, 0 if it does not exist.
//
// Command: STRLEN key
func (b *Batch) Strlen(key any) *Batch {
	return b.add(RequestStrlen, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// Incr increments the integer at key by one. Replies the new value.
//
// Command: INCR key
func (b *Batch) Incr(key any) *Batch {
	return b.add(RequestIncr, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// IncrBy increments the integer at key by amount. Replies the new value.
//
// Command: INCRBY key amount
func (b *Batch) IncrBy(key any, amount int64) *Batch {
	return b.add(RequestIncrBy, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key).Add(amount)
	})
}

// Decr decrements the integer at key by one. Replies the new value.
//
// Command: DECR key
func (b *Batch) Decr(key any) *Batch {
	return b.add(RequestDecr, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// DecrBy decrements the integer at key by amount. Replies the new value.
//
// Command: DECRBY key amount
func (b *Batch) DecrBy(key any, amount int64) *Batch {
	return b.add(RequestDecrBy, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key).Add(amount)
	})
}
