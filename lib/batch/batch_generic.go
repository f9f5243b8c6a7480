package batch

// --------------------------------------------------------------------------
// Database selection and key movement
// --------------------------------------------------------------------------

// Select changes the selected database for the following commands of the batch.
//
// Command: SELECT index
func (b *Batch) Select(index int64) *Batch {
	return b.add(RequestSelect, func(ab *ArgsBuilder) {
		ab.Add(index)
	})
}

// Move moves key from the selected database to the database dbIndex.
// Replies true if the key was moved, false if it did not exist or already exists in the target.
//
// Command: MOVE key dbIndex
func (b *Batch) Move(key any, dbIndex int64) *Batch {
	return b.add(RequestMove, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key).Add(dbIndex)
	})
}

// Copy copies the value at source to destination inside the database destinationDB.
// With replace the destination is overwritten, otherwise the copy fails (false) if it exists.
//
// Command: COPY source destination DB destinationDB [REPLACE]
func (b *Batch) Copy(source, destination any, destinationDB int64, replace bool) *Batch {
	return b.add(RequestCopy, func(ab *ArgsBuilder) {
		ab.Fail(CheckArgs(source, destination)).
			Add(source).
			Add(destination).
			Add(DBKeyword).
			Add(destinationDB).
			AddIf(ReplaceKeyword, replace)
	})
}

// CopyWithOptions is Copy with an optional destination database.
//
// Command: COPY source destination [DB n] [REPLACE]
func (b *Batch) CopyWithOptions(source, destination any, opts *CopyOptions) *Batch {
	return b.add(RequestCopy, func(ab *ArgsBuilder) {
		optArgs, err := opts.ToArgs()
		ab.Fail(CheckArgs(source, destination)).
			Fail(err).
			Add(source).
			Add(destination).
			AddStrings(optArgs)
	})
}

// --------------------------------------------------------------------------
// Keyspace
// --------------------------------------------------------------------------

// Scan iterates the keys of the selected database. Start with cursor "0" and
// continue with the returned cursor until it is "0" again.
// Replies [nextCursor, [key...]].
//
// Command: SCAN cursor
func (b *Batch) Scan(cursor any) *Batch {
	return b.add(RequestScan, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(cursor)).Add(cursor)
	})
}

// ScanWithOptions is Scan filtered by opts.
//
// Command: SCAN cursor [MATCH pattern] [COUNT count] [TYPE type]
func (b *Batch) ScanWithOptions(cursor any, opts *ScanOptions) *Batch {
	return b.add(RequestScan, func(ab *ArgsBuilder) {
		optArgs, err := opts.ToArgs()
		ab.Fail(CheckArg(cursor)).
			Fail(err).
			Add(cursor).
			AddStrings(optArgs)
	})
}

// Del removes the given keys. Replies the number of removed keys.
//
// Command: DEL key [key ...]
func (b *Batch) Del(keys ...any) *Batch {
	return b.add(RequestDel, func(ab *ArgsBuilder) {
		ab.Fail(CheckArgs(keys...)).AddAll(keys...)
	})
}

// Exists replies the number of given keys that exist. A key given twice is counted twice.
//
// Command: EXISTS key [key ...]
func (b *Batch) Exists(keys ...any) *Batch {
	return b.add(RequestExists, func(ab *ArgsBuilder) {
		ab.Fail(CheckArgs(keys...)).AddAll(keys...)
	})
}

// DelIfEq removes key only if its string value equals value. Replies true if removed.
//
// Command: DELIFEQ key value
func (b *Batch) DelIfEq(key, value any) *Batch {
	return b.add(RequestDelIfEq, func(ab *ArgsBuilder) {
		ab.Fail(CheckArgs(key, value)).Add(key).Add(value)
	})
}

// Expire sets a timeout on key. A non-positive timeout deletes the key.
// Replies true if the timeout was set.
//
// Command: EXPIRE key seconds
func (b *Batch) Expire(key any, seconds int64) *Batch {
	return b.add(RequestExpire, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key).Add(seconds)
	})
}

// TTL replies the remaining time to live of key in seconds,
// -1 if it has no timeout and -2 if it does not exist.
//
// Command: TTL key
func (b *Batch) TTL(key any) *Batch {
	return b.add(RequestTTL, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// Persist removes the timeout of key. Replies true if a timeout was removed.
//
// Command: PERSIST key
func (b *Batch) Persist(key any) *Batch {
	return b.add(RequestPersist, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// Type replies the type of the value at key ("string", "list" or "none").
//
// Command: TYPE key
func (b *Batch) Type(key any) *Batch {
	return b.add(RequestKeyType, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(key)).Add(key)
	})
}

// Rename renames key to newKey, overwriting newKey. Fails if key does not exist.
//
// Command: RENAME key newKey
func (b *Batch) Rename(key, newKey any) *Batch {
	return b.add(RequestRename, func(ab *ArgsBuilder) {
		ab.Fail(CheckArgs(key, newKey)).Add(key).Add(newKey)
	})
}
