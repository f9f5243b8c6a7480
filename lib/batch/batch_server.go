package batch

// Ping replies "PONG".
//
// Command: PING
func (b *Batch) Ping() *Batch {
	return b.add(RequestPing, func(*ArgsBuilder) {})
}

// Echo replies message.
//
// Command: ECHO message
func (b *Batch) Echo(message any) *Batch {
	return b.add(RequestEcho, func(ab *ArgsBuilder) {
		ab.Fail(CheckArg(message)).Add(message)
	})
}

// DBSize replies the number of keys in the selected database.
//
// Command: DBSIZE
func (b *Batch) DBSize() *Batch {
	return b.add(RequestDBSize, func(*ArgsBuilder) {})
}

// FlushDB removes every key of the selected database. Replies "OK".
//
// Command: FLUSHDB
func (b *Batch) FlushDB() *Batch {
	return b.add(RequestFlushDB, func(*ArgsBuilder) {})
}
