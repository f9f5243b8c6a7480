// Package base holds the stream transport shared by the tcp and unix
// packages. The protocol specific parts (dialing, listening, socket options)
// are injected via IClientConnector and IServerConnector.
//
// Every message is sent as a frame:
//
//	8 bytes shard ID | 8 bytes request ID | 4 bytes length | payload
//
// All integers are big endian. The request ID lets one connection carry many
// requests at once, the response frame repeats the ID of its request.
//
// Client:
//
//   - Several connections per endpoint, chosen round-robin.
//   - Failed attempts are retried with exponential backoff and jitter as
//     long as the context is not done.
//   - A connection that fails to read fails all its waiting requests and
//     reconnects.
//
// Server:
//
//   - One goroutine reads frames per connection, a bounded number of workers
//     (WorkersPerConn) handles them concurrently.
//   - Read buffers come from a sync.Pool.
//   - Close stops the accept loop, Listen then returns nil.
package base
