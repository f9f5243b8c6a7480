// Package tcp implements the tcp socket transport of the rpc system on top of
// the base package, see there for framing, connection pooling and retries.
//
// Key Components:
//
//   - clientConnector: dials tcp endpoints and applies the socket settings
//     (TCPNoDelay, keep-alive, linger, buffer sizes) of the client config
//
//   - serverConnector: listens on config.Transport.Endpoint and applies the
//     same settings to accepted connections
//
// The default server buffer size is 512 KB.
package tcp
