// Package transport defines the contract between the rpc layer and the
// network. A transport moves opaque byte messages tagged with a shard ID,
// serialization and batch semantics live above it.
//
//   - IRPCClientTransport: connects to endpoints and sends requests. Send
//     honors the context deadline and cancellation.
//
//   - IRPCServerTransport: accepts requests and passes them to the registered
//     ServerHandleFunc until Close is called.
//
// Implementations: tcp, unix (both built on base) and http.
package transport
