// Package rpc connects batch executors across the network.
//
//   - common: the Message protocol, configuration structures and logging.
//   - transport: byte transports (tcp, unix, http).
//   - serializer: Message encodings (binary, JSON, GOB).
//   - client: a batch.IExecutor that talks to a server.
//   - server: shards, the batch adapter and metrics.
package rpc
