// Package server implements the rpc server of kvbatch. It owns a set of
// shards, each one a store.IStore, and answers batch messages sent to them.
//
// Request flow:
//
//  1. The transport passes the raw request and the target shard ID to the server.
//  2. The serializer decodes the message, the shard's adapter validates the
//     command frames and runs them with store.Exec.
//  3. The replies (or the error) go back together with the database selected
//     after the batch and a trace ID that also appears in the server log.
//
// Shard types:
//
//   - ShardTypeLocalIStore: a local store, for single node deployments.
//   - ShardTypeRemoteIStore: a raft replicated store (dstore). The raft
//     settings of the ServerConfig must be filled in.
//
// Every shard runs on its own engine: memdb (default), pebble or badger. The
// persistent engines keep their files in ServerConfig.ShardDataDir and are only
// available to lstore shards. dstore shards rebuild their state from raft
// snapshots and the log, so they always run on memdb.
//
// Metrics (VictoriaMetrics):
//
//	kvb_batches_total{mode="pipeline|transaction"}
//	kvb_batch_duration_seconds{mode="pipeline|transaction"}
//	kvb_commands_total
//	kvb_batch_aborts_total
//	kvb_batch_errors_total
//	kvb_unknown_shard_total
//
// They are served by the http transport and, if MetricsEndpoint is set, by a
// dedicated listener.
//
// Usage Example:
//
//	s := server.NewRPCServer(config, tcp.NewTCPServerTransport(), serializer.NewBinarySerializer())
//	go func() {
//		<-ctx.Done()
//		s.Close()
//	}()
//	if err := s.Serve(); err != nil {
//		log.Fatalf("Server error: %v", err)
//	}
package server
