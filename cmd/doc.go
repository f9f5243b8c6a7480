// Package cmd implements the kvb command-line interface: a server and a
// client for command batches.
//
//   - batch (alias kv): run batches (exec) or single commands against a
//     shard, and measure batch latency (perf)
//   - lock: acquire and release locks
//   - serve: start a server with local or raft replicated shards
//   - util: shared flag and configuration handling (internal use)
//
// Every flag can also be set as an environment variable with the KVB_
// prefix, .env and .env.local files are loaded first.
//
// See kvb --help for a list of all commands.
package cmd
