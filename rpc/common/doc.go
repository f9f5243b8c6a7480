// Package common provides the data structures shared by the rpc client, server,
// serializers and transports.
//
// Key Components:
//
//   - Message: the single structure used for requests and responses. A request
//     (MsgTPipeline or MsgTTransaction) carries the selected database and the
//     command frames of one batch. A response (MsgTResponse) carries one reply
//     per command and the database selected after the batch. MsgTError reports
//     a batch that failed as a whole (e.g. an aborted transaction) with its
//     error code and command index.
//
//   - ServerConfig / ClientConfig: configuration of the server (shards, raft,
//     transport) and the client (endpoints, retries, socket options).
//
//   - Logger: a dragonboat logger.ILogger with a uniform format, installed for
//     all packages with InitLoggers.
package common
