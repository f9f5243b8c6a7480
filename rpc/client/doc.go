// Package client implements the rpc client side of kvbatch.
//
// RPCClient implements batch.IExecutor: a batch built with the batch package
// is sent as one pipeline or transaction message to a shard and the replies
// come back in command order. The client keeps the database selected by the
// previous batch, so SELECT behaves like it does on a single connection.
//
// NewRPCLockMgr layers the lock manager of the lockmgr package on top of a
// client.
//
// Usage Example:
//
//	config := common.ClientConfig{
//		TimeoutSecond: 5,
//		Transport: common.ClientTransportConfig{
//			Endpoints:  []string{"localhost:8080"},
//			RetryCount: 3,
//		},
//	}
//
//	c, err := client.NewRPCClient(100, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	b := batch.NewBatch(true).Set("counter", "0").Incr("counter").Get("counter")
//	results, err := c.Exec(ctx, b, true)
//
// Errors:
//
//   - Error responses of the server are returned as *batch.Error with their
//     code and command index.
//   - Responses that cannot be decoded or do not answer every command yield
//     ErrCMalformedResponse.
//   - Transport errors are wrapped, the outcome of the batch is unknown then.
//
// The client is safe for concurrent use.
package client
