// Package unix implements the rpc transport over Unix domain sockets for
// clients and servers on the same machine. Framing, pooling and retries are
// inherited from the base package.
//
// The default server buffer size is 64 KB.
package unix
