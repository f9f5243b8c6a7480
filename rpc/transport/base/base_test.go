package base

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unixConnector is a minimal connector for unix sockets
type unixConnector struct{}

func (unixConnector) GetName() string { return "unix-test" }

func (unixConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("unix", endpoint)
}

func (unixConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	return net.Listen("unix", config.Transport.Endpoint)
}

func (unixConnector) UpgradeConnection(net.Conn, common.ServerConfig) error { return nil }

type unixClientConnector struct{ unixConnector }

func (unixClientConnector) UpgradeConnection(net.Conn, common.ClientConfig) error { return nil }

func TestFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte("hello frame")
	go func() {
		_ = writeFrame(client, 7, 42, payload)
		_ = writeFrame(client, 8, 43, nil)
	}()

	// buffer smaller than the payload forces an allocation
	shardID, requestID, data, err := readFrame(server, make([]byte, 20))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), shardID)
	assert.Equal(t, uint64(42), requestID)
	assert.Equal(t, payload, data)

	shardID, requestID, data, err = readFrame(server, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), shardID)
	assert.Equal(t, uint64(43), requestID)
	assert.Empty(t, data)
}

func TestReadFrameRejectsOversizedHeader(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	header := make([]byte, frameHeaderSize)
	frameHeader{shardID: 1, requestID: 2, length: MaxFrameSize + 1}.put(header)
	go func() { _, _ = client.Write(header) }()

	_, _, data, err := readFrame(server, nil)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Nil(t, data)
}

// startServer starts an echo server on a unix socket in a temp dir
func startServer(t *testing.T, handle func(shardId uint64, req []byte) []byte) string {
	t.Helper()
	endpoint := filepath.Join(t.TempDir(), "kvb.sock")

	srv := NewBaseServerTransport(unixConnector{}, 1024)
	srv.RegisterHandler(handle)

	done := make(chan error, 1)
	go func() {
		done <- srv.Listen(common.ServerConfig{
			TimeoutSecond: 5,
			Transport:     common.ServerTransportConfig{Endpoint: endpoint, WorkersPerConn: 4},
		})
	}()

	t.Cleanup(func() {
		require.NoError(t, srv.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	// wait until the socket accepts connections
	require.Eventually(t, func() bool {
		conn, err := net.Dial("unix", endpoint)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 10*time.Millisecond)

	return endpoint
}

func newClient(t *testing.T, endpoint string) *clientTransport {
	t.Helper()
	c := NewBaseClientTransport(unixClientConnector{}).(*clientTransport)
	require.NoError(t, c.Connect(common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoints:              []string{endpoint},
			RetryCount:             2,
			ConnectionsPerEndpoint: 2,
		},
	}))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSendEcho(t *testing.T) {
	endpoint := startServer(t, func(shardId uint64, req []byte) []byte {
		return []byte(fmt.Sprintf("%d:%s", shardId, req))
	})
	c := newClient(t, endpoint)

	resp, err := c.Send(context.Background(), 3, []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, "3:ping", string(resp))
}

func TestSendConcurrent(t *testing.T) {
	endpoint := startServer(t, func(_ uint64, req []byte) []byte {
		return append([]byte("echo-"), req...)
	})
	c := newClient(t, endpoint)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := fmt.Sprintf("msg-%d", i)
			resp, err := c.Send(context.Background(), 1, []byte(msg))
			if assert.NoError(t, err) {
				assert.Equal(t, "echo-"+msg, string(resp))
			}
		}(i)
	}
	wg.Wait()
}

func TestSendHonorsContext(t *testing.T) {
	release := make(chan struct{})
	endpoint := startServer(t, func(_ uint64, req []byte) []byte {
		<-release
		return req
	})
	defer close(release)
	c := newClient(t, endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Send(ctx, 1, []byte("slow"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestConnectWithoutEndpoints(t *testing.T) {
	c := NewBaseClientTransport(unixClientConnector{})
	assert.Error(t, c.Connect(common.ClientConfig{}))

	c = NewBaseClientTransport(unixClientConnector{})
	assert.Error(t, c.Connect(common.ClientConfig{
		Transport: common.ClientTransportConfig{Endpoints: []string{filepath.Join(t.TempDir(), "missing.sock")}},
	}))
}

func TestSendWithoutConnect(t *testing.T) {
	c := NewBaseClientTransport(unixClientConnector{})
	_, err := c.Send(context.Background(), 1, []byte("x"))
	assert.Error(t, err)
}
