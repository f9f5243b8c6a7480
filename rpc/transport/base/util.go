package base

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
)

// Frame layout (all integers big endian):
//
//	[0:8]   shard id
//	[8:16]  request id, echoed by the server so responses can be matched
//	[16:20] payload length
//	[20:]   payload (one serialized batch request or response)
const (
	frameHeaderSize = 20

	// MaxFrameSize bounds the payload of a single frame. Readers check the
	// announced length against it before allocating.
	MaxFrameSize = 64 << 20
)

// ErrFrameTooLarge is returned for payloads above MaxFrameSize
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

type frameHeader struct {
	shardID   uint64
	requestID uint64
	length    uint32
}

func (h frameHeader) put(buf []byte) {
	binary.BigEndian.PutUint64(buf[0:8], h.shardID)
	binary.BigEndian.PutUint64(buf[8:16], h.requestID)
	binary.BigEndian.PutUint32(buf[16:20], h.length)
}

func parseFrameHeader(buf []byte) frameHeader {
	return frameHeader{
		shardID:   binary.BigEndian.Uint64(buf[0:8]),
		requestID: binary.BigEndian.Uint64(buf[8:16]),
		length:    binary.BigEndian.Uint32(buf[16:20]),
	}
}

// writeFrame writes header and payload with a single vectored write
func writeFrame(conn net.Conn, shardID uint64, requestID uint64, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	header := make([]byte, frameHeaderSize)
	frameHeader{shardID: shardID, requestID: requestID, length: uint32(len(data))}.put(header)

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads one frame. The payload is read into buf when it fits,
// otherwise into a fresh slice, so the result may alias buf.
// A frame above MaxFrameSize is not read and leaves the stream unusable.
func readFrame(conn net.Conn, buf []byte) (uint64, uint64, []byte, error) {
	if len(buf) < frameHeaderSize {
		buf = make([]byte, frameHeaderSize)
	}

	if _, err := io.ReadFull(conn, buf[:frameHeaderSize]); err != nil {
		return 0, 0, nil, err
	}
	h := parseFrameHeader(buf)

	if h.length > MaxFrameSize {
		return 0, 0, nil, fmt.Errorf("%w: header announces %d bytes", ErrFrameTooLarge, h.length)
	}
	if h.length == 0 {
		return h.shardID, h.requestID, []byte{}, nil
	}

	if len(buf) < int(h.length) {
		buf = make([]byte, h.length)
	}
	if _, err := io.ReadFull(conn, buf[:h.length]); err != nil {
		return 0, 0, nil, err
	}
	return h.shardID, h.requestID, buf[:h.length], nil
}
