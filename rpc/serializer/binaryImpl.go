package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
//
// Layout:
//
//	1 byte MsgType, 1 byte flags, 8 bytes DB
//	commands (flag): 4 bytes count, per command 2 bytes type, 4 bytes argc, per arg 4 bytes length + data
//	replies  (flag): batch.EncodeReplies
//	error    (flag): 1 byte code, 8 bytes index, 4 bytes length + message
//	trace    (flag): 4 bytes length + trace id
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasCommands byte = 1 << 0
	hasReplies  byte = 1 << 1
	hasErr      byte = 1 << 2
	hasTrace    byte = 1 << 3
)

const headerSize = 10

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, headerSize, b.sizeBytes(msg))

	// Write message type and selected db, the flags are set at the end
	result[0] = byte(msg.MsgType)
	binary.BigEndian.PutUint64(result[2:10], msg.DB)

	var flags byte = 0

	// Handle Commands
	if msg.Commands != nil {
		flags |= hasCommands
		result = binary.BigEndian.AppendUint32(result, uint32(len(msg.Commands)))
		for _, frame := range msg.Commands {
			result = binary.BigEndian.AppendUint16(result, uint16(frame.Type))
			result = binary.BigEndian.AppendUint32(result, uint32(len(frame.Args)))
			for _, arg := range frame.Args {
				result = appendBytes(result, arg)
			}
		}
	}

	// Handle Replies
	if msg.Replies != nil {
		flags |= hasReplies
		result = append(result, batch.EncodeReplies(msg.Replies)...)
	}

	// Handle Err
	if msg.Err != "" || msg.MsgType == common.MsgTError {
		flags |= hasErr
		result = append(result, byte(msg.Code))
		result = binary.BigEndian.AppendUint64(result, uint64(msg.Index))
		result = appendBytes(result, []byte(msg.Err))
	}

	// Handle TraceID
	if msg.TraceID != "" {
		flags |= hasTrace
		result = appendBytes(result, []byte(msg.TraceID))
	}

	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags + DB)
	if len(data) < headerSize {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{
		MsgType: common.MessageType(data[0]),
		DB:      binary.BigEndian.Uint64(data[2:10]),
	}
	flags := data[1]
	r := reader{data: data, pos: headerSize}

	// Read Commands if present
	if flags&hasCommands != 0 {
		count, err := r.uint32("command count")
		if err != nil {
			return err
		}
		// every command needs at least 6 bytes
		if uint64(count)*6 > uint64(r.remaining()) {
			return fmt.Errorf("data too short for %d commands", count)
		}

		msg.Commands = make([]common.CommandFrame, count)
		for i := range msg.Commands {
			tag, err := r.uint16("command type")
			if err != nil {
				return err
			}
			argc, err := r.uint32("argument count")
			if err != nil {
				return err
			}
			// every argument needs at least 4 bytes
			if uint64(argc)*4 > uint64(r.remaining()) {
				return fmt.Errorf("data too short for %d arguments", argc)
			}

			args := make([][]byte, argc)
			for j := range args {
				if args[j], err = r.bytes("argument"); err != nil {
					return err
				}
			}
			msg.Commands[i] = common.CommandFrame{Type: batch.RequestType(tag), Args: args}
		}
	}

	// Read Replies if present
	if flags&hasReplies != 0 {
		replies, used, err := batch.DecodeReplies(data[r.pos:])
		if err != nil {
			return fmt.Errorf("failed to decode replies: %w", err)
		}
		msg.Replies = replies
		r.pos += used
	}

	// Read Err if present
	if flags&hasErr != 0 {
		if r.remaining() < 9 {
			return fmt.Errorf("data too short for error code")
		}
		msg.Code = batch.ErrorCode(data[r.pos])
		msg.Index = int64(binary.BigEndian.Uint64(data[r.pos+1 : r.pos+9]))
		r.pos += 9

		errMsg, err := r.bytes("error")
		if err != nil {
			return err
		}
		msg.Err = string(errMsg)
	}

	// Read TraceID if present
	if flags&hasTrace != 0 {
		trace, err := r.bytes("trace id")
		if err != nil {
			return err
		}
		msg.TraceID = string(trace)
	}

	if r.remaining() != 0 {
		return fmt.Errorf("unexpected %d trailing bytes", r.remaining())
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes estimates the size needed for serialization (replies are not counted exactly)
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := headerSize

	if msg.Commands != nil {
		size += 4
		for _, frame := range msg.Commands {
			size += 6
			for _, arg := range frame.Args {
				size += 4 + len(arg)
			}
		}
	}
	if msg.Replies != nil {
		size += 4 + 16*len(msg.Replies)
	}
	size += 13 + len(msg.Err)
	if msg.TraceID != "" {
		size += 4 + len(msg.TraceID)
	}
	return size
}

// appendBytes appends a length prefixed byte slice
func appendBytes(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// reader reads length checked values from a buffer
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) uint16(field string) (uint16, error) {
	if r.remaining() < 2 {
		return 0, fmt.Errorf("data too short for %s", field)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) uint32(field string) (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("data too short for %s length", field)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// bytes reads a length prefixed byte slice, the result is a copy
func (r *reader) bytes(field string) ([]byte, error) {
	n, err := r.uint32(field)
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.remaining()) {
		return nil, fmt.Errorf("data too short for %s data", field)
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}
