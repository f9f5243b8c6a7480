package batch

import (
	"encoding/binary"
	"fmt"
)

// Binary layout of a command:
//
//	2 bytes request type (big endian)
//	4 bytes number of arguments
//	per argument: 1 byte kind, 4 bytes length, N bytes data
//
// Binary layout of a reply:
//
//	1 byte kind, followed by
//	  String: 4 bytes length, N bytes data
//	  Int:    8 bytes (two's complement)
//	  Bool:   1 byte
//	  Array:  4 bytes number of items, items
//	  Error:  1 byte code, 4 bytes length, N bytes message
//	  Nil:    nothing

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

// AppendCommand appends the binary form of cmd to buf.
func AppendCommand(buf []byte, cmd Command) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(cmd.tag))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(cmd.args)))
	for _, a := range cmd.args {
		buf = append(buf, byte(a.kind))
		buf = binary.BigEndian.AppendUint32(buf, uint32(a.Len()))
		if a.kind == ArgBytes {
			buf = append(buf, a.raw...)
		} else {
			buf = append(buf, a.text...)
		}
	}
	return buf
}

// ReadCommand decodes one command from the start of data and returns it with
// the number of bytes consumed. The command passes through NewCommand, so a
// frame violating the arity of its request type is rejected.
func ReadCommand(data []byte) (Command, int, error) {
	if len(data) < 6 {
		return Command{}, 0, fmt.Errorf("data too short for command header")
	}
	tag := RequestType(binary.BigEndian.Uint16(data[0:2]))
	n := binary.BigEndian.Uint32(data[2:6])
	pos := 6

	// every argument needs at least 5 bytes
	if uint64(n)*5 > uint64(len(data)-pos) {
		return Command{}, 0, fmt.Errorf("data too short for %d arguments", n)
	}

	args := make([]Arg, 0, n)
	for i := uint32(0); i < n; i++ {
		if pos+5 > len(data) {
			return Command{}, 0, fmt.Errorf("data too short for argument %d header", i)
		}
		kind := ArgKind(data[pos])
		l := int(binary.BigEndian.Uint32(data[pos+1 : pos+5]))
		pos += 5
		if l < 0 || pos+l > len(data) {
			return Command{}, 0, fmt.Errorf("data too short for argument %d", i)
		}
		switch kind {
		case ArgText:
			args = append(args, Text(string(data[pos:pos+l])))
		case ArgBytes:
			args = append(args, Bytes(data[pos:pos+l]))
		default:
			return Command{}, 0, fmt.Errorf("unknown argument kind %d", kind)
		}
		pos += l
	}

	cmd, err := NewCommand(tag, args)
	if err != nil {
		return Command{}, 0, err
	}
	return cmd, pos, nil
}

// EncodeCommands encodes a command list (4 bytes count followed by the commands).
func EncodeCommands(cmds []Command) []byte {
	buf := make([]byte, 0, 16*len(cmds)+4)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(cmds)))
	for _, cmd := range cmds {
		buf = AppendCommand(buf, cmd)
	}
	return buf
}

// DecodeCommands decodes a command list written by EncodeCommands and returns
// the number of bytes consumed.
func DecodeCommands(data []byte) ([]Command, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("data too short for command count")
	}
	n := binary.BigEndian.Uint32(data[0:4])
	pos := 4
	if uint64(n)*6 > uint64(len(data)-pos) {
		return nil, 0, fmt.Errorf("data too short for %d commands", n)
	}
	cmds := make([]Command, 0, n)
	for i := uint32(0); i < n; i++ {
		cmd, used, err := ReadCommand(data[pos:])
		if err != nil {
			return nil, 0, fmt.Errorf("command %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
		pos += used
	}
	return cmds, pos, nil
}

// --------------------------------------------------------------------------
// Replies
// --------------------------------------------------------------------------

// AppendReply appends the binary form of r to buf.
func AppendReply(buf []byte, r Reply) []byte {
	buf = append(buf, byte(r.Kind))
	switch r.Kind {
	case ReplyString:
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Str)))
		buf = append(buf, r.Str...)
	case ReplyInt:
		buf = binary.BigEndian.AppendUint64(buf, uint64(r.Int))
	case ReplyBool:
		if r.Int != 0 {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case ReplyArray:
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Items)))
		for _, item := range r.Items {
			buf = AppendReply(buf, item)
		}
	case ReplyError:
		buf = append(buf, byte(r.Code))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Str)))
		buf = append(buf, r.Str...)
	}
	return buf
}

// ReadReply decodes one reply from the start of data and returns it with the
// number of bytes consumed.
func ReadReply(data []byte) (Reply, int, error) {
	if len(data) < 1 {
		return Reply{}, 0, fmt.Errorf("data too short for reply kind")
	}
	r := Reply{Kind: ReplyKind(data[0])}
	pos := 1

	readString := func() (string, error) {
		if pos+4 > len(data) {
			return "", fmt.Errorf("data too short for string length")
		}
		l := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if l < 0 || pos+l > len(data) {
			return "", fmt.Errorf("data too short for string of length %d", l)
		}
		s := string(data[pos : pos+l])
		pos += l
		return s, nil
	}

	switch r.Kind {
	case ReplyNil:
	case ReplyString:
		s, err := readString()
		if err != nil {
			return Reply{}, 0, err
		}
		r.Str = s
	case ReplyInt:
		if pos+8 > len(data) {
			return Reply{}, 0, fmt.Errorf("data too short for integer")
		}
		r.Int = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	case ReplyBool:
		if pos+1 > len(data) {
			return Reply{}, 0, fmt.Errorf("data too short for boolean")
		}
		if data[pos] != 0 {
			r.Int = 1
		}
		pos++
	case ReplyArray:
		if pos+4 > len(data) {
			return Reply{}, 0, fmt.Errorf("data too short for array length")
		}
		n := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
		if uint64(n) > uint64(len(data)-pos) {
			return Reply{}, 0, fmt.Errorf("data too short for %d items", n)
		}
		r.Items = make([]Reply, 0, n)
		for i := uint32(0); i < n; i++ {
			item, used, err := ReadReply(data[pos:])
			if err != nil {
				return Reply{}, 0, err
			}
			r.Items = append(r.Items, item)
			pos += used
		}
	case ReplyError:
		if pos+1 > len(data) {
			return Reply{}, 0, fmt.Errorf("data too short for error code")
		}
		r.Code = ErrorCode(data[pos])
		pos++
		s, err := readString()
		if err != nil {
			return Reply{}, 0, err
		}
		r.Str = s
	default:
		return Reply{}, 0, fmt.Errorf("unknown reply kind %d", r.Kind)
	}
	return r, pos, nil
}

// EncodeReplies encodes a reply list (4 bytes count followed by the replies).
func EncodeReplies(replies []Reply) []byte {
	buf := make([]byte, 0, 8*len(replies)+4)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(replies)))
	for _, r := range replies {
		buf = AppendReply(buf, r)
	}
	return buf
}

// DecodeReplies decodes a reply list written by EncodeReplies and returns the
// number of bytes consumed.
func DecodeReplies(data []byte) ([]Reply, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("data too short for reply count")
	}
	n := binary.BigEndian.Uint32(data[0:4])
	pos := 4
	if uint64(n) > uint64(len(data)-pos) {
		return nil, 0, fmt.Errorf("data too short for %d replies", n)
	}
	replies := make([]Reply, 0, n)
	for i := uint32(0); i < n; i++ {
		r, used, err := ReadReply(data[pos:])
		if err != nil {
			return nil, 0, fmt.Errorf("reply %d: %w", i, err)
		}
		replies = append(replies, r)
		pos += used
	}
	return replies, pos, nil
}
