package internal

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ValentinKolb/kvbatch/lib/batch"
)

// ResultStatus is stored in sm.Result.Value
type ResultStatus uint64

const (
	ResultOK     ResultStatus = iota // Data holds the selected database and the replies
	ResultFailed                     // Data holds an encoded *batch.Error
)

// EncodeReplies encodes the outcome of a successful batch:
// 8 bytes selected database (big endian), the replies as encoded by batch.EncodeReplies
func EncodeReplies(selected uint64, replies []batch.Reply) []byte {
	buf := binary.BigEndian.AppendUint64(nil, selected)
	return append(buf, batch.EncodeReplies(replies)...)
}

// DecodeReplies decodes data created by EncodeReplies.
func DecodeReplies(data []byte) ([]batch.Reply, uint64, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("data too short for result: %d bytes", len(data))
	}
	replies, _, err := batch.DecodeReplies(data[8:])
	if err != nil {
		return nil, 0, err
	}
	return replies, binary.BigEndian.Uint64(data[:8]), nil
}

// EncodeError encodes a failed batch:
// 1 byte error code, 8 bytes command index (signed, big endian), N bytes message
func EncodeError(err error) []byte {
	var be *batch.Error
	if !errors.As(err, &be) {
		be = batch.NewError(batch.ErrCInternal, err.Error())
	}
	buf := []byte{byte(be.Code)}
	buf = binary.BigEndian.AppendUint64(buf, uint64(int64(be.Index)))
	return append(buf, be.Msg...)
}

// DecodeError decodes data created by EncodeError.
func DecodeError(data []byte) *batch.Error {
	if len(data) < 9 {
		return batch.NewErrorf(batch.ErrCInternal, "data too short for error: %d bytes", len(data))
	}
	be := batch.NewError(batch.ErrorCode(data[0]), string(data[9:]))
	if idx := int(int64(binary.BigEndian.Uint64(data[1:9]))); idx >= 0 {
		return be.WithIndex(idx)
	}
	return be
}
