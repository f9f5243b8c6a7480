package db

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Entry Type (typed value with metadata)
// --------------------------------------------------------------------------

// Kind is the type of the value stored in an Entry.
type Kind uint8

const (
	KindString Kind = iota // Binary safe string
	KindList               // List of binary safe strings
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Entry is the value of a key together with its metadata.
type Entry struct {
	Kind     Kind
	Str      []byte   // Value of a KindString entry
	List     [][]byte // Elements of a KindList entry
	ExpireAt int64    // Expiration time in unix milliseconds (0 = never)
}

// Expired reports whether the entry is expired at the given unix millisecond time.
func (e Entry) Expired(nowMs int64) bool {
	return e.ExpireAt > 0 && nowMs >= e.ExpireAt
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	c := Entry{Kind: e.Kind, ExpireAt: e.ExpireAt}
	if e.Str != nil {
		c.Str = make([]byte, len(e.Str))
		copy(c.Str, e.Str)
	}
	if e.List != nil {
		c.List = make([][]byte, len(e.List))
		for i, item := range e.List {
			c.List[i] = make([]byte, len(item))
			copy(c.List[i], item)
		}
	}
	return c
}

// SizeBytes returns the exact number of bytes needed to serialize this entry
func (e Entry) SizeBytes() int {
	size := 1 + 8 + 4 // Kind + ExpireAt + Len
	switch e.Kind {
	case KindList:
		for _, item := range e.List {
			size += 4 + len(item)
		}
	default:
		size += len(e.Str)
	}
	return size
}

// Encode serializes an entry into a byte array with the format:
// 1 byte for the kind,
// 8 bytes for expireAt (big endian),
// 4 bytes for the length of the string or the number of list elements,
// N bytes string data or per list element 4 bytes length and N bytes data
func (e Entry) Encode() []byte {
	buf := make([]byte, 0, e.SizeBytes())
	buf = append(buf, byte(e.Kind))
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.ExpireAt))
	switch e.Kind {
	case KindList:
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.List)))
		for _, item := range e.List {
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(item)))
			buf = append(buf, item...)
		}
	default:
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.Str)))
		buf = append(buf, e.Str...)
	}
	return buf
}

// DecodeEntry extracts an entry from a byte array written by Encode.
// The returned entry does not share memory with data.
func DecodeEntry(data []byte) (Entry, error) {
	// Minimum size: 1 (Kind) + 8 (ExpireAt) + 4 (Len) = 13 bytes
	if len(data) < 13 {
		return Entry{}, fmt.Errorf("data too short for entry")
	}

	e := Entry{
		Kind:     Kind(data[0]),
		ExpireAt: int64(binary.BigEndian.Uint64(data[1:9])),
	}
	n := int(binary.BigEndian.Uint32(data[9:13]))
	pos := 13

	switch e.Kind {
	case KindString:
		if n < 0 || len(data) < pos+n {
			return Entry{}, fmt.Errorf("data too short for string of length %d", n)
		}
		e.Str = make([]byte, n)
		copy(e.Str, data[pos:pos+n])
	case KindList:
		if n < 0 || n > (len(data)-pos)/4 {
			return Entry{}, fmt.Errorf("data too short for list of length %d", n)
		}
		e.List = make([][]byte, n)
		for i := 0; i < n; i++ {
			if len(data) < pos+4 {
				return Entry{}, fmt.Errorf("data too short for list element %d", i)
			}
			l := int(binary.BigEndian.Uint32(data[pos : pos+4]))
			pos += 4
			if l < 0 || len(data) < pos+l {
				return Entry{}, fmt.Errorf("data too short for list element %d", i)
			}
			e.List[i] = make([]byte, l)
			copy(e.List[i], data[pos:pos+l])
			pos += l
		}
	default:
		return Entry{}, fmt.Errorf("unknown entry kind %d", e.Kind)
	}
	return e, nil
}

// --------------------------------------------------------------------------
// Write Index
// --------------------------------------------------------------------------

// WriteIndex is a monotonically increasing logical timestamp.
// Engines embed it to implement SetWriteIdx and WriteIdx.
type WriteIndex struct {
	idx atomic.Uint64
}

// SetWriteIdx sets the index if it is greater than the current one.
func (w *WriteIndex) SetWriteIdx(index uint64) {
	for {
		curr := w.idx.Load()
		if index <= curr || w.idx.CompareAndSwap(curr, index) {
			return
		}
	}
}

// WriteIdx returns the current index.
func (w *WriteIndex) WriteIdx() uint64 {
	return w.idx.Load()
}
