package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Protocol Keywords
// --------------------------------------------------------------------------

const (
	DBKeyword       = "DB"
	ReplaceKeyword  = "REPLACE"
	MatchKeyword    = "MATCH"
	CountKeyword    = "COUNT"
	TypeKeyword     = "TYPE"
	ReturnOldValue  = "GET"
	OnlyIfExists    = "XX"
	OnlyIfNotExists = "NX"
	OnlyIfEquals    = "IFEQ"
	KeepTTLKeyword  = "KEEPTTL"
)

// --------------------------------------------------------------------------
// Request Type Definition
// --------------------------------------------------------------------------

// RequestType is the operation tag of a command. The set is closed.
type RequestType uint16

const (
	RequestUnknown RequestType = iota

	// connection and server

	RequestPing    // Check the connection
	RequestEcho    // Echo the given message
	RequestSelect  // Change the selected database
	RequestDBSize  // Number of keys in the selected database
	RequestFlushDB // Remove all keys of the selected database

	// generic keyspace

	RequestMove    // Move a key to another database
	RequestCopy    // Copy a key, optionally into another database
	RequestScan    // Incrementally iterate the keyspace
	RequestDel     // Delete keys
	RequestExists  // Count existing keys
	RequestDelIfEq // Delete a key if its value equals the argument
	RequestExpire  // Set a timeout in seconds
	RequestTTL     // Remaining time to live in seconds
	RequestPersist // Remove the timeout of a key
	RequestKeyType // Type of the value stored at a key
	RequestRename  // Rename a key

	// strings

	RequestSet    // Set a string value
	RequestGet    // Get a string value
	RequestGetDel // Get a string value and delete the key
	RequestAppend // Append to a string value
	RequestStrlen // Length of a string value
	RequestIncr   // Increment by one
	RequestIncrBy // Increment by n
	RequestDecr   // Decrement by one
	RequestDecrBy // Decrement by n

	// lists

	RequestLPush  // Prepend elements
	RequestRPush  // Append elements
	RequestLPop   // Remove and return the first element
	RequestRPop   // Remove and return the last element
	RequestLLen   // Length of a list
	RequestLRange // Range of elements

	requestTypeCount // sentinel, keep last
)

// unbounded marks a request type without an upper arity limit.
const unbounded = -1

// requestInfo holds the static properties of a RequestType.
type requestInfo struct {
	name     string
	minArgs  int
	maxArgs  int
	readOnly bool
}

var requestInfos = [requestTypeCount]requestInfo{
	RequestUnknown: {name: "UNKNOWN"},
	RequestPing:    {name: "PING", minArgs: 0, maxArgs: 1, readOnly: true},
	RequestEcho:    {name: "ECHO", minArgs: 1, maxArgs: 1, readOnly: true},
	RequestSelect:  {name: "SELECT", minArgs: 1, maxArgs: 1, readOnly: true},
	RequestDBSize:  {name: "DBSIZE", minArgs: 0, maxArgs: 0, readOnly: true},
	RequestFlushDB: {name: "FLUSHDB", minArgs: 0, maxArgs: 0},
	RequestMove:    {name: "MOVE", minArgs: 2, maxArgs: 2},
	RequestCopy:    {name: "COPY", minArgs: 2, maxArgs: 5},
	RequestScan:    {name: "SCAN", minArgs: 1, maxArgs: 7, readOnly: true},
	RequestDel:     {name: "DEL", minArgs: 1, maxArgs: unbounded},
	RequestExists:  {name: "EXISTS", minArgs: 1, maxArgs: unbounded, readOnly: true},
	RequestDelIfEq: {name: "DELIFEQ", minArgs: 2, maxArgs: 2},
	RequestExpire:  {name: "EXPIRE", minArgs: 2, maxArgs: 2},
	RequestTTL:     {name: "TTL", minArgs: 1, maxArgs: 1, readOnly: true},
	RequestPersist: {name: "PERSIST", minArgs: 1, maxArgs: 1},
	RequestKeyType: {name: "TYPE", minArgs: 1, maxArgs: 1, readOnly: true},
	RequestRename:  {name: "RENAME", minArgs: 2, maxArgs: 2},
	RequestSet:     {name: "SET", minArgs: 2, maxArgs: 7},
	RequestGet:     {name: "GET", minArgs: 1, maxArgs: 1, readOnly: true},
	RequestGetDel:  {name: "GETDEL", minArgs: 1, maxArgs: 1},
	RequestAppend:  {name: "APPEND", minArgs: 2, maxArgs: 2},
	RequestStrlen:  {name: "STRLEN", minArgs: 1, maxArgs: 1, readOnly: true},
	RequestIncr:    {name: "INCR", minArgs: 1, maxArgs: 1},
	RequestIncrBy:  {name: "INCRBY", minArgs: 2, maxArgs: 2},
	RequestDecr:    {name: "DECR", minArgs: 1, maxArgs: 1},
	RequestDecrBy:  {name: "DECRBY", minArgs: 2, maxArgs: 2},
	RequestLPush:   {name: "LPUSH", minArgs: 2, maxArgs: unbounded},
	RequestRPush:   {name: "RPUSH", minArgs: 2, maxArgs: unbounded},
	RequestLPop:    {name: "LPOP", minArgs: 1, maxArgs: 1},
	RequestRPop:    {name: "RPOP", minArgs: 1, maxArgs: 1},
	RequestLLen:    {name: "LLEN", minArgs: 1, maxArgs: 1, readOnly: true},
	RequestLRange:  {name: "LRANGE", minArgs: 3, maxArgs: 3, readOnly: true},
}

// Valid reports whether t is a member of the closed set (RequestUnknown is not).
func (t RequestType) Valid() bool {
	return t > RequestUnknown && t < requestTypeCount
}

// String returns the protocol name of the request type (e.g. "SET").
func (t RequestType) String() string {
	if t < requestTypeCount {
		return requestInfos[t].name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
}

// IsReadOnly reports whether commands of this type never mutate the keyspace.
func (t RequestType) IsReadOnly() bool {
	return t.Valid() && requestInfos[t].readOnly
}

// ParseRequestType resolves a protocol name (case-insensitive) to its RequestType.
func ParseRequestType(name string) (RequestType, error) {
	upper := strings.ToUpper(name)
	for t := RequestUnknown + 1; t < requestTypeCount; t++ {
		if requestInfos[t].name == upper {
			return t, nil
		}
	}
	return RequestUnknown, fmt.Errorf("unknown command %q", name)
}

// MarshalJSON implements the json.Marshaller interface for RequestType.
func (t RequestType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for RequestType.
func (t *RequestType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRequestType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// --------------------------------------------------------------------------
// Command Descriptor
// --------------------------------------------------------------------------

// Command is one fully specified store operation: a request type and its
// ordered arguments. A Command is immutable once created.
type Command struct {
	tag  RequestType
	args []Arg
}

// NewCommand is the command descriptor factory.
// It performs no argument validation besides checking the arity bounds of the
// request type, a violation is reported as ErrCMalformedArgumentList.
func NewCommand(tag RequestType, args []Arg) (Command, error) {
	if !tag.Valid() {
		return Command{}, NewErrorf(ErrCMalformedArgumentList, "unknown request type %d", uint16(tag))
	}
	info := requestInfos[tag]
	if len(args) < info.minArgs || (info.maxArgs != unbounded && len(args) > info.maxArgs) {
		return Command{}, NewErrorf(ErrCMalformedArgumentList,
			"wrong number of arguments for '%s': got %d", info.name, len(args))
	}
	owned := make([]Arg, len(args))
	copy(owned, args)
	return Command{tag: tag, args: owned}, nil
}

// MustCommand is like NewCommand but panics on a malformed argument list.
// It is meant for fixed command literals in tests and tools.
func MustCommand(tag RequestType, args ...Arg) Command {
	cmd, err := NewCommand(tag, args)
	if err != nil {
		panic(err)
	}
	return cmd
}

// Type returns the request type.
func (c Command) Type() RequestType {
	return c.tag
}

// NumArgs returns the number of arguments.
func (c Command) NumArgs() int {
	return len(c.args)
}

// Arg returns the i-th argument.
func (c Command) Arg(i int) Arg {
	return c.args[i]
}

// Args returns a copy of the argument list.
func (c Command) Args() []Arg {
	out := make([]Arg, len(c.args))
	copy(out, c.args)
	return out
}

// Strings returns the arguments as strings (without the command name).
func (c Command) Strings() []string {
	out := make([]string, len(c.args))
	for i, a := range c.args {
		out[i] = a.String()
	}
	return out
}

// String renders the command the way it would be typed into a CLI, e.g. "COPY k1 k2 DB 2".
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.tag.String())
	for _, a := range c.args {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	return sb.String()
}

// ParseCommand builds a command from its CLI form, e.g. []string{"SET", "a", "1"}.
// All arguments become text arguments.
func ParseCommand(fields []string) (Command, error) {
	if len(fields) == 0 {
		return Command{}, NewError(ErrCMalformedArgumentList, "empty command")
	}
	tag, err := ParseRequestType(fields[0])
	if err != nil {
		return Command{}, NewError(ErrCMalformedArgumentList, err.Error())
	}
	args := make([]Arg, len(fields)-1)
	for i, f := range fields[1:] {
		args[i] = Text(f)
	}
	return NewCommand(tag, args)
}
