package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/kvbatch/lib/batch"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Selected database. Request: before the batch, response: after the batch.
	DB uint64 `json:"db"`

	// Request only fields
	Commands []CommandFrame `json:"commands,omitempty"`

	// Response only fields
	Replies []batch.Reply   `json:"replies,omitempty"`
	Code    batch.ErrorCode `json:"code,omitempty"`  // Used for: Error responses
	Index   int64           `json:"index,omitempty"` // Used for: Error responses, -1 if not tied to a command
	Err     string          `json:"err,omitempty"`   // Empty if no error, otherwise contains the error message

	// TraceID is set by the server and identifies the batch in its logs
	TraceID string `json:"trace_id,omitempty"`
}

// CommandFrame is the wire form of a batch.Command
type CommandFrame struct {
	Type batch.RequestType `json:"type"`
	Args [][]byte          `json:"args"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewBatchRequest creates a pipeline or transaction request for cmds
func NewBatchRequest(dbIdx uint64, cmds []batch.Command, atomic bool) *Message {
	msgType := MsgTPipeline
	if atomic {
		msgType = MsgTTransaction
	}

	frames := make([]CommandFrame, len(cmds))
	for i, cmd := range cmds {
		args := make([][]byte, cmd.NumArgs())
		for j := range args {
			args[j] = cmd.Arg(j).Bytes()
		}
		frames[i] = CommandFrame{Type: cmd.Type(), Args: args}
	}

	return &Message{
		MsgType:  msgType,
		DB:       dbIdx,
		Commands: frames,
	}
}

// BatchCommands decodes the command frames of a request.
// Every frame is validated by batch.NewCommand.
func (m *Message) BatchCommands() ([]batch.Command, error) {
	cmds := make([]batch.Command, len(m.Commands))
	for i, frame := range m.Commands {
		args := make([]batch.Arg, len(frame.Args))
		for j, a := range frame.Args {
			args[j] = batch.Bytes(a)
		}
		cmd, err := batch.NewCommand(frame.Type, args)
		if err != nil {
			var be *batch.Error
			if errors.As(err, &be) {
				return nil, be.WithIndex(i)
			}
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmds[i] = cmd
	}
	return cmds, nil
}

// IsAtomic reports whether the request is a transaction
func (m *Message) IsAtomic() bool {
	return m.MsgType == MsgTTransaction
}

// NewBatchResponse creates the response of an executed batch
func NewBatchResponse(replies []batch.Reply, selected uint64) *Message {
	if replies == nil {
		replies = []batch.Reply{}
	}
	return &Message{
		MsgType: MsgTResponse,
		DB:      selected,
		Replies: replies,
	}
}

// NewErrorResponse creates a new Error response.
// The code and command index of a *batch.Error are kept.
func NewErrorResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTError,
		Code:    batch.ErrCInternal,
		Index:   -1,
		Err:     err.Error(),
	}
	var be *batch.Error
	if errors.As(err, &be) {
		msg.Code = be.Code
		msg.Index = int64(be.Index)
		msg.Err = be.Msg
	}
	return msg
}

// AsError returns the error carried by an error response, or nil.
func (m *Message) AsError() error {
	if m.MsgType != MsgTError && m.Err == "" {
		return nil
	}
	return &batch.Error{Code: m.Code, Msg: m.Err, Index: int(m.Index)}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTPipeline:
		return "pipeline"
	case MsgTTransaction:
		return "transaction"
	case MsgTResponse:
		return "response"
	case MsgTError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "pipeline":
		*t = MsgTPipeline
	case "transaction":
		*t = MsgTTransaction
	case "response":
		*t = MsgTResponse
	case "error":
		*t = MsgTError
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	MsgTUnknown MessageType = iota

	// Requests

	MsgTPipeline    // Non-atomic batch, every command runs independently
	MsgTTransaction // Atomic batch, all commands or none

	// Responses

	MsgTResponse // Replies of an executed batch
	MsgTError    // The batch failed as a whole
)
