package batch

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// ErrorCode classifies every error produced by the batch layer and the stores executing batches.
type ErrorCode uint8

const (
	ErrCUnknown               ErrorCode = iota // 0: Unclassified error.
	ErrCInvalidArgumentType                    // 1: A generic parameter was neither text nor raw bytes.
	ErrCMalformedArgumentList                  // 2: An argument list violates the arity of its operation.
	ErrCUnsupportedInCluster                   // 3: The operation is not legal in a clustered deployment.
	ErrCBatchSealed                            // 4: The batch was already submitted and can no longer grow.
	ErrCCommandFailed                          // 5: A single command failed at the store.
	ErrCExecAborted                            // 6: An atomic batch was rolled back.
	ErrCMalformedResponse                      // 7: The transport returned a result array of the wrong shape.
	ErrCInternal                               // 8: Store or transport internal error.
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCInvalidArgumentType:
		return "InvalidArgumentType"
	case ErrCMalformedArgumentList:
		return "MalformedArgumentList"
	case ErrCUnsupportedInCluster:
		return "UnsupportedInCluster"
	case ErrCBatchSealed:
		return "BatchSealed"
	case ErrCCommandFailed:
		return "CommandFailed"
	case ErrCExecAborted:
		return "ExecAborted"
	case ErrCMalformedResponse:
		return "MalformedResponse"
	case ErrCInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps an ErrorCode and a message.
// Index is the position of the offending command inside its batch, or -1 if the
// error is not tied to a single command.
type Error struct {
	Code  ErrorCode
	Msg   string
	Index int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("BatchError (code %s, command %d): %s", e.Code, e.Index, e.Msg)
	}
	return fmt.Sprintf("BatchError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error that is not tied to a command index.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{
		Code:  code,
		Msg:   msg,
		Index: -1,
	}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithIndex returns a copy of the error bound to the command at index i.
func (e *Error) WithIndex(i int) *Error {
	return &Error{
		Code:  e.Code,
		Msg:   e.Msg,
		Index: i,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrCUnknown if err is not (and does not wrap) an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCUnknown
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
