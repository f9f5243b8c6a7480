package batch

import (
	"context"
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Transport Boundary
// --------------------------------------------------------------------------

// IExecutor executes an ordered command list against a store. It is implemented
// by the stores (via store.Session) and by the rpc client.
type IExecutor interface {
	// Submit executes cmds in order.
	//
	// If isAtomic is true, either every command takes effect or none does. A
	// failing command aborts the whole submission with an error (ErrCExecAborted)
	// and no results are returned.
	//
	// If isAtomic is false, every command is executed independently and a failure
	// is reported in the Result of that command.
	//
	// On success the returned slice has exactly one entry per command, in order.
	// The executor must not modify cmds.
	Submit(ctx context.Context, cmds []Command, isAtomic bool) ([]Result, error)
}

// Result is the outcome of a single command.
//
// Value is one of nil, string, int64, bool or []any (nested values of the same types).
type Result struct {
	Value any
	Err   error
}

// String returns the value (or error) of the result in CLI notation.
func (r Result) String() string {
	if r.Err != nil {
		return "(error) " + r.Err.Error()
	}
	return formatValue(r.Value)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "(nil)"
	case string:
		return fmt.Sprintf("%q", t)
	case bool:
		if t {
			return "(true)"
		}
		return "(false)"
	case int64:
		return fmt.Sprintf("(integer) %d", t)
	case []any:
		s := "["
		for i, item := range t {
			if i > 0 {
				s += ", "
			}
			s += formatValue(item)
		}
		return s + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Values returns the values of results. Failed results are represented by their error.
func Values(results []Result) []any {
	out := make([]any, len(results))
	for i, r := range results {
		if r.Err != nil {
			out[i] = r.Err
		} else {
			out[i] = r.Value
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Execution
// --------------------------------------------------------------------------

// Exec submits the batch to ex and interprets the result.
//
// A batch with recorded errors (see Err) is refused before anything is sent.
// An empty batch yields an empty result without calling ex.
//
// Atomic batches return either one result per command or an error, never a
// partial array. Pipelines return one result per command, a failed command
// carries its error in Result.Err. If raiseOnError is set, the first such
// error is returned instead.
//
// Once submitted, nothing can be appended to the batch anymore, but it can be
// executed again. Every execution is independent.
func (b *Batch) Exec(ctx context.Context, ex IExecutor, raiseOnError bool) ([]Result, error) {
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("batch contains invalid commands: %w", err)
	}
	if b.state == StateSubmitted {
		return nil, NewError(ErrCBatchSealed, "batch is already being executed")
	}

	// the executor sees a snapshot, the batch itself is sealed from here on
	cmds := b.Commands()
	b.state = StateSubmitted

	if len(cmds) == 0 {
		b.state = StateCompleted
		return []Result{}, nil
	}

	results, err := ex.Submit(ctx, cmds, b.isAtomic)
	if err != nil {
		b.state = StateFailed
		return nil, err
	}

	if len(results) != len(cmds) {
		b.state = StateFailed
		return nil, NewErrorf(ErrCMalformedResponse, "expected %d results, got %d", len(cmds), len(results))
	}

	for i, r := range results {
		if r.Err == nil {
			continue
		}
		if b.isAtomic {
			// an atomic result array never contains errors
			b.state = StateFailed
			return nil, abortError(i, r.Err)
		}
		if raiseOnError {
			b.state = StateFailed
			return nil, indexedError(i, r.Err)
		}
	}

	b.state = StateCompleted
	return results, nil
}

// abortError converts the failure of command i into the error of an aborted transaction.
func abortError(i int, err error) error {
	var be *Error
	if errors.As(err, &be) && be.Code == ErrCExecAborted {
		return err
	}
	return NewErrorf(ErrCExecAborted, "transaction aborted: %s", errorMessage(err)).WithIndex(i)
}

// indexedError binds err to the command at index i.
func indexedError(i int, err error) error {
	var be *Error
	if errors.As(err, &be) {
		return be.WithIndex(i)
	}
	return fmt.Errorf("command %d: %w", i, err)
}

func errorMessage(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Msg
	}
	return err.Error()
}
