package batch

import (
	"errors"
)

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// State is the lifecycle state of a Batch.
type State uint8

const (
	StateBuilding  State = iota // Commands can be appended
	StateSubmitted              // Handed to an executor, waiting for the result
	StateCompleted              // The last submission returned a result array
	StateFailed                 // The last submission failed as a whole
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "Building"
	case StateSubmitted:
		return "Submitted"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Batch Accumulator
// --------------------------------------------------------------------------

// Batch is an ordered sequence of commands, submitted either as an atomic
// transaction or as a non-atomic pipeline.
//
// Every operation method validates its parameters, builds the argument list,
// creates the command and appends it, then returns the same *Batch so calls
// can be chained:
//
//	b := batch.NewBatch(true).
//		Select(1).
//		Copy("k1", "k2", 2, false)
//
// A call that fails leaves the command sequence unchanged and records its
// error, which is returned by Err and makes Exec refuse the batch. Earlier
// appends are kept.
//
// A Batch is not safe for concurrent mutation.
type Batch struct {
	isAtomic bool
	cluster  bool
	commands []Command
	errs     []error
	state    State
}

// NewBatch creates an empty batch for a standalone deployment.
// isAtomic selects transaction (true) or pipeline (false) execution and cannot be changed later.
func NewBatch(isAtomic bool) *Batch {
	return &Batch{
		isAtomic: isAtomic,
		commands: make([]Command, 0, 8),
		state:    StateBuilding,
	}
}

// NewClusterBatch creates an empty batch for a clustered deployment.
// Operations addressing a numbered database (SELECT, MOVE, COPY with DB) are rejected.
func NewClusterBatch(isAtomic bool) *Batch {
	b := NewBatch(isAtomic)
	b.cluster = true
	return b
}

// IsAtomic reports whether the batch is executed as a transaction.
func (b *Batch) IsAtomic() bool {
	return b.isAtomic
}

// IsCluster reports whether the batch targets a clustered deployment.
func (b *Batch) IsCluster() bool {
	return b.cluster
}

// Len returns the number of accumulated commands.
func (b *Batch) Len() int {
	return len(b.commands)
}

// Commands returns a copy of the accumulated command sequence.
func (b *Batch) Commands() []Command {
	out := make([]Command, len(b.commands))
	copy(out, b.commands)
	return out
}

// State returns the current lifecycle state.
func (b *Batch) State() State {
	return b.state
}

// Err returns every error recorded by a failed operation call, joined, or nil.
func (b *Batch) Err() error {
	return errors.Join(b.errs...)
}

// Errors returns the recorded errors in call order.
func (b *Batch) Errors() []error {
	out := make([]error, len(b.errs))
	copy(out, b.errs)
	return out
}

// TakeErr returns the recorded errors like Err and forgets them.
// The rejected calls appended nothing, so after fixing them the batch can be
// executed with the commands that were accepted.
func (b *Batch) TakeErr() error {
	err := b.Err()
	b.errs = nil
	return err
}

// AppendCommand adds an already built command.
// The same sealing and topology rules as for the operation methods apply.
func (b *Batch) AppendCommand(cmd Command) *Batch {
	if err := b.admit(cmd); err != nil {
		return b.fail(err)
	}
	b.commands = append(b.commands, cmd)
	return b
}

// add is the common path of every operation method: build the arguments,
// create the command and append it. Nothing is appended if any step fails.
func (b *Batch) add(tag RequestType, build func(*ArgsBuilder)) *Batch {
	if b.state != StateBuilding {
		return b.fail(NewErrorf(ErrCBatchSealed, "cannot append %s to a submitted batch", tag))
	}

	ab := NewArgsBuilder()
	build(ab)
	args, err := ab.Args()
	if err != nil {
		return b.fail(err)
	}

	cmd, err := NewCommand(tag, args)
	if err != nil {
		return b.fail(err)
	}
	return b.AppendCommand(cmd)
}

// admit checks whether cmd may be appended in the current state and topology.
func (b *Batch) admit(cmd Command) error {
	if b.state != StateBuilding {
		return NewErrorf(ErrCBatchSealed, "cannot append %s to a submitted batch", cmd.Type())
	}
	if b.cluster && !AllowedInCluster(cmd) {
		return NewErrorf(ErrCUnsupportedInCluster, "%s is not supported in cluster mode", cmd.Type())
	}
	return nil
}

// fail records err for the call at the next command position and returns b.
func (b *Batch) fail(err error) *Batch {
	var be *Error
	if errors.As(err, &be) {
		err = be.WithIndex(len(b.commands))
	}
	b.errs = append(b.errs, err)
	return b
}

// AllowedInCluster reports whether cmd can be executed in a clustered deployment.
// A cluster only has database 0, so operations naming another database are illegal.
func AllowedInCluster(cmd Command) bool {
	switch cmd.Type() {
	case RequestSelect, RequestMove:
		return false
	case RequestCopy:
		for _, a := range cmd.args {
			if a.String() == DBKeyword {
				return false
			}
		}
		return true
	default:
		return true
	}
}
