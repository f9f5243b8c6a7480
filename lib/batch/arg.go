package batch

import (
	"strconv"
)

// --------------------------------------------------------------------------
// Argument Kinds
// --------------------------------------------------------------------------

// ArgKind is the representation of a single command argument.
// The set is closed: an argument is either text or raw bytes.
type ArgKind uint8

const (
	ArgText  ArgKind = iota // UTF-8 text
	ArgBytes                // Opaque byte sequence
)

func (k ArgKind) String() string {
	switch k {
	case ArgText:
		return "text"
	case ArgBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Argument
// --------------------------------------------------------------------------

// Arg is one encoded command argument.
// The zero value is the empty text argument.
type Arg struct {
	kind ArgKind
	text string
	raw  []byte
}

// Text creates a text argument.
func Text(s string) Arg {
	return Arg{kind: ArgText, text: s}
}

// Bytes creates a raw byte argument. The slice is copied.
func Bytes(b []byte) Arg {
	c := make([]byte, len(b))
	copy(c, b)
	return Arg{kind: ArgBytes, raw: c}
}

// Kind returns the representation of the argument.
func (a Arg) Kind() ArgKind {
	return a.kind
}

// String returns the argument as a string regardless of its kind.
func (a Arg) String() string {
	if a.kind == ArgBytes {
		return string(a.raw)
	}
	return a.text
}

// Bytes returns the argument as a fresh byte slice regardless of its kind.
func (a Arg) Bytes() []byte {
	if a.kind == ArgBytes {
		c := make([]byte, len(a.raw))
		copy(c, a.raw)
		return c
	}
	return []byte(a.text)
}

// Len returns the length of the encoded argument in bytes.
func (a Arg) Len() int {
	if a.kind == ArgBytes {
		return len(a.raw)
	}
	return len(a.text)
}

// Equal reports whether both arguments encode the same bytes.
// The kind is ignored since the store does not distinguish the two.
func (a Arg) Equal(b Arg) bool {
	return a.String() == b.String()
}

// --------------------------------------------------------------------------
// Argument Validator
// --------------------------------------------------------------------------

// ToArg converts a generically typed store value (key, value, cursor, ...) into an Arg.
// Only string, []byte and Arg are accepted, anything else fails with ErrCInvalidArgumentType.
func ToArg(v any) (Arg, error) {
	switch t := v.(type) {
	case string:
		return Text(t), nil
	case []byte:
		return Bytes(t), nil
	case Arg:
		return t, nil
	case nil:
		return Arg{}, NewError(ErrCInvalidArgumentType, "expected string or []byte, got nil")
	default:
		return Arg{}, NewErrorf(ErrCInvalidArgumentType, "expected string or []byte, got %T", v)
	}
}

// CheckArg validates a generically typed parameter without converting it.
func CheckArg(v any) error {
	_, err := ToArg(v)
	return err
}

// CheckArgs validates every parameter and returns the first failure.
func CheckArgs(vs ...any) error {
	for _, v := range vs {
		if err := CheckArg(v); err != nil {
			return err
		}
	}
	return nil
}

// primitiveToArg converts the primitive parameter types (index, count, flag) to text.
func primitiveToArg(v any) (Arg, bool) {
	switch t := v.(type) {
	case int:
		return Text(strconv.Itoa(t)), true
	case int64:
		return Text(strconv.FormatInt(t, 10)), true
	case int32:
		return Text(strconv.FormatInt(int64(t), 10)), true
	case uint64:
		return Text(strconv.FormatUint(t, 10)), true
	case uint32:
		return Text(strconv.FormatUint(uint64(t), 10)), true
	case float64:
		return Text(strconv.FormatFloat(t, 'g', -1, 64)), true
	case bool:
		if t {
			return Text("1"), true
		}
		return Text("0"), true
	default:
		return Arg{}, false
	}
}
