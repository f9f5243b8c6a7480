package batch

import (
	"fmt"
)

// ReplyKind is the type of a Reply.
type ReplyKind uint8

const (
	ReplyNil    ReplyKind = iota // No value
	ReplyString                  // Text or binary string (Reply.Str)
	ReplyInt                     // Signed integer (Reply.Int)
	ReplyBool                    // Boolean (Reply.Int is 0 or 1)
	ReplyArray                   // Nested replies (Reply.Items)
	ReplyError                   // Failed command (Reply.Code, Reply.Str)
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyNil:
		return "Nil"
	case ReplyString:
		return "String"
	case ReplyInt:
		return "Int"
	case ReplyBool:
		return "Bool"
	case ReplyArray:
		return "Array"
	case ReplyError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Reply is the serializable form of a Result. It is what stores produce and
// what travels over the network and through the raft log.
type Reply struct {
	Kind  ReplyKind `json:"kind"`
	Str   string    `json:"str,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Items []Reply   `json:"items,omitempty"`
	Code  ErrorCode `json:"code,omitempty"`
}

// Convenience constructors, used by the stores.

func NilReply() Reply { return Reply{Kind: ReplyNil} }
func StringReply(s string) Reply { return Reply{Kind: ReplyString, Str: s} }
func IntReply(i int64) Reply { return Reply{Kind: ReplyInt, Int: i} }
func ArrayReply(items []Reply) Reply { return Reply{Kind: ReplyArray, Items: items} }
func OKReply() Reply { return StringReply("OK") }

func BoolReply(b bool) Reply {
	if b {
		return Reply{Kind: ReplyBool, Int: 1}
	}
	return Reply{Kind: ReplyBool}
}

// ErrorReply converts err into an error reply, keeping its code if it has one.
func ErrorReply(err error) Reply {
	return Reply{Kind: ReplyError, Code: CodeOf(err), Str: errorMessage(err)}
}

// IsError reports whether the reply represents a failed command.
func (r Reply) IsError() bool {
	return r.Kind == ReplyError
}

// Value converts the reply into a plain Go value (nil, string, int64, bool or []any).
// Error replies, also nested ones, are returned as *Error.
func (r Reply) Value() any {
	switch r.Kind {
	case ReplyString:
		return r.Str
	case ReplyInt:
		return r.Int
	case ReplyBool:
		return r.Int != 0
	case ReplyArray:
		items := make([]any, len(r.Items))
		for i, item := range r.Items {
			items[i] = item.Value()
		}
		return items
	case ReplyError:
		return NewError(r.Code, r.Str)
	default:
		return nil
	}
}

// Result converts the reply into a Result.
func (r Reply) Result() Result {
	if r.Kind == ReplyError {
		return Result{Err: NewError(r.Code, r.Str)}
	}
	return Result{Value: r.Value()}
}

// ReplyOf converts a Result into a Reply. Values of unsupported types become
// an ErrCInternal error reply.
func ReplyOf(res Result) Reply {
	if res.Err != nil {
		return ErrorReply(res.Err)
	}
	return replyOfValue(res.Value)
}

func replyOfValue(v any) Reply {
	switch t := v.(type) {
	case nil:
		return NilReply()
	case string:
		return StringReply(t)
	case []byte:
		return StringReply(string(t))
	case int64:
		return IntReply(t)
	case int:
		return IntReply(int64(t))
	case bool:
		return BoolReply(t)
	case []string:
		items := make([]Reply, len(t))
		for i, s := range t {
			items[i] = StringReply(s)
		}
		return ArrayReply(items)
	case []any:
		items := make([]Reply, len(t))
		for i, item := range t {
			items[i] = replyOfValue(item)
		}
		return ArrayReply(items)
	case error:
		return ErrorReply(t)
	default:
		return ErrorReply(NewErrorf(ErrCInternal, "unsupported result type %T", v))
	}
}

// Results converts replies into results.
func Results(replies []Reply) []Result {
	out := make([]Result, len(replies))
	for i, r := range replies {
		out[i] = r.Result()
	}
	return out
}

// Replies converts results into replies.
func Replies(results []Result) []Reply {
	out := make([]Reply, len(results))
	for i, r := range results {
		out[i] = ReplyOf(r)
	}
	return out
}
