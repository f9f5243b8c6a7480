package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsEncodeDecode(t *testing.T) {
	b := NewBatch(true).
		Select(2).
		Set([]byte{0x00, 0x01, 0xff}, "value").
		Copy("k1", "k2", 2, true).
		Ping()
	require.NoError(t, b.Err())
	cmds := b.Commands()

	data := EncodeCommands(cmds)
	decoded, n, err := DecodeCommands(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	require.Len(t, decoded, len(cmds))

	for i := range cmds {
		assert.Equal(t, cmds[i].Type(), decoded[i].Type())
		assert.Equal(t, cmds[i].Strings(), decoded[i].Strings())
		for j := 0; j < cmds[i].NumArgs(); j++ {
			assert.Equal(t, cmds[i].Arg(j).Kind(), decoded[i].Arg(j).Kind())
		}
	}
}

func TestReadCommandRejectsBadFrames(t *testing.T) {
	valid := AppendCommand(nil, MustCommand(RequestGet, Text("key")))

	t.Run("truncated", func(t *testing.T) {
		for i := 0; i < len(valid); i++ {
			_, _, err := ReadCommand(valid[:i])
			assert.Error(t, err, "prefix of length %d", i)
		}
	})

	t.Run("arity", func(t *testing.T) {
		// GET with two arguments
		frame := []byte{0x00, byte(RequestGet), 0, 0, 0, 2,
			byte(ArgText), 0, 0, 0, 1, 'a',
			byte(ArgText), 0, 0, 0, 1, 'b'}
		_, _, err := ReadCommand(frame)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrCMalformedArgumentList))
	})

	t.Run("unknown tag", func(t *testing.T) {
		frame := []byte{0xff, 0xff, 0, 0, 0, 0}
		_, _, err := ReadCommand(frame)
		assert.Error(t, err)
	})

	t.Run("huge argument count", func(t *testing.T) {
		frame := []byte{0x00, byte(RequestDel), 0xff, 0xff, 0xff, 0xff}
		_, _, err := ReadCommand(frame)
		assert.Error(t, err)
	})
}

func TestRepliesEncodeDecode(t *testing.T) {
	replies := []Reply{
		OKReply(),
		NilReply(),
		IntReply(-42),
		BoolReply(true),
		BoolReply(false),
		StringReply("\x00binary\xff"),
		ArrayReply([]Reply{StringReply("0"), ArrayReply([]Reply{StringReply("a"), StringReply("b")})}),
		ErrorReply(NewError(ErrCCommandFailed, "WRONGTYPE Operation against a key holding the wrong kind of value")),
	}

	data := EncodeReplies(replies)
	decoded, n, err := DecodeReplies(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, replies, decoded)
}

func TestReplyResultConversion(t *testing.T) {
	results := []Result{
		{Value: "OK"},
		{Value: true},
		{Value: int64(3)},
		{Value: nil},
		{Value: []any{"0", []any{"a", "b"}}},
		{Err: NewError(ErrCCommandFailed, "boom")},
	}

	back := Results(Replies(results))
	require.Len(t, back, len(results))
	for i := 0; i < len(results)-1; i++ {
		assert.Equal(t, results[i].Value, back[i].Value, "result %d", i)
		assert.NoError(t, back[i].Err)
	}
	last := back[len(back)-1]
	assert.True(t, IsCode(last.Err, ErrCCommandFailed))
	assert.Contains(t, last.Err.Error(), "boom")
}

func TestReplyOfUnsupportedType(t *testing.T) {
	r := ReplyOf(Result{Value: 3.5})
	assert.True(t, r.IsError())
	assert.Equal(t, ErrCInternal, r.Code)
}
