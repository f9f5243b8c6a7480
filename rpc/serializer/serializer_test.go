package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTResponse},

		// Pipeline request
		*common.NewBatchRequest(0, batch.NewBatch(false).Set("a", "1").Set("b", "2").Commands(), false),

		// Transaction request with a selected database
		*common.NewBatchRequest(3, batch.NewBatch(true).Select(1).Copy("k1", "k2", 2, false).Commands(), true),

		// Response with every reply kind
		{
			MsgType: common.MsgTResponse,
			DB:      1,
			Replies: []batch.Reply{
				batch.OKReply(),
				batch.NilReply(),
				batch.IntReply(-42),
				batch.BoolReply(true),
				batch.ArrayReply([]batch.Reply{batch.StringReply("0"), batch.ArrayReply([]batch.Reply{batch.StringReply("k")})}),
				batch.ErrorReply(batch.NewError(batch.ErrCCommandFailed, "WRONGTYPE")),
			},
			TraceID: "5f0c6e1e-8c55-4a39-a4b1-9e0f3c1f2a77",
		},

		// Error response
		*common.NewErrorResponse(batch.NewError(batch.ErrCExecAborted, "test error message").WithIndex(2)),
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestDecodedRequestMatchesBatch checks that the server side sees the commands the client built
func TestDecodedRequestMatchesBatch(t *testing.T) {
	b := batch.NewBatch(true).
		SetWithOptions("k", []byte{0, 1, 2}, batch.NewSetOptions().SetOnlyIfDoesNotExist()).
		LPush("l", "a", "b").
		ScanWithOptions("0", batch.NewScanOptions().SetMatch("k*").SetCount(5))

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			data, err := serializer.Serialize(*common.NewBatchRequest(4, b.Commands(), b.IsAtomic()))
			require.NoError(t, err)

			var req common.Message
			require.NoError(t, serializer.Deserialize(data, &req))
			assert.True(t, req.IsAtomic())
			assert.Equal(t, uint64(4), req.DB)

			cmds, err := req.BatchCommands()
			require.NoError(t, err)
			require.Len(t, cmds, b.Len())
			for i, cmd := range b.Commands() {
				assert.Equal(t, cmd.Type(), cmds[i].Type())
				assert.Equal(t, cmd.Strings(), cmds[i].Strings())
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTPipeline; msgType <= common.MsgTError; msgType++ {
				msg := common.Message{MsgType: msgType}

				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Empty command and reply lists",
			msg: common.Message{
				MsgType:  common.MsgTPipeline,
				Commands: []common.CommandFrame{},
				Replies:  []batch.Reply{},
			},
		},
		{
			name: "Empty argument",
			msg: common.Message{
				MsgType:  common.MsgTPipeline,
				Commands: []common.CommandFrame{{Type: batch.RequestGet, Args: [][]byte{{}}}},
			},
		},
		{
			name: "Error without message",
			msg: common.Message{
				MsgType: common.MsgTError,
				Code:    batch.ErrCInternal,
				Index:   -1,
			},
		},
		{
			name: "Max database index",
			msg: common.Message{
				MsgType: common.MsgTResponse,
				DB:      ^uint64(0),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := serializer.Serialize(tc.msg)
			require.NoError(t, err)

			var result common.Message
			require.NoError(t, serializer.Deserialize(data, &result))
			assert.Equal(t, tc.msg, result)
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()
	header := func(flags byte) []byte {
		return []byte{byte(common.MsgTPipeline), flags, 0, 0, 0, 0, 0, 0, 0, 0}
	}

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1, 0, 0},
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        header(0),
			expectError: false,
		},
		{
			name:        "Command count without commands",
			data:        append(header(hasCommands), 0, 0, 0, 5),
			expectError: true,
		},
		{
			name:        "Invalid length for argument",
			data:        append(header(hasCommands), 0, 0, 0, 1, 0, 1, 0, 0, 0, 1, 0, 0, 0, 9, 'a'),
			expectError: true,
		},
		{
			name:        "Invalid length for trace id",
			data:        append(header(hasTrace), 0, 0, 0, 10),
			expectError: true,
		},
		{
			name:        "Trailing bytes",
			data:        append(header(0), 1),
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
