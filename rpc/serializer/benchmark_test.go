package serializer

import (
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	large := make([]byte, 1024*16) // 16KB of data
	many := batch.NewBatch(false)
	for i := 0; i < 100; i++ {
		many.Set("key", "value")
	}
	replies := make([]batch.Reply, 100)
	for i := range replies {
		replies[i] = batch.OKReply()
	}

	return map[string]common.Message{
		"Empty": {
			MsgType: common.MsgTResponse,
		},
		"SingleGet":       *common.NewBatchRequest(0, batch.NewBatch(false).Get("k").Commands(), false),
		"LargeValue":      *common.NewBatchRequest(0, batch.NewBatch(false).Set("key", large).Commands(), false),
		"HundredCommands": *common.NewBatchRequest(0, many.Commands(), true),
		"HundredReplies":  *common.NewBatchResponse(replies, 0),
		"ScanReply": *common.NewBatchResponse([]batch.Reply{batch.ArrayReply([]batch.Reply{
			batch.StringReply("10"),
			batch.ArrayReply([]batch.Reply{batch.StringReply("a"), batch.StringReply("b"), batch.StringReply("c")}),
		})}, 0),
		"ErrorMessage": *common.NewErrorResponse(batch.NewError(batch.ErrCExecAborted,
			"Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.")),
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations with various message types
func BenchmarkSerialize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := serializer.Serialize(msg)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations with various message types
func BenchmarkDeserialize(b *testing.B) {
	messages := benchmarkMessages()
	serializedData := make(map[string]map[string][]byte)

	// Pre-serialize all messages with all serializers
	for name, factory := range testSerializers {
		serializer := factory()
		serializedData[name] = make(map[string][]byte)

		for msgName, msg := range messages {
			data, err := serializer.Serialize(msg)
			if err != nil {
				b.Fatalf("Failed to serialize %s with %s: %v", msgName, name, err)
			}
			serializedData[name][msgName] = data
		}
	}

	// Benchmark deserialization
	for name, factory := range testSerializers {
		for msgName := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				data := serializedData[name][msgName]
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var msg common.Message
					err := serializer.Deserialize(data, &msg)
					if err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSize measures and reports the serialized size for each message type
func BenchmarkSize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		serializer := factory()

		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}

				// Report the size as a custom metric
				b.ReportMetric(float64(len(data)), "bytes")

				// Minimal loop to satisfy benchmark requirements
				for i := 0; i < b.N; i++ {
					_ = data
				}
			})
		}
	}
}
