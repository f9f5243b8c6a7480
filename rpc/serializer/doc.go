// Package serializer converts common.Message values to bytes and back.
//
// Key Components:
//
//   - IRPCSerializer: interface implemented by all serializers.
//
//   - binarySerializerImpl: custom binary format. A flags byte marks which of the
//     optional sections (commands, replies, error, trace id) are present. Replies
//     use the reply encoding of the batch package. Recommended for production use.
//
//   - jsonSerializerImpl: JSON, human-readable and useful for debugging. Binary
//     arguments are base64 encoded. Reply strings must be valid UTF-8 to survive
//     the round trip.
//
//   - gobSerializerImpl: Go's gob encoding. Empty slices are decoded as nil.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use.
//
// Usage:
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewBatchRequest(0, b.Commands(), b.IsAtomic()))
//	// ... send data ...
//	var resp common.Message
//	err = s.Deserialize(receivedData, &resp)
package serializer
