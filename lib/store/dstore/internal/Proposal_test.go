package internal

import (
	"testing"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name     string
		proposal Proposal
	}{
		{
			name: "atomic batch",
			proposal: Proposal{
				Atomic:   true,
				DB:       3,
				Now:      1_700_000_000_123,
				Commands: batch.NewBatch(true).Select(1).Copy("k1", "k2", 2, false).Commands(),
			},
		},
		{
			name: "pipeline with binary values",
			proposal: Proposal{
				DB:       0,
				Now:      42,
				Commands: batch.NewBatch(false).Set("a", []byte{0, 1, 2, 255}).RPush("l", "x", "y").Commands(),
			},
		},
		{
			name:     "empty",
			proposal: Proposal{Commands: []batch.Command{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.proposal.Serialize()

			var decoded Proposal
			require.NoError(t, decoded.Deserialize(data))
			assert.Equal(t, tt.proposal.Atomic, decoded.Atomic)
			assert.Equal(t, tt.proposal.DB, decoded.DB)
			assert.Equal(t, tt.proposal.Now, decoded.Now)
			require.Len(t, decoded.Commands, len(tt.proposal.Commands))
			for i, cmd := range tt.proposal.Commands {
				assert.Equal(t, cmd.String(), decoded.Commands[i].String())
			}
		})
	}
}

func TestProposalDeserializeErrors(t *testing.T) {
	var p Proposal
	assert.Error(t, p.Deserialize([]byte{1, 2, 3}))

	data := (&Proposal{Commands: batch.NewBatch(false).Ping().Commands()}).Serialize()
	assert.Error(t, p.Deserialize(data[:len(data)-1]))
	assert.Error(t, p.Deserialize(append(data, 0)))
}

func TestResultEncoding(t *testing.T) {
	replies := []batch.Reply{batch.OKReply(), batch.BoolReply(true), batch.NilReply()}
	decoded, selected, err := DecodeReplies(EncodeReplies(7, replies))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), selected)
	assert.Equal(t, replies, decoded)

	_, _, err = DecodeReplies([]byte{1})
	assert.Error(t, err)

	be := DecodeError(EncodeError(batch.NewError(batch.ErrCExecAborted, "transaction aborted: boom").WithIndex(4)))
	assert.Equal(t, batch.ErrCExecAborted, be.Code)
	assert.Equal(t, 4, be.Index)
	assert.Equal(t, "transaction aborted: boom", be.Msg)

	be = DecodeError(EncodeError(assert.AnError))
	assert.Equal(t, batch.ErrCInternal, be.Code)
	assert.Equal(t, -1, be.Index)

	assert.Equal(t, batch.ErrCInternal, DecodeError(nil).Code)
}
