package internal

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/kvbatch/lib/batch"
)

// proposalHeaderSize is flags (1) + db (8) + now (8)
const proposalHeaderSize = 1 + 8 + 8

const flagAtomic = 1 << 0

// Proposal is a whole command batch, proposed as a single entry of the raft log.
//
// Now is the time (unix ms) of the proposing node. Every replica evaluates
// expiry against it, so all replicas apply the batch identically.
type Proposal struct {
	Atomic   bool
	DB       uint64
	Now      int64
	Commands []batch.Command
}

// Serialize encodes the proposal with the format:
// 1 byte flags (bit 0 = atomic),
// 8 bytes selected database (big endian),
// 8 bytes time in unix ms (big endian),
// the commands as encoded by batch.EncodeCommands
func (p *Proposal) Serialize() []byte {
	buf := make([]byte, proposalHeaderSize, proposalHeaderSize+64*len(p.Commands))
	if p.Atomic {
		buf[0] = flagAtomic
	}
	binary.BigEndian.PutUint64(buf[1:9], p.DB)
	binary.BigEndian.PutUint64(buf[9:17], uint64(p.Now))
	return append(buf, batch.EncodeCommands(p.Commands)...)
}

// Deserialize decodes a proposal created by Serialize.
func (p *Proposal) Deserialize(data []byte) error {
	if len(data) < proposalHeaderSize {
		return fmt.Errorf("data too short for proposal: %d bytes", len(data))
	}
	p.Atomic = data[0]&flagAtomic != 0
	p.DB = binary.BigEndian.Uint64(data[1:9])
	p.Now = int64(binary.BigEndian.Uint64(data[9:17]))

	cmds, n, err := batch.DecodeCommands(data[proposalHeaderSize:])
	if err != nil {
		return fmt.Errorf("failed to decode commands: %w", err)
	}
	if proposalHeaderSize+n != len(data) {
		return fmt.Errorf("%d trailing bytes after proposal", len(data)-proposalHeaderSize-n)
	}
	p.Commands = cmds
	return nil
}
