package lock

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
)

// StateSize is the length of vesting cell data.
const StateSize = 32

// State is the mutable accounting snapshot stored in the data of a
// vesting cell:
//
//	total_amount u64 | beneficiary_claimed u64 |
//	creator_claimed u64 | highest_block_seen u64
//
// Integers are little endian. A State is never validated on its
// own; only transitions between an input and its successor are.
type State struct {
	TotalAmount        uint64
	BeneficiaryClaimed uint64
	CreatorClaimed     uint64
	HighestBlockSeen   uint64
}

// ParseState decodes cell data. A wrong length is ErrWrongDataLength;
// callers that need a position-specific code check the length first.
func ParseState(data []byte) (State, error) {
	if len(data) != StateSize {
		return State{}, errors.Wrapf(vesting.ErrWrongDataLength,
			"cell data is %d bytes, want %d", len(data), StateSize)
	}
	return State{
		TotalAmount:        binary.LittleEndian.Uint64(data[0:]),
		BeneficiaryClaimed: binary.LittleEndian.Uint64(data[8:]),
		CreatorClaimed:     binary.LittleEndian.Uint64(data[16:]),
		HighestBlockSeen:   binary.LittleEndian.Uint64(data[24:]),
	}, nil
}

// Bytes encodes s in the cell data layout.
func (s State) Bytes() []byte {
	buf := make([]byte, 0, StateSize)
	buf = binary.LittleEndian.AppendUint64(buf, s.TotalAmount)
	buf = binary.LittleEndian.AppendUint64(buf, s.BeneficiaryClaimed)
	buf = binary.LittleEndian.AppendUint64(buf, s.CreatorClaimed)
	buf = binary.LittleEndian.AppendUint64(buf, s.HighestBlockSeen)
	return buf
}

// Terminated reports whether the creator has already reclaimed the
// unvested remainder.
func (s State) Terminated() bool {
	return s.CreatorClaimed > 0
}

// Remaining is what is left for the beneficiary after termination:
// total - creator_claimed - beneficiary_claimed, saturating at zero.
func (s State) Remaining() uint64 {
	return satSub(satSub(s.TotalAmount, s.CreatorClaimed), s.BeneficiaryClaimed)
}

func satSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func satAdd(a, b uint64) uint64 {
	if s := a + b; s >= a {
		return s
	}
	return ^uint64(0)
}
