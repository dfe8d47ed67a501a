package lock

import (
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
)

// Temporal is what a transaction tells the lock about time.
type Temporal struct {
	// InputWatermark is the highest highest_block_seen among the
	// inputs guarded by this lock.
	InputWatermark uint64
	// HeaderBlock and HeaderEpoch are the maxima over the header
	// dependencies. HeaderEpoch drives the schedule.
	HeaderBlock uint64
	HeaderEpoch uint64
	// Headers is the number of header dependencies.
	Headers int
}

// checkFreshness requires at least one header and that the newest
// header is strictly newer than anything an input has recorded, so
// old header facts cannot be replayed.
func (t Temporal) checkFreshness() error {
	if t.Headers == 0 {
		return vesting.ErrNoHeaderDependencies
	}
	if t.HeaderBlock <= t.InputWatermark {
		return errors.Wrapf(vesting.ErrStaleHeader,
			"newest header block %d, input watermark %d", t.HeaderBlock, t.InputWatermark)
	}
	return nil
}

// checkWatermark applies to a real successor cell: its watermark
// never moves backwards and must equal the newest header exactly.
func (t Temporal) checkWatermark(in, out State) error {
	if out.HighestBlockSeen < in.HighestBlockSeen {
		return errors.Wrapf(vesting.ErrBlockNumberDecrease,
			"output watermark %d below input %d", out.HighestBlockSeen, in.HighestBlockSeen)
	}
	if out.HighestBlockSeen != t.HeaderBlock {
		return errors.Wrapf(vesting.ErrBlockNumberMismatch,
			"output watermark %d, newest header %d", out.HighestBlockSeen, t.HeaderBlock)
	}
	return nil
}
