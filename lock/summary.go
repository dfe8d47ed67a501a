package lock

import (
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

// summary is everything the transition rules need from the
// transaction, gathered in a single pass over the ledger.
type summary struct {
	auth Authorization
	// matching counts the inputs guarded by this lock.
	matching  int
	inputData []byte
	// watermarkErr is set when a matching input's data cannot be
	// read as a state while computing the input watermark.
	watermarkErr error
	temporal     Temporal
	hasOutput    bool
	outputData   []byte
}

func scan(l vesting.Ledger, self types.Hash, cfg Config) (summary, error) {
	var (
		s     summary
		locks []types.Hash
	)
	for i := 0; ; i++ {
		h, err := l.LockHash(i, vesting.SourceInput)
		if errors.Is(err, vesting.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return summary{}, errors.Wrapf(err, "input %d lock", i)
		}
		locks = append(locks, h)
		if h != self {
			continue
		}
		data, err := l.CellData(i, vesting.SourceInput)
		if err != nil {
			return summary{}, errors.Wrapf(vesting.ErrLoadCellDataFailed, "input %d: %v", i, err)
		}
		s.matching++
		if s.matching == 1 {
			s.inputData = data
		}
		if len(data) != StateSize {
			if s.watermarkErr == nil {
				s.watermarkErr = errors.Wrapf(vesting.ErrInputDataWrongLength,
					"input %d data is %d bytes", i, len(data))
			}
			continue
		}
		st, _ := ParseState(data)
		s.temporal.InputWatermark = max(s.temporal.InputWatermark, st.HighestBlockSeen)
	}
	s.auth = ResolveAuthorization(locks, cfg)

	for i := 0; ; i++ {
		hdr, err := l.Header(i)
		if errors.Is(err, vesting.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return summary{}, errors.Wrapf(err, "header dep %d", i)
		}
		s.temporal.Headers++
		s.temporal.HeaderBlock = max(s.temporal.HeaderBlock, hdr.Number)
		s.temporal.HeaderEpoch = max(s.temporal.HeaderEpoch, hdr.Epoch)
	}

	// The first output guarded by this lock is the successor.
	for i := 0; !s.hasOutput; i++ {
		h, err := l.LockHash(i, vesting.SourceOutput)
		if errors.Is(err, vesting.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return summary{}, errors.Wrapf(err, "output %d lock", i)
		}
		if h != self {
			continue
		}
		data, err := l.CellData(i, vesting.SourceOutput)
		if err != nil {
			return summary{}, errors.Wrapf(vesting.ErrLoadCellDataFailed, "output %d: %v", i, err)
		}
		s.hasOutput = true
		s.outputData = data
	}
	return s, nil
}
