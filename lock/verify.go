// Package lock implements the vesting lock: the rules deciding
// whether a transaction may spend a vesting cell.
//
// A vesting cell holds value released to a beneficiary on a linear
// schedule with a cliff. The lock accepts exactly three kinds of
// transition: the creator terminating the schedule and reclaiming
// what has not vested, the beneficiary claiming what has, and
// anyone advancing the cell's anti-replay watermark.
//
// Verify is pure. It reads one transaction through a
// vesting.Ledger, keeps no state between calls and may run
// concurrently with itself.
package lock

import (
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

// Report describes an accepted transition.
type Report struct {
	Lock          types.Hash
	Config        Config
	Authorization Authorization
	Operation     Operation
	Input         State
	// Output is the successor cell's state or, when Consumed is set,
	// the state implied by consuming the record entirely.
	Output   State
	Consumed bool
	Vested   uint64
	Temporal Temporal
}

// Claimed is the amount released to the beneficiary.
func (r Report) Claimed() uint64 {
	return satSub(r.Output.BeneficiaryClaimed, r.Input.BeneficiaryClaimed)
}

// Reclaimed is the amount taken back by the creator.
func (r Report) Reclaimed() uint64 {
	return satSub(r.Output.CreatorClaimed, r.Input.CreatorClaimed)
}

// Verify runs the vesting lock against the transaction behind l.
// It returns a report of the accepted transition, or an error from
// which vesting.CodeOf recovers the result code.
//
// Checks run in a fixed order so that a given transaction always
// yields the same code: arguments, schedule, input cardinality,
// input data, header freshness, output data, watermark update,
// output presence, accounting.
func Verify(l vesting.Ledger) (Report, error) {
	script, err := l.Script()
	if err != nil {
		return Report{}, errors.Wrap(err, "load script")
	}
	cfg, err := ParseConfig(script.Args)
	if err != nil {
		return Report{}, err
	}
	self := script.Hash()

	s, err := scan(l, self, cfg)
	if err != nil {
		return Report{}, err
	}

	switch {
	case s.matching > 1:
		return Report{}, errors.Wrapf(vesting.ErrMultipleInputsNotAllowed,
			"%d inputs guarded by %s", s.matching, self)
	case s.matching == 0:
		// A lock only runs for cells it guards, so this cannot happen
		// on a cell ledger. Reported as NoMatchingInputCell rather than
		// folded into MultipleInputsNotAllowed.
		return Report{}, errors.Wrapf(vesting.ErrNoMatchingInputCell,
			"no input guarded by %s", self)
	}
	in, err := ParseState(s.inputData)
	if err != nil {
		return Report{}, errors.Wrap(err, "input")
	}
	if s.watermarkErr != nil {
		return Report{}, s.watermarkErr
	}
	if err := s.temporal.checkFreshness(); err != nil {
		return Report{}, err
	}

	vested := cfg.Vested(s.temporal.HeaderEpoch, in)
	op := operationFor(s.auth)

	var out State
	if s.hasOutput {
		if len(s.outputData) != StateSize {
			// Beneficiary outputs report the generic length code.
			if s.auth == AuthBeneficiary {
				return Report{}, errors.Wrapf(vesting.ErrWrongDataLength,
					"output data is %d bytes", len(s.outputData))
			}
			return Report{}, errors.Wrapf(vesting.ErrOutputDataWrongLength,
				"output data is %d bytes", len(s.outputData))
		}
		out, _ = ParseState(s.outputData)
		if err := s.temporal.checkWatermark(in, out); err != nil {
			return Report{}, err
		}
	}

	if err := op.checkShape(in, vested, s.hasOutput); err != nil {
		return Report{}, err
	}
	if !s.hasOutput {
		out = op.consumed(in, vested)
	}
	if err := op.checkAccounting(in, out, vested); err != nil {
		return Report{}, err
	}

	return Report{
		Lock:          self,
		Config:        cfg,
		Authorization: s.auth,
		Operation:     op.kind(),
		Input:         in,
		Output:        out,
		Consumed:      !s.hasOutput,
		Vested:        vested,
		Temporal:      s.temporal,
	}, nil
}

// Run is the program entry of the lock: 0 on success, otherwise the
// result code of the first violated rule.
func Run(l vesting.Ledger) int8 {
	_, err := Verify(l)
	return int8(vesting.CodeOf(err))
}
