package lock

import (
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
)

// Operation is the class of transition a transaction performs on a
// vesting cell. It follows from the authorization alone; there is
// no way for one class to run another's rules.
type Operation uint8

const (
	// OpRefresh is an anonymous update that only advances the
	// watermark.
	OpRefresh Operation = iota
	// OpTerminate is the creator's one-shot reclaim of the unvested
	// remainder.
	OpTerminate
	// OpClaim is the beneficiary releasing vested value.
	OpClaim
)

func (o Operation) String() string {
	switch o {
	case OpTerminate:
		return "terminate"
	case OpClaim:
		return "claim"
	default:
		return "refresh"
	}
}

// operation is the closed set of transition rules. Each
// implementation is pure.
type operation interface {
	kind() Operation
	// checkShape decides whether a successor cell must or must not
	// exist.
	checkShape(in State, vested uint64, hasOutput bool) error
	// consumed is the implied successor of a fully consumed record.
	consumed(in State, vested uint64) State
	// checkAccounting validates the successor against the input.
	checkAccounting(in, out State, vested uint64) error
}

func operationFor(a Authorization) operation {
	switch a {
	case AuthCreator:
		return creatorTermination{}
	case AuthBeneficiary:
		return beneficiaryClaim{}
	default:
		return freshnessUpdate{}
	}
}

type creatorTermination struct{}

func (creatorTermination) kind() Operation { return OpTerminate }

func (creatorTermination) checkShape(in State, vested uint64, hasOutput bool) error {
	switch {
	case vested == 0:
		// Nothing vested: the creator takes everything and the
		// record ends here.
		if hasOutput {
			return vesting.ErrCreatorFullTerminationHasOutput
		}
	case vested < in.TotalAmount:
		// The vested part continues for the beneficiary.
		if !hasOutput {
			return vesting.ErrCreatorOperationMissingOutput
		}
	default:
		return errors.Wrapf(vesting.ErrNothingToTerminate,
			"vested %d of %d", vested, in.TotalAmount)
	}
	return nil
}

func (creatorTermination) consumed(in State, vested uint64) State {
	out := in
	out.CreatorClaimed = satAdd(in.CreatorClaimed, satSub(in.TotalAmount, vested))
	return out
}

func (creatorTermination) checkAccounting(in, out State, vested uint64) error {
	if in.Terminated() {
		return errors.Wrapf(vesting.ErrAlreadyTerminated,
			"creator already reclaimed %d", in.CreatorClaimed)
	}
	unvested := satSub(in.TotalAmount, vested)
	reclaimed := satSub(out.CreatorClaimed, in.CreatorClaimed)
	if reclaimed != unvested {
		return errors.Wrapf(vesting.ErrInvalidAmount,
			"creator reclaims %d, unvested is %d", reclaimed, unvested)
	}
	return checkConsistency(in, out, 0, reclaimed)
}

type beneficiaryClaim struct{}

func (beneficiaryClaim) kind() Operation { return OpClaim }

func (beneficiaryClaim) checkShape(in State, vested uint64, hasOutput bool) error {
	if in.Terminated() {
		// After termination the only move left is one final sweep.
		if in.Remaining() == 0 {
			return errors.Wrap(vesting.ErrInsufficientVested, "nothing left after termination")
		}
		if hasOutput {
			return vesting.ErrBeneficiaryFullClaimHasOutput
		}
		return nil
	}
	if vested >= in.TotalAmount {
		if hasOutput {
			return vesting.ErrBeneficiaryFullClaimHasOutput
		}
		return nil
	}
	if !hasOutput {
		return vesting.ErrBeneficiaryPartialClaimMissingOutput
	}
	return nil
}

func (beneficiaryClaim) consumed(in State, vested uint64) State {
	out := in
	out.BeneficiaryClaimed = satAdd(in.BeneficiaryClaimed, satSub(vested, in.BeneficiaryClaimed))
	return out
}

func (beneficiaryClaim) checkAccounting(in, out State, vested uint64) error {
	available := satSub(vested, in.BeneficiaryClaimed)
	claimed := satSub(out.BeneficiaryClaimed, in.BeneficiaryClaimed)
	if claimed > available {
		return errors.Wrapf(vesting.ErrInsufficientVested,
			"claim %d exceeds available %d", claimed, available)
	}
	return checkConsistency(in, out, claimed, 0)
}

type freshnessUpdate struct{}

func (freshnessUpdate) kind() Operation { return OpRefresh }

func (freshnessUpdate) checkShape(_ State, _ uint64, hasOutput bool) error {
	if !hasOutput {
		return vesting.ErrAnonymousUpdateMissingOutput
	}
	return nil
}

func (freshnessUpdate) consumed(in State, _ uint64) State { return in }

func (freshnessUpdate) checkAccounting(in, out State, _ uint64) error {
	if out.TotalAmount != in.TotalAmount ||
		out.BeneficiaryClaimed != in.BeneficiaryClaimed ||
		out.CreatorClaimed != in.CreatorClaimed {
		return errors.Wrapf(vesting.ErrInvalidStateChange,
			"anonymous update changed accounting: %+v -> %+v", in, out)
	}
	return nil
}

// checkConsistency requires total to be unchanged and both claimed
// counters to move by exactly the given deltas.
func checkConsistency(in, out State, beneficiaryDelta, creatorDelta uint64) error {
	if out.TotalAmount != in.TotalAmount {
		return errors.Wrapf(vesting.ErrTotalAmountChanged,
			"total %d -> %d", in.TotalAmount, out.TotalAmount)
	}
	if want := satAdd(in.BeneficiaryClaimed, beneficiaryDelta); out.BeneficiaryClaimed != want {
		return errors.Wrapf(vesting.ErrInvalidBeneficiaryClaimedDelta,
			"beneficiary claimed %d, want %d", out.BeneficiaryClaimed, want)
	}
	if want := satAdd(in.CreatorClaimed, creatorDelta); out.CreatorClaimed != want {
		return errors.Wrapf(vesting.ErrInvalidCreatorClaimedDelta,
			"creator claimed %d, want %d", out.CreatorClaimed, want)
	}
	return nil
}
