package lock

import "github.com/blockberries/vesting/types"

// Authorization is the party a transaction acts for.
type Authorization uint8

const (
	AuthNone Authorization = iota
	AuthCreator
	AuthBeneficiary
)

func (a Authorization) String() string {
	switch a {
	case AuthCreator:
		return "creator"
	case AuthBeneficiary:
		return "beneficiary"
	default:
		return "none"
	}
}

// ResolveAuthorization classifies the acting party from the lock
// hashes of every input of the transaction. Spending a cell guarded
// by the creator's (or beneficiary's) lock proves that party
// consented; the lock does no signature checks of its own. The
// creator wins when both are present.
func ResolveAuthorization(inputLocks []types.Hash, cfg Config) Authorization {
	var creator, beneficiary bool
	for _, h := range inputLocks {
		switch h {
		case cfg.CreatorLockHash:
			creator = true
		case cfg.BeneficiaryLockHash:
			beneficiary = true
		}
	}
	switch {
	case creator:
		return AuthCreator
	case beneficiary:
		return AuthBeneficiary
	default:
		return AuthNone
	}
}
