package lock

import "github.com/holiman/uint256"

// Vested computes how much of total has vested at epoch under a
// linear schedule from start to end with a cliff.
//
// Once the creator has terminated (creatorClaimed > 0) everything
// the creator did not take back counts as vested. Before start and
// before the cliff nothing is vested; from end on everything is.
// In between the amount is floor((epoch-start)*total/(end-start)).
// If that product does not fit in 64 bits the whole total is
// reported as vested.
//
// The result is non-decreasing in epoch.
func Vested(epoch, start, end, cliff, total, creatorClaimed uint64) uint64 {
	if creatorClaimed > 0 {
		return satSub(total, creatorClaimed)
	}
	if epoch < start {
		return 0
	}
	if start >= end {
		return total
	}
	if epoch < min(cliff, end) {
		return 0
	}
	if epoch >= end {
		return total
	}

	elapsed := uint256.NewInt(epoch - start)
	product := new(uint256.Int).Mul(elapsed, uint256.NewInt(total))
	if !product.IsUint64() {
		return total
	}
	return product.Uint64() / (end - start)
}
