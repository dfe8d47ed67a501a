package ledger

import "github.com/blockberries/vesting/types"

// Groups returns the distinct lock scripts among tx's inputs whose
// code hash is codeHash, in the order they first appear. Each group
// runs its lock once, however many inputs it guards.
func Groups(tx *types.Transaction, codeHash types.Hash) []types.Script {
	var (
		groups []types.Script
		seen   = make(map[types.Hash]struct{})
	)
	for _, in := range tx.Inputs {
		lock := in.Output.Lock
		if lock.CodeHash != codeHash {
			continue
		}
		h := lock.Hash()
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		groups = append(groups, lock)
	}
	return groups
}
