package ledger

import (
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

// Validate decodes raw and checks it against the structural limits
// in params before any lock runs. Limit violations, and
// transactions without inputs, are ErrInvalidTransactionStructure.
func Validate(raw types.Tx, params types.VerifierParams) (*types.Transaction, error) {
	if params.MaxTxBytes > 0 && uint64(len(raw)) > params.MaxTxBytes {
		return nil, errors.Wrapf(vesting.ErrInvalidTransactionStructure,
			"transaction is %d bytes, limit %d", len(raw), params.MaxTxBytes)
	}
	tx, err := DecodeTransaction(raw)
	if err != nil {
		return nil, err
	}
	if len(tx.Inputs) == 0 {
		return nil, errors.Wrap(vesting.ErrInvalidTransactionStructure, "transaction has no inputs")
	}
	if params.MaxCells > 0 && tx.CellCount() > int(params.MaxCells) {
		return nil, errors.Wrapf(vesting.ErrInvalidTransactionStructure,
			"transaction has %d cells, limit %d", tx.CellCount(), params.MaxCells)
	}
	return tx, nil
}
