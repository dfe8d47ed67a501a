package ledger

import (
	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

// EncodeTransaction serializes tx into the form the engine carries.
func EncodeTransaction(tx *types.Transaction) (types.Tx, error) {
	data, err := cramberry.Marshal(tx)
	if err != nil {
		return nil, errors.Wrap(err, "encode transaction")
	}
	return types.Tx(data), nil
}

// DecodeTransaction parses an engine transaction. Bytes that do not
// decode are ErrInvalidTransaction.
func DecodeTransaction(raw types.Tx) (*types.Transaction, error) {
	var tx types.Transaction
	if err := cramberry.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrapf(vesting.ErrInvalidTransaction, "decode: %v", err)
	}
	return &tx, nil
}
