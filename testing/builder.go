package vestingtest

import (
	"encoding/binary"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/blockberries/vesting/ledger"
	"github.com/blockberries/vesting/lock"
	"github.com/blockberries/vesting/types"
)

// VestingCodeHash is the code hash test transactions give the
// vesting lock. DefaultGenesis configures the verifier with it.
var VestingCodeHash = types.Hash(blake2b.Sum256([]byte("vesting-lock")))

// ProxyCodeHash is the code hash of the stand-in locks that
// represent creators and beneficiaries.
var ProxyCodeHash = types.Hash(blake2b.Sum256([]byte("always-success")))

// ProxyLock returns a non-vesting lock named name. Spending a cell
// under it proves the consent of whoever the vesting configuration
// identifies by its hash.
func ProxyLock(name string) types.Script {
	return types.Script{
		CodeHash: ProxyCodeHash,
		HashType: types.HashTypeData,
		Args:     []byte(name),
	}
}

// ConfigArgs encodes a vesting schedule into lock arguments. The
// schedule is not validated.
func ConfigArgs(creator, beneficiary types.Hash, start, end, cliff uint64) []byte {
	return lock.Config{
		CreatorLockHash:     creator,
		BeneficiaryLockHash: beneficiary,
		StartEpoch:          start,
		EndEpoch:            end,
		CliffEpoch:          cliff,
	}.Bytes()
}

// StateData encodes vesting cell data.
func StateData(total, beneficiaryClaimed, creatorClaimed, highestBlockSeen uint64) []byte {
	return lock.State{
		TotalAmount:        total,
		BeneficiaryClaimed: beneficiaryClaimed,
		CreatorClaimed:     creatorClaimed,
		HighestBlockSeen:   highestBlockSeen,
	}.Bytes()
}

// TxBuilder assembles resolved vesting transactions. Inputs and
// outputs added with Input and Output are guarded by the builder's
// current vesting lock.
type TxBuilder struct {
	lock types.Script
	tx   types.Transaction
}

// NewTxBuilder returns a builder whose vesting lock carries args.
func NewTxBuilder(args []byte) *TxBuilder {
	b := &TxBuilder{}
	return b.Lock(args)
}

// Lock switches the vesting lock used by subsequent cells.
func (b *TxBuilder) Lock(args []byte) *TxBuilder {
	b.lock = types.Script{
		CodeHash: VestingCodeHash,
		HashType: types.HashTypeType,
		Args:     append([]byte(nil), args...),
	}
	return b
}

// Input adds an input under the vesting lock.
func (b *TxBuilder) Input(data []byte) *TxBuilder {
	b.tx.Inputs = append(b.tx.Inputs, b.cell(b.lock, data))
	return b
}

// AuthInput adds an empty input under script, typically a ProxyLock.
func (b *TxBuilder) AuthInput(script types.Script) *TxBuilder {
	b.tx.Inputs = append(b.tx.Inputs, b.cell(script, nil))
	return b
}

// Output adds an output under the vesting lock.
func (b *TxBuilder) Output(data []byte) *TxBuilder {
	b.tx.Outputs = append(b.tx.Outputs, b.cell(b.lock, data))
	return b
}

// PlainOutput adds an output under script.
func (b *TxBuilder) PlainOutput(script types.Script, data []byte) *TxBuilder {
	b.tx.Outputs = append(b.tx.Outputs, b.cell(script, data))
	return b
}

// Header adds a header dependency.
func (b *TxBuilder) Header(number, epoch uint64) *TxBuilder {
	var h types.Hash
	binary.BigEndian.PutUint64(h[24:], number)
	b.tx.HeaderDeps = append(b.tx.HeaderDeps, types.Header{Number: number, Epoch: epoch, Hash: h})
	return b
}

// Script returns the current vesting lock.
func (b *TxBuilder) Script() types.Script {
	return b.lock
}

// Build returns a copy of the transaction assembled so far.
func (b *TxBuilder) Build() *types.Transaction {
	tx := types.Transaction{
		Inputs:     append([]types.Cell(nil), b.tx.Inputs...),
		Outputs:    append([]types.Cell(nil), b.tx.Outputs...),
		HeaderDeps: append([]types.Header(nil), b.tx.HeaderDeps...),
		Witnesses:  append([][]byte(nil), b.tx.Witnesses...),
	}
	return &tx
}

// Ledger returns the ledger the current vesting lock sees.
func (b *TxBuilder) Ledger() *ledger.Memory {
	return ledger.NewMemory(b.Build(), b.lock)
}

// Tx encodes the transaction for the engine.
func (b *TxBuilder) Tx(t testing.TB) types.Tx {
	t.Helper()
	tx, err := ledger.EncodeTransaction(b.Build())
	if err != nil {
		t.Fatalf("EncodeTransaction failed: %v", err)
	}
	return tx
}

func (b *TxBuilder) cell(script types.Script, data []byte) types.Cell {
	return types.Cell{
		Output: types.CellOutput{Capacity: 100_000_000_000, Lock: script},
		Data:   append([]byte(nil), data...),
	}
}
