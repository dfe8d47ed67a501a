// Package ledger gives the vesting lock its view of a transaction.
//
// The engine carries transactions as opaque bytes. This package
// decodes them, checks their structural limits, splits their inputs
// into lock groups and serves each group's lock an in-memory
// vesting.Ledger.
package ledger

import (
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

var _ vesting.Ledger = (*Memory)(nil)

// Memory is a vesting.Ledger over a resolved transaction and the
// lock script being verified. Lock hashes are computed once, when
// the Memory is created. A Memory is read-only and safe for
// concurrent use.
type Memory struct {
	tx      *types.Transaction
	script  types.Script
	inputs  []types.Hash
	outputs []types.Hash
}

// NewMemory returns a ledger that runs script against tx.
func NewMemory(tx *types.Transaction, script types.Script) *Memory {
	m := &Memory{
		tx:      tx,
		script:  script,
		inputs:  make([]types.Hash, len(tx.Inputs)),
		outputs: make([]types.Hash, len(tx.Outputs)),
	}
	for i, c := range tx.Inputs {
		m.inputs[i] = c.LockHash()
	}
	for i, c := range tx.Outputs {
		m.outputs[i] = c.LockHash()
	}
	return m
}

// Script implements vesting.Ledger.
func (m *Memory) Script() (types.Script, error) {
	return m.script, nil
}

// LockHash implements vesting.Ledger.
func (m *Memory) LockHash(index int, source vesting.Source) (types.Hash, error) {
	var hashes []types.Hash
	switch source {
	case vesting.SourceInput:
		hashes = m.inputs
	case vesting.SourceOutput:
		hashes = m.outputs
	default:
		return types.Hash{}, errors.Wrapf(vesting.ErrItemMissing, "%s cells have no lock", source)
	}
	if index < 0 || index >= len(hashes) {
		return types.Hash{}, errors.Wrapf(vesting.ErrIndexOutOfBound, "%s %d", source, index)
	}
	return hashes[index], nil
}

// CellData implements vesting.Ledger.
func (m *Memory) CellData(index int, source vesting.Source) ([]byte, error) {
	var cells []types.Cell
	switch source {
	case vesting.SourceInput:
		cells = m.tx.Inputs
	case vesting.SourceOutput:
		cells = m.tx.Outputs
	default:
		return nil, errors.Wrapf(vesting.ErrItemMissing, "%s has no cell data", source)
	}
	if index < 0 || index >= len(cells) {
		return nil, errors.Wrapf(vesting.ErrIndexOutOfBound, "%s %d", source, index)
	}
	return cells[index].Data, nil
}

// Header implements vesting.Ledger.
func (m *Memory) Header(index int) (types.Header, error) {
	if index < 0 || index >= len(m.tx.HeaderDeps) {
		return types.Header{}, errors.Wrapf(vesting.ErrIndexOutOfBound, "header_dep %d", index)
	}
	return m.tx.HeaderDeps[index], nil
}
