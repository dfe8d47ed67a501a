// Package vestingtest provides test utilities for the vesting
// verifier: a builder for resolved vesting transactions, a
// configurable mock verifier, a lifecycle harness and a compliance
// suite any verifier implementation can be run against.
package vestingtest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

// Compile-time check that MockApp satisfies all interfaces.
var (
	_ vesting.Lifecycle       = (*MockApp)(nil)
	_ vesting.ProposalControl = (*MockApp)(nil)
	_ vesting.Simulator       = (*MockApp)(nil)
)

// MockApp is a configurable mock verifier for engine and transport
// tests. Unconfigured methods accept everything.
//
// MockApp implements every optional interface so it can be used to
// test capability discovery; DeclaredCapabilities controls which
// ones it admits to at handshake.
type MockApp struct {
	// DeclaredCapabilities controls the bitfield returned at handshake.
	DeclaredCapabilities types.Capabilities

	// Configurable handlers. If nil, defaults are used.
	HandshakeFn      func(context.Context, types.HandshakeRequest) (types.HandshakeResponse, error)
	CheckTxFn        func(context.Context, types.Tx, types.MempoolContext) (types.GateVerdict, error)
	ExecuteBlockFn   func(context.Context, types.FinalizedBlock) (types.BlockOutcome, error)
	CommitFn         func(context.Context) (types.CommitResult, error)
	QueryFn          func(context.Context, types.StateQuery) (types.StateQueryResult, error)
	BuildProposalFn  func(context.Context, types.ProposalContext) (types.BuiltProposal, error)
	VerifyProposalFn func(context.Context, types.ReceivedProposal) (types.ProposalVerdict, error)
	SimulateFn       func(context.Context, types.Tx) (types.TxOutcome, error)

	// Call counters (atomic for concurrent access).
	HandshakeCalls    atomic.Int64
	CheckTxCalls      atomic.Int64
	ExecuteBlockCalls atomic.Int64
	CommitCalls       atomic.Int64
	QueryCalls        atomic.Int64
	SimulateCalls     atomic.Int64
}

func (m *MockApp) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	m.HandshakeCalls.Add(1)
	if m.HandshakeFn != nil {
		return m.HandshakeFn(ctx, req)
	}
	return types.HandshakeResponse{Capabilities: m.DeclaredCapabilities}, nil
}

func (m *MockApp) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	m.CheckTxCalls.Add(1)
	if m.CheckTxFn != nil {
		return m.CheckTxFn(ctx, tx, mctx)
	}
	return types.GateVerdict{}, nil
}

func (m *MockApp) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	m.ExecuteBlockCalls.Add(1)
	if m.ExecuteBlockFn != nil {
		return m.ExecuteBlockFn(ctx, block)
	}
	outcomes := make([]types.TxOutcome, len(block.Txs))
	for i := range block.Txs {
		outcomes[i] = types.TxOutcome{Index: uint32(i)}
	}
	return types.BlockOutcome{
		TxOutcomes: outcomes,
		AppHash:    types.AppHash{0x01},
	}, nil
}

func (m *MockApp) Commit(ctx context.Context) (types.CommitResult, error) {
	m.CommitCalls.Add(1)
	if m.CommitFn != nil {
		return m.CommitFn(ctx)
	}
	return types.CommitResult{}, nil
}

func (m *MockApp) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	m.QueryCalls.Add(1)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, req)
	}
	return types.StateQueryResult{}, nil
}

func (m *MockApp) BuildProposal(ctx context.Context, pctx types.ProposalContext) (types.BuiltProposal, error) {
	if m.BuildProposalFn != nil {
		return m.BuildProposalFn(ctx, pctx)
	}
	return types.BuiltProposal{Txs: pctx.MempoolTxs}, nil
}

func (m *MockApp) VerifyProposal(ctx context.Context, prop types.ReceivedProposal) (types.ProposalVerdict, error) {
	if m.VerifyProposalFn != nil {
		return m.VerifyProposalFn(ctx, prop)
	}
	return types.ProposalVerdict{Accept: true}, nil
}

func (m *MockApp) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	m.SimulateCalls.Add(1)
	if m.SimulateFn != nil {
		return m.SimulateFn(ctx, tx)
	}
	return types.TxOutcome{}, nil
}
