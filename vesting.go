// Package vesting defines the boundaries of the vesting lock
// verifier: the read-only [Ledger] a lock consults while it runs,
// the numeric result taxonomy ([Code]), and the lifecycle a
// consensus engine drives to have whole blocks verified.
//
// The core [Lifecycle] interface is required. All other host
// interfaces are optional capabilities discovered via Go type
// assertion at handshake time.
package vesting

import (
	"context"

	"github.com/blockberries/vesting/types"
)

// Source selects which list of a transaction a Ledger lookup
// addresses.
type Source uint8

const (
	SourceInput Source = iota + 1
	SourceOutput
	SourceHeaderDep
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceOutput:
		return "output"
	case SourceHeaderDep:
		return "header_dep"
	default:
		return "unknown"
	}
}

// Ledger is the read-only view of one transaction that a lock
// consults while it runs. Indexed lookups are fallible at the end
// of their list: they return an error matching ErrIndexOutOfBound
// once index reaches the list length, and callers iterate until
// they see it.
type Ledger interface {
	// Script returns the lock script currently being verified.
	Script() (types.Script, error)
	// LockHash returns the lock script hash of the cell at index.
	LockHash(index int, source Source) (types.Hash, error)
	// CellData returns the data of the cell at index.
	CellData(index int, source Source) ([]byte, error)
	// Header returns the header dependency at index.
	Header(index int) (types.Header, error)
}

// Lifecycle is the core interface every verifier host implements.
//
// The engine guarantees the following call order:
//  1. Handshake is called exactly once, before anything else.
//  2. ExecuteBlock(h) is called exactly once per committed height h.
//  3. Commit is called exactly once after each ExecuteBlock.
//  4. CheckTx, Query may be called concurrently at any time after Handshake.
type Lifecycle interface {
	// Handshake is called once on every startup (cold start or restart).
	//
	// If LastCommitted is nil, this is a fresh genesis and Genesis
	// carries the verifier parameters.
	Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error)

	// CheckTx verifies every vesting lock group of a transaction
	// before it enters the mempool.
	//
	// This method MUST be safe for concurrent use.
	CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error)

	// ExecuteBlock verifies every transaction of a finalized block
	// and reports one outcome per transaction, in block order.
	//
	// The AppHash in the returned BlockOutcome must be deterministic.
	ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error)

	// Commit makes the counters staged by the last ExecuteBlock
	// visible to queries.
	Commit(ctx context.Context) (types.CommitResult, error)

	// Query reads verifier state and runs stateless helpers such as
	// the vesting calculator.
	//
	// This method MUST be safe for concurrent use.
	Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error)
}

// ProposalControl lets the verifier keep transactions that would
// fail verification out of blocks.
//
// Declared via: types.CapProposalControl in HandshakeResponse.Capabilities
type ProposalControl interface {
	// BuildProposal is called when this validator is the proposer.
	// It returns the mempool transactions that still verify, in
	// order, within the size limit.
	BuildProposal(ctx context.Context, pctx types.ProposalContext) (types.BuiltProposal, error)

	// VerifyProposal rejects a proposal that contains a transaction
	// failing verification.
	//
	// This method MUST be deterministic.
	VerifyProposal(ctx context.Context, proposal types.ReceivedProposal) (types.ProposalVerdict, error)
}

// Simulator provides a dry-run path that reports, per vesting lock
// group, what a transaction would do.
//
// Declared via: types.CapSimulation in HandshakeResponse.Capabilities
type Simulator interface {
	// Simulate verifies a transaction without touching state.
	//
	// This method MUST be safe for concurrent use.
	Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error)
}

// Application is a convenience interface that embeds every host
// interface.
type Application interface {
	Lifecycle
	ProposalControl
	Simulator
}

// Connection represents a transport-agnostic connection to a
// verifier. Both gRPC clients and in-process adapters implement this.
type Connection interface {
	Lifecycle

	// Capabilities returns the capabilities discovered at handshake.
	// Must only be called after Handshake completes.
	Capabilities() types.Capabilities

	// AsProposalControl returns the ProposalControl interface if
	// available, or nil if the verifier does not support it.
	AsProposalControl() ProposalControl

	// AsSimulator returns the Simulator interface if available.
	AsSimulator() Simulator

	// Close terminates the connection.
	Close() error
}
