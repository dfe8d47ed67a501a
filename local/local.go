// Package local connects an engine to a verifier compiled into the
// same binary. Calls go straight through a server.Server, so the
// lifecycle order and capability gating still apply, without any
// serialization.
package local

import (
	"context"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/app"
	"github.com/blockberries/vesting/server"
	"github.com/blockberries/vesting/types"
)

var _ vesting.Connection = (*Connection)(nil)

// Connection is an in-process vesting.Connection.
type Connection struct {
	srv *server.Server
}

// NewConnection wraps the given verifier.
func NewConnection(verifier vesting.Lifecycle) *Connection {
	return &Connection{srv: server.New(verifier)}
}

// NewVerifier builds the standard vesting verifier from opts and
// wraps it.
func NewVerifier(opts app.Options) *Connection {
	return NewConnection(app.New(opts))
}

func (c *Connection) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	return c.srv.Handshake(ctx, req)
}

func (c *Connection) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	return c.srv.CheckTx(ctx, tx, mctx)
}

func (c *Connection) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	return c.srv.ExecuteBlock(ctx, block)
}

func (c *Connection) Commit(ctx context.Context) (types.CommitResult, error) {
	return c.srv.Commit(ctx)
}

func (c *Connection) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	return c.srv.Query(ctx, req)
}

func (c *Connection) Capabilities() types.Capabilities { return c.srv.Capabilities() }

func (c *Connection) AsProposalControl() vesting.ProposalControl { return c.srv.AsProposalControl() }

func (c *Connection) AsSimulator() vesting.Simulator { return c.srv.AsSimulator() }

func (c *Connection) Close() error { return c.srv.Close() }

// Server returns the wrapped lifecycle server.
func (c *Connection) Server() *server.Server {
	return c.srv
}
