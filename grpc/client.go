package vestinggrpc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/server"
	"github.com/blockberries/vesting/types"
)

var _ vesting.Connection = (*Client)(nil)

// Client implements vesting.Connection for a verifier reached over
// gRPC. The lifecycle order is checked locally before each call
// goes out.
type Client struct {
	cc    *grpc.ClientConn
	caps  types.Capabilities
	guard *server.LifecycleGuard
}

// Dial connects to a remote verifier.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "vesting client: dial %s", addr)
	}
	return &Client{
		cc:    cc,
		guard: server.NewLifecycleGuard(),
	}, nil
}

// Close closes the connection. Calls made after Close panic.
func (c *Client) Close() error {
	c.guard.Close()
	return c.cc.Close()
}

func (c *Client) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	c.guard.AcquireHandshake()

	resp := new(types.HandshakeResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Handshake"), &req, resp); err != nil {
		c.guard.FailHandshake()
		return types.HandshakeResponse{}, err
	}

	c.caps = resp.Capabilities
	var last uint64
	if resp.LastBlock != nil {
		last = resp.LastBlock.Height
	}
	c.guard.CompleteHandshake(last)
	return *resp, nil
}

func (c *Client) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	c.guard.CheckConcurrent()

	req := &CheckTxRequest{Tx: tx, Context: mctx}
	resp := new(types.GateVerdict)
	if err := c.cc.Invoke(ctx, fullMethod("CheckTx"), req, resp); err != nil {
		return types.GateVerdict{}, err
	}
	return *resp, nil
}

// ExecuteBlock returns a *vesting.HaltError when the remote verifier
// asked the engine to halt.
func (c *Client) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	c.guard.AcquireExecute(block.Height)

	resp := new(types.BlockOutcome)
	if err := c.cc.Invoke(ctx, fullMethod("ExecuteBlock"), &block, resp); err != nil {
		c.guard.FailExecute()
		if status.Code(err) == codes.Aborted {
			return types.BlockOutcome{}, vesting.NewHaltError(block.Height, status.Convert(err).Message())
		}
		return types.BlockOutcome{}, err
	}

	c.guard.CompleteExecute()
	return *resp, nil
}

func (c *Client) Commit(ctx context.Context) (types.CommitResult, error) {
	c.guard.AcquireCommit()
	defer c.guard.CompleteCommit()

	resp := new(types.CommitResult)
	if err := c.cc.Invoke(ctx, fullMethod("Commit"), &CommitRequest{}, resp); err != nil {
		return types.CommitResult{}, err
	}
	return *resp, nil
}

func (c *Client) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	c.guard.CheckConcurrent()

	resp := new(types.StateQueryResult)
	if err := c.cc.Invoke(ctx, fullMethod("Query"), &req, resp); err != nil {
		return types.StateQueryResult{}, err
	}
	return *resp, nil
}

func (c *Client) Capabilities() types.Capabilities { return c.caps }

func (c *Client) AsProposalControl() vesting.ProposalControl {
	if c.caps.Has(types.CapProposalControl) {
		return &clientProposalControl{c}
	}
	return nil
}

func (c *Client) AsSimulator() vesting.Simulator {
	if c.caps.Has(types.CapSimulation) {
		return &clientSimulator{c}
	}
	return nil
}

type clientProposalControl struct{ c *Client }

func (w *clientProposalControl) BuildProposal(ctx context.Context, pctx types.ProposalContext) (types.BuiltProposal, error) {
	resp := new(types.BuiltProposal)
	if err := w.c.cc.Invoke(ctx, fullMethod("BuildProposal"), &pctx, resp); err != nil {
		return types.BuiltProposal{}, notSupported(err)
	}
	return *resp, nil
}

func (w *clientProposalControl) VerifyProposal(ctx context.Context, prop types.ReceivedProposal) (types.ProposalVerdict, error) {
	resp := new(types.ProposalVerdict)
	if err := w.c.cc.Invoke(ctx, fullMethod("VerifyProposal"), &prop, resp); err != nil {
		return types.ProposalVerdict{}, notSupported(err)
	}
	return *resp, nil
}

type clientSimulator struct{ c *Client }

func (w *clientSimulator) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	resp := new(types.TxOutcome)
	if err := w.c.cc.Invoke(ctx, fullMethod("Simulate"), &SimulateRequest{Tx: tx}, resp); err != nil {
		return types.TxOutcome{}, notSupported(err)
	}
	return *resp, nil
}

func notSupported(err error) error {
	if status.Code(err) == codes.Unimplemented {
		return errors.Wrap(server.ErrNotSupported, status.Convert(err).Message())
	}
	return err
}
