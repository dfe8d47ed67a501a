package server

import (
	"context"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

var logger = log.New("pkg", "server")

// ErrNotSupported is returned by capability-gated calls the
// verifier did not declare.
var ErrNotSupported = errors.New("vesting: capability not supported")

// Server wraps a verifier with lifecycle enforcement and
// capability routing. The consensus engine talks to the verifier
// exclusively through this server.
type Server struct {
	app   vesting.Lifecycle
	guard *LifecycleGuard
	caps  types.Capabilities

	// Optional interfaces (nil if not implemented).
	proposalCtl vesting.ProposalControl
	simulator   vesting.Simulator
}

// New creates a new Server wrapping the given verifier.
func New(app vesting.Lifecycle) *Server {
	s := &Server{
		app:   app,
		guard: NewLifecycleGuard(),
	}
	// Pre-discover optional interfaces (validated after handshake).
	s.proposalCtl, _ = app.(vesting.ProposalControl)
	s.simulator, _ = app.(vesting.Simulator)
	return s
}

// Handshake performs the startup handshake, validates capability
// declarations, and transitions the state machine to Ready.
func (s *Server) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	s.guard.AcquireHandshake()

	resp, err := s.app.Handshake(ctx, req)
	if err != nil {
		s.guard.FailHandshake()
		return resp, err
	}

	if err := discoverCapabilities(s.app, resp.Capabilities); err != nil {
		s.guard.FailHandshake()
		return resp, err
	}

	s.caps = resp.Capabilities
	s.guard.CompleteHandshake(lastHeight(resp))
	logger.Debug("Handshake complete", "genesis", req.LastCommitted == nil, "caps", resp.Capabilities)
	return resp, nil
}

// CheckTx gate-checks a transaction for mempool admission.
// Safe for concurrent use.
func (s *Server) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	s.guard.CheckConcurrent()
	return s.app.CheckTx(ctx, tx, mctx)
}

// ExecuteBlock verifies a finalized block. A HaltError from the
// verifier is passed through untouched.
func (s *Server) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	s.guard.AcquireExecute(block.Height)

	outcome, err := s.app.ExecuteBlock(ctx, block)
	if err != nil {
		s.guard.FailExecute()
		if h, ok := vesting.IsHalt(err); ok {
			logger.Error("Verifier requested halt", "height", h.Height, "reason", h.Reason)
		}
		return outcome, err
	}

	s.guard.CompleteExecute()
	return outcome, nil
}

// Commit promotes the state staged by the last ExecuteBlock.
func (s *Server) Commit(ctx context.Context) (types.CommitResult, error) {
	s.guard.AcquireCommit()
	defer s.guard.CompleteCommit()
	return s.app.Commit(ctx)
}

// Query reads verifier state. Safe for concurrent use.
func (s *Server) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	s.guard.CheckConcurrent()
	return s.app.Query(ctx, req)
}

// Capabilities returns the verifier's declared capabilities.
// Only valid after Handshake completes.
func (s *Server) Capabilities() types.Capabilities {
	return s.caps
}

// State returns the lifecycle state name.
func (s *Server) State() string {
	return s.guard.State()
}

// Height returns the height of the last committed block.
func (s *Server) Height() uint64 {
	return s.guard.Height()
}

// --- Capability-gated optional methods ---

// BuildProposal delegates to ProposalControl if supported.
func (s *Server) BuildProposal(ctx context.Context, pctx types.ProposalContext) (types.BuiltProposal, error) {
	if s.proposalCtl == nil {
		return types.BuiltProposal{}, errors.Wrap(ErrNotSupported, "ProposalControl")
	}
	s.guard.CheckConcurrent()
	return s.proposalCtl.BuildProposal(ctx, pctx)
}

// VerifyProposal delegates to ProposalControl if supported.
// Returns Accept by default if not supported.
func (s *Server) VerifyProposal(ctx context.Context, prop types.ReceivedProposal) (types.ProposalVerdict, error) {
	if s.proposalCtl == nil {
		return types.ProposalVerdict{Accept: true}, nil
	}
	s.guard.CheckConcurrent()
	return s.proposalCtl.VerifyProposal(ctx, prop)
}

// Simulate delegates to Simulator if supported.
// Safe for concurrent use.
func (s *Server) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	if s.simulator == nil {
		return types.TxOutcome{}, errors.Wrap(ErrNotSupported, "Simulator")
	}
	s.guard.CheckConcurrent()
	return s.simulator.Simulate(ctx, tx)
}

// AsProposalControl returns the ProposalControl interface or nil.
func (s *Server) AsProposalControl() vesting.ProposalControl {
	if s.caps.Has(types.CapProposalControl) {
		return s.proposalCtl
	}
	return nil
}

// AsSimulator returns the Simulator interface or nil.
func (s *Server) AsSimulator() vesting.Simulator {
	if s.caps.Has(types.CapSimulation) {
		return s.simulator
	}
	return nil
}

// Close waits for an in-flight ExecuteBlock or Commit and rejects
// every later call. The verifier itself holds no resources.
func (s *Server) Close() error {
	s.guard.Close()
	return nil
}

func lastHeight(resp types.HandshakeResponse) uint64 {
	if resp.LastBlock == nil {
		return 0
	}
	return resp.LastBlock.Height
}

// discoverCapabilities checks which optional interfaces the
// verifier implements against its declared capabilities.
func discoverCapabilities(app vesting.Lifecycle, declared types.Capabilities) error {
	_, hasProposal := app.(vesting.ProposalControl)
	_, hasSimulator := app.(vesting.Simulator)

	if declared.Has(types.CapProposalControl) && !hasProposal {
		return errors.New("vesting: verifier declared CapProposalControl but does not implement ProposalControl")
	}
	if declared.Has(types.CapSimulation) && !hasSimulator {
		return errors.New("vesting: verifier declared CapSimulation but does not implement Simulator")
	}

	// Implemented but undeclared interfaces are ignored.
	if !declared.Has(types.CapProposalControl) && hasProposal {
		logger.Warn("Verifier implements ProposalControl but did not declare it; capability will not be used")
	}
	if !declared.Has(types.CapSimulation) && hasSimulator {
		logger.Warn("Verifier implements Simulator but did not declare it; capability will not be used")
	}
	return nil
}
