package vestinggrpc

import (
	"context"
	"net"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/server"
	"github.com/blockberries/vesting/types"
)

var logger = log.New("pkg", "grpc")

var _ VerifierServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a verifier as a gRPC service. Calls pass
// through a server.Server, so lifecycle order is enforced on this
// side of the wire as well.
type GRPCServer struct {
	srv *server.Server

	mu      sync.Mutex
	gs      *grpc.Server
	stopped bool
}

// NewGRPCServer creates a gRPC server wrapping the given verifier.
func NewGRPCServer(app vesting.Lifecycle) *GRPCServer {
	return &GRPCServer{
		srv: server.New(app),
	}
}

// Register adds the verifier service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterVerifierServiceServer(gs, s)
}

// Serve blocks serving the verifier on lis until Stop is called.
// It returns grpc.ErrServerStopped if Stop came first.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		lis.Close()
		return grpc.ErrServerStopped
	}
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	s.gs = gs
	s.mu.Unlock()

	logger.Info("Serving verifier", "addr", lis.Addr())
	return gs.Serve(lis)
}

// Stop gracefully stops the server started with Serve, then closes
// the lifecycle server.
func (s *GRPCServer) Stop() {
	s.mu.Lock()
	s.stopped = true
	gs := s.gs
	s.mu.Unlock()
	if gs != nil {
		gs.GracefulStop()
	}
	_ = s.srv.Close()
}

// Server returns the underlying lifecycle server.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

// toStatus maps verifier errors onto gRPC status codes the client
// knows how to turn back into Go errors.
func toStatus(err error) error {
	if _, ok := vesting.IsHalt(err); ok {
		return status.Error(codes.Aborted, err.Error())
	}
	if errors.Is(err, server.ErrNotSupported) {
		return status.Error(codes.Unimplemented, err.Error())
	}
	return err
}

func (s *GRPCServer) Handshake(ctx context.Context, req *types.HandshakeRequest) (*types.HandshakeResponse, error) {
	resp, err := s.srv.Handshake(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *GRPCServer) CheckTx(ctx context.Context, req *CheckTxRequest) (*types.GateVerdict, error) {
	verdict, err := s.srv.CheckTx(ctx, req.Tx, req.Context)
	if err != nil {
		return nil, toStatus(err)
	}
	return &verdict, nil
}

func (s *GRPCServer) ExecuteBlock(ctx context.Context, block *types.FinalizedBlock) (*types.BlockOutcome, error) {
	outcome, err := s.srv.ExecuteBlock(ctx, *block)
	if err != nil {
		return nil, toStatus(err)
	}
	return &outcome, nil
}

func (s *GRPCServer) Commit(ctx context.Context, _ *CommitRequest) (*types.CommitResult, error) {
	result, err := s.srv.Commit(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &result, nil
}

func (s *GRPCServer) Query(ctx context.Context, req *types.StateQuery) (*types.StateQueryResult, error) {
	result, err := s.srv.Query(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &result, nil
}

func (s *GRPCServer) BuildProposal(ctx context.Context, pctx *types.ProposalContext) (*types.BuiltProposal, error) {
	proposal, err := s.srv.BuildProposal(ctx, *pctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &proposal, nil
}

func (s *GRPCServer) VerifyProposal(ctx context.Context, prop *types.ReceivedProposal) (*types.ProposalVerdict, error) {
	verdict, err := s.srv.VerifyProposal(ctx, *prop)
	if err != nil {
		return nil, toStatus(err)
	}
	return &verdict, nil
}

func (s *GRPCServer) Simulate(ctx context.Context, req *SimulateRequest) (*types.TxOutcome, error) {
	outcome, err := s.srv.Simulate(ctx, req.Tx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &outcome, nil
}
