package vestinggrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/vesting/types"
)

const serviceName = "blockberries.vesting.v1.VerifierService"

// VerifierServiceServer is the server-side interface of the
// verifier gRPC service.
type VerifierServiceServer interface {
	Handshake(context.Context, *types.HandshakeRequest) (*types.HandshakeResponse, error)
	CheckTx(context.Context, *CheckTxRequest) (*types.GateVerdict, error)
	ExecuteBlock(context.Context, *types.FinalizedBlock) (*types.BlockOutcome, error)
	Commit(context.Context, *CommitRequest) (*types.CommitResult, error)
	Query(context.Context, *types.StateQuery) (*types.StateQueryResult, error)
	BuildProposal(context.Context, *types.ProposalContext) (*types.BuiltProposal, error)
	VerifyProposal(context.Context, *types.ReceivedProposal) (*types.ProposalVerdict, error)
	Simulate(context.Context, *SimulateRequest) (*types.TxOutcome, error)
}

// RegisterVerifierServiceServer registers srv on a gRPC server.
func RegisterVerifierServiceServer(s *grpc.Server, srv VerifierServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unary adapts a typed method into a grpc.MethodDesc handler.
func unary[Req any, Resp any](call func(VerifierServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		return call(srv.(VerifierServiceServer), ctx, req)
	}
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the hand-written service descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*VerifierServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handshake", Handler: unary(VerifierServiceServer.Handshake)},
		{MethodName: "CheckTx", Handler: unary(VerifierServiceServer.CheckTx)},
		{MethodName: "ExecuteBlock", Handler: unary(VerifierServiceServer.ExecuteBlock)},
		{MethodName: "Commit", Handler: unary(VerifierServiceServer.Commit)},
		{MethodName: "Query", Handler: unary(VerifierServiceServer.Query)},
		{MethodName: "BuildProposal", Handler: unary(VerifierServiceServer.BuildProposal)},
		{MethodName: "VerifyProposal", Handler: unary(VerifierServiceServer.VerifyProposal)},
		{MethodName: "Simulate", Handler: unary(VerifierServiceServer.Simulate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "blockberries/vesting/v1/verifier.cram",
}
