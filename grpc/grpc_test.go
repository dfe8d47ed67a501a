package vestinggrpc_test

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/app"
	vestinggrpc "github.com/blockberries/vesting/grpc"
	vestingtest "github.com/blockberries/vesting/testing"
	"github.com/blockberries/vesting/types"
)

// startServer serves gs on a random local port until the test ends.
func startServer(t *testing.T, gs *vestinggrpc.GRPCServer) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := grpc.NewServer()
	gs.Register(s)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.GracefulStop)

	return lis.Addr().String()
}

func dial(t *testing.T, addr string) *vestinggrpc.Client {
	t.Helper()
	client, err := vestinggrpc.Dial(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func connect(t *testing.T, verifier vesting.Lifecycle) *vestinggrpc.Client {
	t.Helper()
	client := dial(t, startServer(t, vestinggrpc.NewGRPCServer(verifier)))
	genesis := vestingtest.DefaultGenesis()
	if _, err := client.Handshake(context.Background(), types.HandshakeRequest{Genesis: &genesis}); err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	return client
}

func TestGRPC_Lifecycle(t *testing.T) {
	client := connect(t, app.New(app.Options{Workers: 2}))
	ctx := context.Background()

	txs := vestingtest.SampleTxs(t)
	outcome, err := client.ExecuteBlock(ctx, vestingtest.MakeBlock(1, txs...))
	if err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if outcome.AppHash == (types.AppHash{}) {
		t.Fatal("expected non-zero AppHash")
	}
	if len(outcome.TxOutcomes) != len(txs) {
		t.Fatalf("expected %d outcomes, got %d", len(txs), len(outcome.TxOutcomes))
	}
	want := []vesting.Code{vesting.CodeOK, vesting.CodeOK, vesting.CodeStaleHeader}
	for i, o := range outcome.TxOutcomes {
		if o.Index != uint32(i) {
			t.Errorf("outcome %d has index %d", i, o.Index)
		}
		if vesting.Code(o.Code) != want[i] {
			t.Errorf("tx %d: code %s, want %s", i, vesting.Code(o.Code), want[i])
		}
	}

	if _, err := client.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	qr, err := client.Query(ctx, types.StateQuery{Path: app.PathStats})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if qr.Height != 1 {
		t.Fatalf("expected query height 1, got %d", qr.Height)
	}
}

func TestGRPC_CheckTx(t *testing.T) {
	client := connect(t, app.New(app.Options{}))
	ctx := context.Background()

	txs := vestingtest.SampleTxs(t)
	v, err := client.CheckTx(ctx, txs[0], types.MempoolFirstSeen)
	if err != nil {
		t.Fatalf("CheckTx: %v", err)
	}
	if !v.Accepted() {
		t.Fatalf("expected claim accepted, got %s", vesting.Code(v.Code))
	}
	if v.Sender == "" {
		t.Error("expected sender to carry the vesting lock hash")
	}

	v, err = client.CheckTx(ctx, txs[2], types.MempoolRevalidation)
	if err != nil {
		t.Fatalf("CheckTx: %v", err)
	}
	if vesting.Code(v.Code) != vesting.CodeStaleHeader {
		t.Fatalf("expected %s, got %s", vesting.CodeStaleHeader, vesting.Code(v.Code))
	}
}

func TestGRPC_Capabilities(t *testing.T) {
	client := connect(t, app.New(app.Options{}))
	ctx := context.Background()
	txs := vestingtest.SampleTxs(t)

	if !client.Capabilities().Has(types.CapProposalControl | types.CapSimulation) {
		t.Fatalf("unexpected capabilities %s", client.Capabilities())
	}

	sim := client.AsSimulator()
	if sim == nil {
		t.Fatal("expected Simulator")
	}
	out, err := sim.Simulate(ctx, txs[0])
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !out.OK() || len(out.Data) == 0 {
		t.Fatalf("unexpected simulate outcome %+v", out)
	}

	pc := client.AsProposalControl()
	if pc == nil {
		t.Fatal("expected ProposalControl")
	}
	built, err := pc.BuildProposal(ctx, types.ProposalContext{Height: 1, MempoolTxs: txs, MaxTxBytes: 1 << 20})
	if err != nil {
		t.Fatalf("BuildProposal: %v", err)
	}
	if len(built.Txs) != 2 {
		t.Fatalf("expected stale tx dropped, got %d txs", len(built.Txs))
	}
	verdict, err := pc.VerifyProposal(ctx, types.ReceivedProposal{Height: 1, Txs: txs})
	if err != nil {
		t.Fatalf("VerifyProposal: %v", err)
	}
	if verdict.Accept {
		t.Fatal("expected proposal with stale tx rejected")
	}
}

func TestGRPC_UndeclaredCapabilities(t *testing.T) {
	client := connect(t, &vestingtest.MockApp{})

	if client.AsSimulator() != nil {
		t.Error("expected nil Simulator")
	}
	if client.AsProposalControl() != nil {
		t.Error("expected nil ProposalControl")
	}
}

func TestGRPC_HaltCrossesTheWire(t *testing.T) {
	client := connect(t, app.New(app.Options{}))

	_, err := client.ExecuteBlock(context.Background(), vestingtest.MakeEmptyBlock(7))
	h, ok := vesting.IsHalt(err)
	if !ok {
		t.Fatalf("expected halt error, got %v", err)
	}
	if h.Height != 7 {
		t.Fatalf("expected halt at height 7, got %d", h.Height)
	}

	// The guard is back in Ready, so the right height still goes through.
	if _, err := client.ExecuteBlock(context.Background(), vestingtest.MakeEmptyBlock(1)); err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
}
