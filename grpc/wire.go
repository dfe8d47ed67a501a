package vestinggrpc

import "github.com/blockberries/vesting/types"

// Request wrappers for RPCs whose Go signatures take more (or
// fewer) than one struct.

// CheckTxRequest carries the parameters of Lifecycle.CheckTx.
type CheckTxRequest struct {
	Tx      types.Tx             `cramberry:"1"`
	Context types.MempoolContext `cramberry:"2"`
}

// CommitRequest is the empty request of Lifecycle.Commit.
type CommitRequest struct{}

// SimulateRequest carries the parameter of Simulator.Simulate.
type SimulateRequest struct {
	Tx types.Tx `cramberry:"1"`
}
