package types

// ProposalContext is provided to the verifier when its node is
// the block proposer.
type ProposalContext struct {
	Height uint64    `cramberry:"1"`
	Time   Timestamp `cramberry:"2"`
	// Transactions from the mempool, pre-sorted by priority.
	MempoolTxs []Tx `cramberry:"3"`
	// Maximum total bytes for the block's tx payload.
	MaxTxBytes uint64 `cramberry:"4"`
}

// BuiltProposal is the verifier's assembled block contents.
type BuiltProposal struct {
	Txs []Tx `cramberry:"1"`
}

// ReceivedProposal is a proposal received from another
// validator for verification.
type ReceivedProposal struct {
	Height uint64    `cramberry:"1"`
	Time   Timestamp `cramberry:"2"`
	Txs    []Tx      `cramberry:"3"`
}

// ProposalVerdict is the verifier's decision on a received
// proposal.
type ProposalVerdict struct {
	// Accept is true if every transaction in the proposal verifies.
	Accept bool `cramberry:"1"`
	// Reason for rejection (only set when Accept is false).
	RejectReason string `cramberry:"2"`
}
