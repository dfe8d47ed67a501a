package types

// TxOutcome is the result of verifying a single transaction.
type TxOutcome struct {
	// Position of this tx in the block (0-indexed).
	Index uint32 `cramberry:"1"`
	// Verification result code. 0 = accepted, otherwise the
	// numeric code of the first failing lock group.
	Code uint32 `cramberry:"2"`
	// Human-readable result info (non-deterministic, for debugging).
	Info string `cramberry:"3"`
	// Application-defined data returned from verification (deterministic).
	Data []byte `cramberry:"4"`
	// Events emitted for this transaction.
	Events []Event `cramberry:"5"`
}

// OK returns true if the transaction was accepted.
func (t TxOutcome) OK() bool { return t.Code == 0 }

// BlockOutcome is the output of verifying a finalized block.
type BlockOutcome struct {
	// Per-transaction results, in block order.
	TxOutcomes []TxOutcome `cramberry:"1"`
	// Block-level events.
	BlockEvents []Event `cramberry:"2"`
	// New verifier state root after this block.
	AppHash AppHash `cramberry:"3"`
}

// FinalizedBlock is a decided block delivered for verification.
type FinalizedBlock struct {
	Height        uint64    `cramberry:"1"`
	Time          Timestamp `cramberry:"2"`
	Txs           []Tx      `cramberry:"3"`
	LastBlockHash Hash      `cramberry:"4"`
}

// CommitResult is returned after the verifier persists its
// counters.
type CommitResult struct {
	// Minimum height the verifier still needs for queries.
	// 0 = no pruning preference.
	RetainHeight uint64 `cramberry:"1"`
}
