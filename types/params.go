package types

// VerifierParams are the chain-wide parameters of the verifier.
type VerifierParams struct {
	// Code hash of the vesting lock. Inputs whose lock script
	// carries this code hash are verified; all others are ignored.
	VestingCodeHash Hash `cramberry:"1"`
	// Maximum encoded transaction size. 0 = unlimited.
	MaxTxBytes uint64 `cramberry:"2"`
	// Maximum inputs plus outputs per transaction. 0 = unlimited.
	MaxCells uint32 `cramberry:"3"`
}
