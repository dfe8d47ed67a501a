// Package types defines the wire data of the vesting verifier:
// the resolved transactions it judges, and the request/response
// structs exchanged with the consensus engine.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration) are handled in the transport packages.
package types

import "encoding/hex"

// Hash is a 32-byte cryptographic hash.
type Hash [32]byte

// String returns the 0x-prefixed hex form of the hash.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether every byte of the hash is zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// AppHash is a deterministic fingerprint of the verifier state
// after execution.
type AppHash [32]byte

// Tx is an opaque transaction as carried by the engine. The
// verifier decodes it into a Transaction (see package ledger).
type Tx []byte

// QueryPath is a structured key for state queries (e.g., "/vested").
type QueryPath string

// BlockID uniquely identifies a point in the chain.
type BlockID struct {
	Height uint64 `cramberry:"1"`
	Hash   Hash   `cramberry:"2"`
}
