package types

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// HashType selects how a script's CodeHash is matched against
// deployed code.
type HashType uint8

const (
	HashTypeData HashType = 0
	HashTypeType HashType = 1
)

// Script identifies the code guarding a cell together with its
// arguments. For a vesting lock the arguments are the 88-byte
// schedule configuration.
type Script struct {
	CodeHash Hash     `cramberry:"1"`
	HashType HashType `cramberry:"2"`
	Args     []byte   `cramberry:"3"`
}

// Hash returns the script hash: blake2b-256 over the code hash,
// the hash type, the little-endian argument length and the
// arguments. Two cells share a lock exactly when their lock
// scripts hash equal.
func (s Script) Hash() Hash {
	buf := make([]byte, 0, 32+1+4+len(s.Args))
	buf = append(buf, s.CodeHash[:]...)
	buf = append(buf, byte(s.HashType))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Args)))
	buf = append(buf, s.Args...)
	return Hash(blake2b.Sum256(buf))
}

// CellOutput is the header part of a cell: how much capacity it
// holds and which scripts guard it.
type CellOutput struct {
	Capacity uint64  `cramberry:"1"`
	Lock     Script  `cramberry:"2"`
	Type     *Script `cramberry:"3"`
}

// Cell is a ledger record: an output plus its opaque data.
type Cell struct {
	Output CellOutput `cramberry:"1"`
	Data   []byte     `cramberry:"2"`
}

// LockHash is shorthand for c.Output.Lock.Hash().
func (c Cell) LockHash() Hash {
	return c.Output.Lock.Hash()
}

// Header is the part of a block header a transaction may declare
// as a dependency. Only Number and Epoch are consulted by locks.
type Header struct {
	Number uint64 `cramberry:"1"`
	Epoch  uint64 `cramberry:"2"`
	Hash   Hash   `cramberry:"3"`
}

// Transaction is a fully resolved transaction: inputs carry the
// cells they consume rather than out-points, so a lock can be
// verified without access to the live cell set.
type Transaction struct {
	Inputs     []Cell   `cramberry:"1"`
	Outputs    []Cell   `cramberry:"2"`
	HeaderDeps []Header `cramberry:"3"`
	Witnesses  [][]byte `cramberry:"4"`
}

// CellCount returns the number of inputs plus outputs.
func (tx Transaction) CellCount() int {
	return len(tx.Inputs) + len(tx.Outputs)
}
