package app

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/blockberries/vesting/lock"
	"github.com/blockberries/vesting/types"
)

// Stats are the verifier's running counters. They are the only
// state the verifier keeps between blocks.
type Stats struct {
	Height       uint64 `json:"height"`
	Txs          uint64 `json:"txs"`
	Accepted     uint64 `json:"accepted"`
	Rejected     uint64 `json:"rejected"`
	Claims       uint64 `json:"claims"`
	Terminations uint64 `json:"terminations"`
	Refreshes    uint64 `json:"refreshes"`
	// Claimed and Reclaimed total the amounts released to
	// beneficiaries and taken back by creators.
	Claimed   uint64 `json:"claimed"`
	Reclaimed uint64 `json:"reclaimed"`
}

// record folds the reports of one accepted transaction into s.
func (s *Stats) record(reports []lock.Report) {
	for _, r := range reports {
		switch r.Operation {
		case lock.OpClaim:
			s.Claims++
			s.Claimed += r.Claimed()
		case lock.OpTerminate:
			s.Terminations++
			s.Reclaimed += r.Reclaimed()
		case lock.OpRefresh:
			s.Refreshes++
		}
	}
}

// appHash is blake2b-256 over the counters in declaration order,
// each as a little-endian uint64.
func (s Stats) appHash() types.AppHash {
	buf := make([]byte, 0, 9*8)
	for _, v := range []uint64{
		s.Height, s.Txs, s.Accepted, s.Rejected,
		s.Claims, s.Terminations, s.Refreshes,
		s.Claimed, s.Reclaimed,
	} {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	return types.AppHash(blake2b.Sum256(buf))
}
