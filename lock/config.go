package lock

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

// ConfigSize is the length of the lock script arguments.
const ConfigSize = 88

const (
	creatorHashOffset     = 0
	beneficiaryHashOffset = 32
	startEpochOffset      = 64
	endEpochOffset        = 72
	cliffEpochOffset      = 80
)

// Config is the immutable vesting schedule carried in the lock
// script arguments:
//
//	creator_lock_hash[32] | beneficiary_lock_hash[32] |
//	start_epoch u64 | end_epoch u64 | cliff_epoch u64
//
// Integers are little endian.
type Config struct {
	CreatorLockHash     types.Hash
	BeneficiaryLockHash types.Hash
	StartEpoch          uint64
	EndEpoch            uint64
	CliffEpoch          uint64
}

// ParseConfig decodes and validates lock script arguments.
// A wrong length is ErrInvalidArgs; a schedule violating
// start < end and start <= cliff <= end is ErrInvalidEpoch.
func ParseConfig(args []byte) (Config, error) {
	if len(args) != ConfigSize {
		return Config{}, errors.Wrapf(vesting.ErrInvalidArgs,
			"lock args are %d bytes, want %d", len(args), ConfigSize)
	}
	var c Config
	copy(c.CreatorLockHash[:], args[creatorHashOffset:beneficiaryHashOffset])
	copy(c.BeneficiaryLockHash[:], args[beneficiaryHashOffset:startEpochOffset])
	c.StartEpoch = binary.LittleEndian.Uint64(args[startEpochOffset:])
	c.EndEpoch = binary.LittleEndian.Uint64(args[endEpochOffset:])
	c.CliffEpoch = binary.LittleEndian.Uint64(args[cliffEpochOffset:])

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the schedule ordering.
func (c Config) Validate() error {
	if c.StartEpoch >= c.EndEpoch || c.CliffEpoch < c.StartEpoch || c.CliffEpoch > c.EndEpoch {
		return errors.Wrapf(vesting.ErrInvalidEpoch,
			"start %d, cliff %d, end %d", c.StartEpoch, c.CliffEpoch, c.EndEpoch)
	}
	return nil
}

// Bytes encodes c in the lock argument layout. It does not
// validate the schedule, so tests can build rejected configurations.
func (c Config) Bytes() []byte {
	buf := make([]byte, 0, ConfigSize)
	buf = append(buf, c.CreatorLockHash[:]...)
	buf = append(buf, c.BeneficiaryLockHash[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, c.StartEpoch)
	buf = binary.LittleEndian.AppendUint64(buf, c.EndEpoch)
	buf = binary.LittleEndian.AppendUint64(buf, c.CliffEpoch)
	return buf
}

// Vested is the amount vested at epoch for a record in state s.
func (c Config) Vested(epoch uint64, s State) uint64 {
	return Vested(epoch, c.StartEpoch, c.EndEpoch, c.CliffEpoch, s.TotalAmount, s.CreatorClaimed)
}
