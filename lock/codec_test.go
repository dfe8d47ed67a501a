package lock

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

func TestState_RoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 1000; i++ {
		var s State
		f.Fuzz(&s)
		data := s.Bytes()
		require.Len(t, data, StateSize)
		got, err := ParseState(data)
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
}

func TestParseState_WrongLength(t *testing.T) {
	for _, n := range []int{0, 31, 33, 64} {
		_, err := ParseState(make([]byte, n))
		require.ErrorIs(t, err, vesting.ErrWrongDataLength, "length %d", n)
	}
}

func TestState_Layout(t *testing.T) {
	s := State{TotalAmount: 1, BeneficiaryClaimed: 2, CreatorClaimed: 3, HighestBlockSeen: 0x0102030405060708}
	data := s.Bytes()
	require.Equal(t, byte(1), data[0])
	require.Equal(t, byte(2), data[8])
	require.Equal(t, byte(3), data[16])
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, data[24:32])
}

func TestState_Remaining(t *testing.T) {
	require.False(t, State{TotalAmount: 100}.Terminated())
	require.True(t, State{TotalAmount: 100, CreatorClaimed: 1}.Terminated())

	require.Equal(t, uint64(30), State{TotalAmount: 100, BeneficiaryClaimed: 20, CreatorClaimed: 50}.Remaining())
	require.Zero(t, State{TotalAmount: 100, BeneficiaryClaimed: 60, CreatorClaimed: 50}.Remaining())
}

func TestSaturatingArithmetic(t *testing.T) {
	const maxU64 = ^uint64(0)
	require.Equal(t, maxU64, satAdd(maxU64, 1))
	require.Equal(t, maxU64, satAdd(maxU64-1, 1))
	require.Equal(t, uint64(5), satAdd(2, 3))
	require.Zero(t, satSub(2, 3))
	require.Equal(t, uint64(1), satSub(3, 2))
}

func TestConfig_RoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 1000; i++ {
		var c Config
		f.Fuzz(&c)
		got, err := ParseConfig(c.Bytes())
		if c.Validate() != nil {
			require.ErrorIs(t, err, vesting.ErrInvalidEpoch)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
}

func TestParseConfig(t *testing.T) {
	creator := types.Hash{1}
	beneficiary := types.Hash{2}
	build := func(start, end, cliff uint64) []byte {
		return Config{
			CreatorLockHash:     creator,
			BeneficiaryLockHash: beneficiary,
			StartEpoch:          start,
			EndEpoch:            end,
			CliffEpoch:          cliff,
		}.Bytes()
	}

	tests := []struct {
		name string
		args []byte
		want error
	}{
		{"valid", build(100, 300, 120), nil},
		{"cliff at start", build(100, 300, 100), nil},
		{"cliff at end", build(100, 300, 300), nil},
		{"empty", nil, vesting.ErrInvalidArgs},
		{"short", build(100, 300, 120)[:87], vesting.ErrInvalidArgs},
		{"long", append(build(100, 300, 120), 0), vesting.ErrInvalidArgs},
		{"start equals end", build(300, 300, 300), vesting.ErrInvalidEpoch},
		{"start after end", build(300, 100, 200), vesting.ErrInvalidEpoch},
		{"cliff before start", build(100, 300, 50), vesting.ErrInvalidEpoch},
		{"cliff after end", build(100, 300, 400), vesting.ErrInvalidEpoch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig(tt.args)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			require.Equal(t, creator, cfg.CreatorLockHash)
			require.Equal(t, beneficiary, cfg.BeneficiaryLockHash)
		})
	}
}

func TestResolveAuthorization(t *testing.T) {
	cfg := Config{CreatorLockHash: types.Hash{1}, BeneficiaryLockHash: types.Hash{2}}
	other := types.Hash{3}

	require.Equal(t, AuthNone, ResolveAuthorization(nil, cfg))
	require.Equal(t, AuthNone, ResolveAuthorization([]types.Hash{other}, cfg))
	require.Equal(t, AuthCreator, ResolveAuthorization([]types.Hash{other, cfg.CreatorLockHash}, cfg))
	require.Equal(t, AuthBeneficiary, ResolveAuthorization([]types.Hash{cfg.BeneficiaryLockHash}, cfg))
	require.Equal(t, AuthCreator,
		ResolveAuthorization([]types.Hash{cfg.BeneficiaryLockHash, cfg.CreatorLockHash}, cfg),
		"creator must win over beneficiary")

	require.Equal(t, "creator", AuthCreator.String())
	require.Equal(t, "beneficiary", AuthBeneficiary.String())
	require.Equal(t, "none", AuthNone.String())
}
