package app

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/lock"
	"github.com/blockberries/vesting/metrics"
	"github.com/blockberries/vesting/types"
)

// Query paths.
const (
	PathStats  types.QueryPath = "/stats"
	PathVested types.QueryPath = "/vested"
	PathCodes  types.QueryPath = "/codes"
	PathParams types.QueryPath = "/params"
)

// VestedQuerySize is the length of /vested query data: lock
// arguments, cell data and a little-endian epoch.
const VestedQuerySize = lock.ConfigSize + lock.StateSize + 8

// queryUnknownPath is the result code for paths the verifier does
// not serve.
const queryUnknownPath = 1

type paramsJSON struct {
	ChainID         string `json:"chain_id"`
	VestingCodeHash string `json:"vesting_code_hash"`
	MaxTxBytes      uint64 `json:"max_tx_bytes"`
	MaxCells        uint32 `json:"max_cells"`
}

func (app *App) Query(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	app.mu.RLock()
	defer app.mu.RUnlock()

	height := app.current.Height
	switch req.Path {
	case PathStats:
		data, _ := json.Marshal(app.current) // Stats is always serializable
		return types.StateQueryResult{Value: data, Height: height}, nil

	case PathVested:
		vested, err := queryVested(req.Data)
		if err != nil {
			return types.StateQueryResult{
				Code:   uint32(vesting.CodeOf(err)),
				Info:   err.Error(),
				Height: height,
			}, nil
		}
		return types.StateQueryResult{
			Key:    req.Data,
			Value:  binary.LittleEndian.AppendUint64(nil, vested),
			Height: height,
		}, nil

	case PathCodes:
		table := make(map[string]int8)
		for _, c := range vesting.Codes() {
			table[c.String()] = int8(c)
		}
		data, _ := json.Marshal(table)
		return types.StateQueryResult{Value: data, Height: height}, nil

	case PathParams:
		data, _ := json.Marshal(paramsJSON{
			ChainID:         app.chainID,
			VestingCodeHash: app.params.VestingCodeHash.String(),
			MaxTxBytes:      app.params.MaxTxBytes,
			MaxCells:        app.params.MaxCells,
		})
		return types.StateQueryResult{Value: data, Height: height}, nil

	default:
		metrics.UnknownQuery()
		return types.StateQueryResult{Code: queryUnknownPath, Info: "unknown query path", Height: height}, nil
	}
}

// queryVested evaluates the schedule for a record without a
// transaction: data is lock arguments, cell data and an epoch.
func queryVested(data []byte) (uint64, error) {
	if len(data) != VestedQuerySize {
		return 0, errors.Wrapf(vesting.ErrInvalidArgs,
			"query data is %d bytes, want %d", len(data), VestedQuerySize)
	}
	cfg, err := lock.ParseConfig(data[:lock.ConfigSize])
	if err != nil {
		return 0, err
	}
	s, err := lock.ParseState(data[lock.ConfigSize : lock.ConfigSize+lock.StateSize])
	if err != nil {
		return 0, err
	}
	epoch := binary.LittleEndian.Uint64(data[lock.ConfigSize+lock.StateSize:])
	return cfg.Vested(epoch, s), nil
}

// VestedQuery builds /vested query data.
func VestedQuery(args, cellData []byte, epoch uint64) []byte {
	buf := make([]byte, 0, VestedQuerySize)
	buf = append(buf, args...)
	buf = append(buf, cellData...)
	return binary.LittleEndian.AppendUint64(buf, epoch)
}
