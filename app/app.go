// Package app is the vesting verifier as seen by a consensus
// engine. It decodes each transaction, runs the vesting lock once
// per lock group and reports one outcome per transaction.
//
// The verifier is stateless per transaction. Between blocks it only
// keeps counters (see Stats), which the app hash commits to.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/metrics"
	"github.com/blockberries/vesting/types"
)

var logger = log.New("pkg", "app")

// Compile-time interface checks.
var (
	_ vesting.Lifecycle       = (*App)(nil)
	_ vesting.ProposalControl = (*App)(nil)
	_ vesting.Simulator       = (*App)(nil)
)

// Options configure an App.
type Options struct {
	// Params are used until a genesis handshake supplies its own.
	Params types.VerifierParams
	// Workers bounds how many transactions of a block are verified
	// at once. Zero or less means one.
	Workers int
	// ChainID, when set, must match the chain ID of the genesis.
	ChainID string
}

// App verifies vesting transactions for a consensus engine.
type App struct {
	mu            sync.RWMutex
	params        types.VerifierParams
	chainID       string
	initialHeight uint64
	workers       int

	current Stats
	staged  *Stats
}

// New creates a verifier with empty counters.
func New(opts Options) *App {
	return &App{
		params:        opts.Params,
		chainID:       opts.ChainID,
		initialHeight: 1,
		workers:       max(opts.Workers, 1),
	}
}

// Params returns the parameters in effect.
func (app *App) Params() types.VerifierParams {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.params
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (app *App) Handshake(_ context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	caps := types.CapProposalControl | types.CapSimulation

	if req.LastCommitted == nil {
		// Genesis.
		if g := req.Genesis; g != nil {
			if app.chainID != "" && g.ChainID != app.chainID {
				return types.HandshakeResponse{}, errors.Errorf("genesis chain %q, configured for %q", g.ChainID, app.chainID)
			}
			app.chainID = g.ChainID
			if g.InitialHeight > 0 {
				app.initialHeight = g.InitialHeight
			}
			if !g.Params.VestingCodeHash.IsZero() {
				app.params = g.Params
			}
		}
		if app.params.VestingCodeHash.IsZero() {
			return types.HandshakeResponse{}, errors.New("vesting code hash not configured")
		}
		logger.Info("Genesis handshake", "chain", app.chainID, "code_hash", app.params.VestingCodeHash)
		h := app.current.appHash()
		return types.HandshakeResponse{
			AppHash:      &h,
			Capabilities: caps,
		}, nil
	}

	// Restart. Counters are not persisted, so the verifier resumes
	// from the engine's height with fresh counters.
	if app.current.Height == 0 {
		app.current.Height = req.LastCommitted.Height
	}
	logger.Info("Restart handshake", "height", app.current.Height)
	h := app.current.appHash()
	return types.HandshakeResponse{
		LastBlock:    &types.BlockID{Height: app.current.Height},
		AppHash:      &h,
		Capabilities: caps,
	}, nil
}

func (app *App) CheckTx(_ context.Context, tx types.Tx, _ types.MempoolContext) (types.GateVerdict, error) {
	res := verifyTx(tx, app.Params())
	metrics.TxChecked(res.code)
	if !res.ok() {
		return types.GateVerdict{Code: uint32(res.code), Info: res.info, Sender: res.sender}, nil
	}
	return types.GateVerdict{Priority: res.priority(), Sender: res.sender}, nil
}

func (app *App) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	app.mu.RLock()
	s := app.current
	params := app.params
	want := app.initialHeight
	if s.Height > 0 {
		want = s.Height + 1
	}
	app.mu.RUnlock()

	if block.Height != want {
		return types.BlockOutcome{}, vesting.NewHaltError(block.Height,
			fmt.Sprintf("expected height %d", want))
	}

	start := time.Now()
	results, err := app.verifyBlock(ctx, block.Txs, params)
	if err != nil {
		return types.BlockOutcome{}, errors.Wrapf(err, "execute block %d", block.Height)
	}

	s.Height = block.Height
	outcomes := make([]types.TxOutcome, len(results))
	for i, res := range results {
		outcomes[i] = types.TxOutcome{
			Index:  uint32(i),
			Code:   uint32(res.code),
			Info:   res.info,
			Events: res.events,
		}
		s.Txs++
		if res.ok() {
			s.Accepted++
			s.record(res.reports)
			for _, r := range res.reports {
				metrics.OperationAccepted(r.Operation.String())
			}
		} else {
			s.Rejected++
		}
		metrics.TxVerified(res.code)
	}
	metrics.BlockVerified(time.Since(start))

	h := s.appHash()
	app.mu.Lock()
	app.staged = &s
	app.mu.Unlock()

	logger.Debug("Executed block", "height", block.Height, "txs", len(block.Txs),
		"elapsed", time.Since(start))
	return types.BlockOutcome{TxOutcomes: outcomes, AppHash: h}, nil
}

// verifyBlock verifies txs concurrently and returns their results
// in block order.
func (app *App) verifyBlock(ctx context.Context, txs []types.Tx, params types.VerifierParams) ([]txResult, error) {
	results := make([]txResult, len(txs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(app.workers)
	for i, tx := range txs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = verifyTx(tx, params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (app *App) Commit(_ context.Context) (types.CommitResult, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.staged == nil {
		return types.CommitResult{}, errors.New("commit without executed block")
	}
	app.current = *app.staged
	app.staged = nil
	metrics.Committed(app.current.Height)
	return types.CommitResult{}, nil
}

// ---------------------------------------------------------------------------
// ProposalControl
// ---------------------------------------------------------------------------

// BuildProposal keeps the mempool transactions that verify, in
// order, within the byte budget. A vesting record can be spent once
// per block, so a transaction touching a lock group already taken
// by an earlier one is left for a later block.
func (app *App) BuildProposal(_ context.Context, pctx types.ProposalContext) (types.BuiltProposal, error) {
	params := app.Params()
	var (
		txs        []types.Tx
		totalBytes uint64
		spent      = make(map[string]struct{})
	)
	for _, tx := range pctx.MempoolTxs {
		size := uint64(len(tx))
		if pctx.MaxTxBytes > 0 && totalBytes+size > pctx.MaxTxBytes {
			continue
		}
		res := verifyTx(tx, params)
		if !res.ok() || conflicts(res, spent) {
			continue
		}
		markSpent(res, spent)
		txs = append(txs, tx)
		totalBytes += size
	}
	return types.BuiltProposal{Txs: txs}, nil
}

// VerifyProposal rejects a proposal holding a failing transaction
// or spending one vesting record twice.
func (app *App) VerifyProposal(_ context.Context, prop types.ReceivedProposal) (types.ProposalVerdict, error) {
	params := app.Params()
	spent := make(map[string]struct{})
	for i, tx := range prop.Txs {
		res := verifyTx(tx, params)
		if !res.ok() {
			return types.ProposalVerdict{
				RejectReason: fmt.Sprintf("tx %d: %s", i, res.info),
			}, nil
		}
		if conflicts(res, spent) {
			return types.ProposalVerdict{
				RejectReason: fmt.Sprintf("tx %d: vesting record spent twice", i),
			}, nil
		}
		markSpent(res, spent)
	}
	return types.ProposalVerdict{Accept: true}, nil
}

func conflicts(res txResult, spent map[string]struct{}) bool {
	for _, g := range res.groups {
		if _, ok := spent[g.Lock]; ok {
			return true
		}
	}
	return false
}

func markSpent(res txResult, spent map[string]struct{}) {
	for _, g := range res.groups {
		spent[g.Lock] = struct{}{}
	}
}

// ---------------------------------------------------------------------------
// Simulation
// ---------------------------------------------------------------------------

// Simulate verifies tx without touching state. Data is the JSON
// list of per-group reports.
func (app *App) Simulate(_ context.Context, tx types.Tx) (types.TxOutcome, error) {
	metrics.Simulated()
	res := verifyTx(tx, app.Params())
	data, err := json.Marshal(res.groups)
	if err != nil {
		return types.TxOutcome{}, errors.Wrap(err, "marshal reports")
	}
	return types.TxOutcome{
		Code:   uint32(res.code),
		Info:   res.info,
		Data:   data,
		Events: res.events,
	}, nil
}
