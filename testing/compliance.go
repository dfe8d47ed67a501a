package vestingtest

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/types"
)

// SampleTxs returns a small set of vesting transactions for
// lifecycle tests: a beneficiary claim, a creator termination and
// a claim against a stale header.
func SampleTxs(t *testing.T) []types.Tx {
	t.Helper()
	creator, beneficiary := ProxyLock("creator"), ProxyLock("beneficiary")
	args := ConfigArgs(creator.Hash(), beneficiary.Hash(), 100, 300, 120)

	claim := NewTxBuilder(args).
		AuthInput(beneficiary).
		Input(StateData(10000, 0, 0, 100)).
		Header(150, 200).
		Output(StateData(10000, 5000, 0, 150)).
		Tx(t)
	terminate := NewTxBuilder(ConfigArgs(creator.Hash(), beneficiary.Hash(), 0, 100, 0)).
		AuthInput(creator).
		Input(StateData(800, 0, 0, 10)).
		Header(20, 25).
		Output(StateData(800, 0, 600, 20)).
		Tx(t)
	stale := NewTxBuilder(args).
		AuthInput(beneficiary).
		Input(StateData(10000, 0, 0, 100)).
		Header(100, 200).
		Output(StateData(10000, 5000, 0, 100)).
		Tx(t)
	return []types.Tx{claim, terminate, stale}
}

// RunComplianceSuite runs a standard lifecycle test suite against
// a verifier implementation.
//
// The factory function should return a fresh verifier for each
// test.
func RunComplianceSuite(t *testing.T, factory func() vesting.Lifecycle) {
	t.Helper()

	t.Run("genesis_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		resp := h.GenesisDefault()
		if resp.LastBlock != nil {
			t.Error("genesis handshake should return nil LastBlock")
		}
		if resp.AppHash == nil {
			t.Error("genesis handshake should return a non-nil AppHash")
		}
	})

	t.Run("execute_commit_cycle", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		for i := uint64(1); i <= 5; i++ {
			outcome := h.ExecuteAndCommit(MakeEmptyBlock(i))
			if outcome.AppHash == (types.AppHash{}) {
				t.Errorf("height %d: zero app hash", i)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		h1 := NewHarness(t, factory())
		h1.GenesisDefault()
		h2 := NewHarness(t, factory())
		h2.GenesisDefault()

		txs := SampleTxs(t)
		blocks := []types.FinalizedBlock{
			MakeEmptyBlock(1),
			MakeBlock(2, txs...),
			MakeBlock(3, txs[2], txs[0]),
		}
		for _, block := range blocks {
			o1 := h1.ExecuteAndCommit(block)
			o2 := h2.ExecuteAndCommit(block)
			if o1.AppHash != o2.AppHash {
				t.Errorf("height %d: non-deterministic: %x != %x",
					block.Height, o1.AppHash, o2.AppHash)
			}
			if len(o1.TxOutcomes) != len(o2.TxOutcomes) {
				t.Fatalf("height %d: outcome count mismatch: %d != %d",
					block.Height, len(o1.TxOutcomes), len(o2.TxOutcomes))
			}
			for i := range o1.TxOutcomes {
				if o1.TxOutcomes[i].Code != o2.TxOutcomes[i].Code {
					t.Errorf("height %d tx %d: code %d != %d",
						block.Height, i, o1.TxOutcomes[i].Code, o2.TxOutcomes[i].Code)
				}
			}
		}
	})

	t.Run("tx_outcome_indices", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		txs := SampleTxs(t)
		outcome := h.ExecuteAndCommit(MakeBlock(1, txs...))
		if len(outcome.TxOutcomes) != len(txs) {
			t.Fatalf("expected %d tx outcomes, got %d", len(txs), len(outcome.TxOutcomes))
		}
		for i, o := range outcome.TxOutcomes {
			if o.Index != uint32(i) {
				t.Errorf("tx %d: expected index %d, got %d", i, i, o.Index)
			}
		}
	})

	t.Run("concurrent_checktx_after_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		txs := SampleTxs(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.Server().CheckTx(context.Background(), txs[i%len(txs)], types.MempoolFirstSeen)
				if err != nil {
					t.Errorf("concurrent CheckTx failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("concurrent_query_after_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.Server().Query(context.Background(), types.StateQuery{Path: "/stats"})
				if err != nil {
					t.Errorf("concurrent Query failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("query_returns_height", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		h.ExecuteAndCommit(MakeEmptyBlock(1))
		h.ExecuteAndCommit(MakeEmptyBlock(2))

		result := h.Query("/stats", nil)
		if result.Height < 1 {
			t.Errorf("query height should be >= 1 after committing, got %d", result.Height)
		}
	})
}
