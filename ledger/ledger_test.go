package ledger_test

import (
	"errors"
	"testing"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/ledger"
	vestingtest "github.com/blockberries/vesting/testing"
	"github.com/blockberries/vesting/types"
)

func args(start uint64) []byte {
	return vestingtest.ConfigArgs(
		vestingtest.ProxyLock("creator").Hash(),
		vestingtest.ProxyLock("beneficiary").Hash(),
		start, start+100, start)
}

func TestMemory_Lookups(t *testing.T) {
	b := vestingtest.NewTxBuilder(args(0)).
		AuthInput(vestingtest.ProxyLock("creator")).
		Input(vestingtest.StateData(1, 2, 3, 4)).
		Output(vestingtest.StateData(5, 6, 7, 8)).
		Header(10, 20)
	m := b.Ledger()

	script, err := m.Script()
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if script.Hash() != b.Script().Hash() {
		t.Fatal("Script returned a different lock")
	}

	h, err := m.LockHash(0, vesting.SourceInput)
	if err != nil {
		t.Fatalf("LockHash failed: %v", err)
	}
	if h != vestingtest.ProxyLock("creator").Hash() {
		t.Fatalf("input 0 lock hash = %s", h)
	}
	h, err = m.LockHash(1, vesting.SourceInput)
	if err != nil {
		t.Fatalf("LockHash failed: %v", err)
	}
	if h != script.Hash() {
		t.Fatalf("input 1 lock hash = %s, want %s", h, script.Hash())
	}

	data, err := m.CellData(0, vesting.SourceOutput)
	if err != nil {
		t.Fatalf("CellData failed: %v", err)
	}
	if string(data) != string(vestingtest.StateData(5, 6, 7, 8)) {
		t.Fatalf("output 0 data = %x", data)
	}

	hdr, err := m.Header(0)
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}
	if hdr.Number != 10 || hdr.Epoch != 20 {
		t.Fatalf("header = %+v", hdr)
	}
}

func TestMemory_IndexOutOfBound(t *testing.T) {
	m := vestingtest.NewTxBuilder(args(0)).
		Input(vestingtest.StateData(1, 0, 0, 0)).
		Ledger()

	if _, err := m.LockHash(1, vesting.SourceInput); !errors.Is(err, vesting.ErrIndexOutOfBound) {
		t.Fatalf("input 1: got %v, want ErrIndexOutOfBound", err)
	}
	if _, err := m.LockHash(-1, vesting.SourceInput); !errors.Is(err, vesting.ErrIndexOutOfBound) {
		t.Fatalf("input -1: got %v, want ErrIndexOutOfBound", err)
	}
	if _, err := m.CellData(0, vesting.SourceOutput); !errors.Is(err, vesting.ErrIndexOutOfBound) {
		t.Fatalf("output 0: got %v, want ErrIndexOutOfBound", err)
	}
	if _, err := m.Header(0); !errors.Is(err, vesting.ErrIndexOutOfBound) {
		t.Fatalf("header 0: got %v, want ErrIndexOutOfBound", err)
	}
	if _, err := m.LockHash(0, vesting.SourceHeaderDep); !errors.Is(err, vesting.ErrItemMissing) {
		t.Fatalf("header lock: got %v, want ErrItemMissing", err)
	}
	if _, err := m.CellData(0, vesting.SourceHeaderDep); vesting.CodeOf(err) != vesting.CodeItemMissing {
		t.Fatalf("header data: got %v, want ItemMissing", err)
	}
}

func TestGroups(t *testing.T) {
	b := vestingtest.NewTxBuilder(args(0)).
		Input(vestingtest.StateData(1, 0, 0, 0)).
		AuthInput(vestingtest.ProxyLock("someone"))
	first := b.Script()
	b.Lock(args(50)).Input(vestingtest.StateData(2, 0, 0, 0))
	second := b.Script()
	b.Lock(args(0)).Input(vestingtest.StateData(3, 0, 0, 0))

	groups := ledger.Groups(b.Build(), vestingtest.VestingCodeHash)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Hash() != first.Hash() || groups[1].Hash() != second.Hash() {
		t.Fatal("groups not in first-seen order")
	}

	if got := ledger.Groups(b.Build(), types.Hash{0xff}); len(got) != 0 {
		t.Fatalf("expected no groups for unknown code hash, got %d", len(got))
	}
}

func TestTransaction_RoundTrip(t *testing.T) {
	b := vestingtest.NewTxBuilder(args(0)).
		AuthInput(vestingtest.ProxyLock("beneficiary")).
		Input(vestingtest.StateData(10000, 0, 0, 100)).
		Output(vestingtest.StateData(10000, 5000, 0, 150)).
		Header(150, 200)

	raw, err := ledger.EncodeTransaction(b.Build())
	if err != nil {
		t.Fatalf("EncodeTransaction failed: %v", err)
	}
	tx, err := ledger.DecodeTransaction(raw)
	if err != nil {
		t.Fatalf("DecodeTransaction failed: %v", err)
	}
	if len(tx.Inputs) != 2 || len(tx.Outputs) != 1 || len(tx.HeaderDeps) != 1 {
		t.Fatalf("decoded shape: %d inputs, %d outputs, %d headers",
			len(tx.Inputs), len(tx.Outputs), len(tx.HeaderDeps))
	}
	if tx.Inputs[1].LockHash() != b.Script().Hash() {
		t.Fatal("vesting lock hash changed across encoding")
	}
	if tx.HeaderDeps[0].Number != 150 || tx.HeaderDeps[0].Epoch != 200 {
		t.Fatalf("header = %+v", tx.HeaderDeps[0])
	}
}

func TestValidate(t *testing.T) {
	b := vestingtest.NewTxBuilder(args(0)).
		Input(vestingtest.StateData(1, 0, 0, 0)).
		Output(vestingtest.StateData(1, 0, 0, 1))
	raw := b.Tx(t)

	if _, err := ledger.Validate(raw, types.VerifierParams{}); err != nil {
		t.Fatalf("unlimited params: %v", err)
	}
	if _, err := ledger.Validate(raw, types.VerifierParams{MaxCells: 2}); err != nil {
		t.Fatalf("MaxCells=2: %v", err)
	}

	_, err := ledger.Validate(raw, types.VerifierParams{MaxCells: 1})
	if vesting.CodeOf(err) != vesting.CodeInvalidTransactionStructure {
		t.Fatalf("MaxCells=1: got %v", err)
	}
	_, err = ledger.Validate(raw, types.VerifierParams{MaxTxBytes: uint64(len(raw) - 1)})
	if vesting.CodeOf(err) != vesting.CodeInvalidTransactionStructure {
		t.Fatalf("MaxTxBytes: got %v", err)
	}

	empty := vestingtest.NewTxBuilder(args(0)).Header(1, 1).Tx(t)
	_, err = ledger.Validate(empty, types.VerifierParams{})
	if vesting.CodeOf(err) != vesting.CodeInvalidTransactionStructure {
		t.Fatalf("no inputs: got %v", err)
	}
}
