package types_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/blockberries/vesting/types"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out T
	if err := cramberry.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return out
}

func TestTimestamp_RoundTrip(t *testing.T) {
	ts := types.TimeToTimestamp(time.Date(2024, 6, 15, 12, 30, 45, 123456789, time.UTC))
	got := roundTrip(t, ts)
	if got != ts {
		t.Fatalf("Timestamp round-trip failed: got %+v, want %+v", got, ts)
	}
	goTime := got.ToTime()
	if goTime.Year() != 2024 || goTime.Month() != 6 || goTime.Day() != 15 {
		t.Fatalf("Timestamp.ToTime date wrong: %v", goTime)
	}
	if goTime.Nanosecond() != 123456789 {
		t.Fatalf("Timestamp.ToTime nanos wrong: %d", goTime.Nanosecond())
	}
	if got.IsZero() {
		t.Fatal("Timestamp.IsZero true for a set timestamp")
	}
}

func TestTransaction_RoundTrip(t *testing.T) {
	typeScript := types.Script{CodeHash: types.Hash{0x07}, HashType: types.HashTypeType}
	v := types.Transaction{
		Inputs: []types.Cell{{
			Output: types.CellOutput{
				Capacity: 10161,
				Lock:     types.Script{CodeHash: types.Hash{0x01}, Args: bytes.Repeat([]byte{0xAA}, 88)},
			},
			Data: bytes.Repeat([]byte{0x01}, 32),
		}},
		Outputs: []types.Cell{{
			Output: types.CellOutput{
				Capacity: 5161,
				Lock:     types.Script{CodeHash: types.Hash{0x01}, Args: bytes.Repeat([]byte{0xAA}, 88)},
				Type:     &typeScript,
			},
		}},
		HeaderDeps: []types.Header{{Number: 201, Epoch: 200, Hash: types.Hash{0xFE}}},
		Witnesses:  [][]byte{[]byte("w")},
	}
	got := roundTrip(t, v)
	if len(got.Inputs) != 1 || len(got.Outputs) != 1 || len(got.HeaderDeps) != 1 {
		t.Fatalf("Transaction slice lengths wrong: %+v", got)
	}
	if got.Inputs[0].LockHash() != v.Inputs[0].LockHash() {
		t.Fatal("input lock hash changed across round-trip")
	}
	if !bytes.Equal(got.Inputs[0].Data, v.Inputs[0].Data) {
		t.Fatal("input data changed across round-trip")
	}
	if got.Outputs[0].Output.Type == nil || got.Outputs[0].Output.Type.CodeHash != typeScript.CodeHash {
		t.Fatal("output type script lost")
	}
	if got.HeaderDeps[0] != v.HeaderDeps[0] {
		t.Fatalf("header mismatch: got %+v", got.HeaderDeps[0])
	}
	if got.CellCount() != 2 {
		t.Fatalf("CellCount: got %d, want 2", got.CellCount())
	}
}

func TestScript_Hash(t *testing.T) {
	a := types.Script{CodeHash: types.Hash{0x01}, Args: []byte{1}}
	b := types.Script{CodeHash: types.Hash{0x01}, Args: []byte{2}}
	c := types.Script{CodeHash: types.Hash{0x01}, HashType: types.HashTypeType, Args: []byte{1}}

	if a.Hash() != a.Hash() {
		t.Fatal("script hash is not deterministic")
	}
	if a.Hash() == b.Hash() {
		t.Fatal("different args hashed equal")
	}
	if a.Hash() == c.Hash() {
		t.Fatal("different hash types hashed equal")
	}
	if a.Hash().IsZero() {
		t.Fatal("script hash is zero")
	}

	// Length prefix keeps args boundaries unambiguous.
	d := types.Script{CodeHash: types.Hash{0x01}, Args: nil}
	if d.Hash() == a.Hash() {
		t.Fatal("empty args hashed equal to one-byte args")
	}
}

func TestEvent_RoundTrip(t *testing.T) {
	v := types.Event{
		Kind: "vesting.claim",
		Attributes: []types.EventAttribute{
			{Key: "lock", Value: "0x01", Index: true},
			{Key: "amount", Value: "5000", Index: false},
		},
	}
	got := roundTrip(t, v)
	if got.Kind != v.Kind || len(got.Attributes) != len(v.Attributes) {
		t.Fatalf("Event round-trip failed")
	}
	for i := range v.Attributes {
		if got.Attributes[i] != v.Attributes[i] {
			t.Fatalf("Event.Attributes[%d] mismatch", i)
		}
	}
	if got.Attr("amount") != "5000" {
		t.Fatalf("Attr(amount): got %q", got.Attr("amount"))
	}
	if got.Attr("missing") != "" {
		t.Fatal("Attr(missing) should be empty")
	}
}

func TestBlockOutcome_RoundTrip(t *testing.T) {
	v := types.BlockOutcome{
		TxOutcomes:  []types.TxOutcome{{Index: 0, Code: 0}, {Index: 1, Code: 24, Info: "stale header"}},
		BlockEvents: []types.Event{{Kind: "vesting.block"}},
		AppHash:     types.AppHash{0xAB},
	}
	got := roundTrip(t, v)
	if got.AppHash != v.AppHash {
		t.Fatalf("BlockOutcome.AppHash mismatch")
	}
	if len(got.TxOutcomes) != 2 || got.TxOutcomes[1].Code != 24 || got.TxOutcomes[1].OK() {
		t.Fatalf("BlockOutcome tx outcomes wrong: %+v", got.TxOutcomes)
	}
}

func TestHandshake_RoundTrip(t *testing.T) {
	genesis := types.GenesisDoc{
		ChainID:       "vesting-test",
		InitialHeight: 1,
		Params: types.VerifierParams{
			VestingCodeHash: types.Hash{0x42},
			MaxTxBytes:      64 * 1024,
			MaxCells:        256,
		},
	}
	req := roundTrip(t, types.HandshakeRequest{Genesis: &genesis})
	if req.Genesis == nil || req.Genesis.Params != genesis.Params {
		t.Fatalf("HandshakeRequest.Genesis mismatch: %+v", req.Genesis)
	}

	ah := types.AppHash{0xBE, 0xEF}
	resp := roundTrip(t, types.HandshakeResponse{
		AppHash:      &ah,
		Capabilities: types.CapProposalControl | types.CapSimulation,
	})
	if resp.AppHash == nil || *resp.AppHash != ah {
		t.Fatalf("HandshakeResponse.AppHash mismatch")
	}
	if !resp.Capabilities.Has(types.CapSimulation) {
		t.Fatalf("HandshakeResponse.Capabilities missing Simulation")
	}
}

func TestCapabilities_String(t *testing.T) {
	if s := types.Capabilities(0).String(); s != "none" {
		t.Errorf("expected none, got %q", s)
	}
	both := types.CapProposalControl | types.CapSimulation
	if s := both.String(); s != "ProposalControl|Simulation" {
		t.Errorf("unexpected capability string %q", s)
	}
	if both.Has(types.Capabilities(0b100)) {
		t.Error("unexpected capability bit")
	}
}
