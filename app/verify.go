package app

import (
	"fmt"
	"strconv"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/ledger"
	"github.com/blockberries/vesting/lock"
	"github.com/blockberries/vesting/types"
)

// Event kinds emitted per lock group.
const (
	EventClaim     = "vesting.claim"
	EventTerminate = "vesting.terminate"
	EventRefresh   = "vesting.refresh"
	EventReject    = "vesting.reject"
)

// GroupReport is the outcome of one vesting lock group, as returned
// by Simulate.
type GroupReport struct {
	Lock          string `json:"lock"`
	Code          int8   `json:"code"`
	Result        string `json:"result"`
	Error         string `json:"error,omitempty"`
	Authorization string `json:"authorization,omitempty"`
	Operation     string `json:"operation,omitempty"`
	Vested        uint64 `json:"vested"`
	Claimed       uint64 `json:"claimed"`
	Reclaimed     uint64 `json:"reclaimed"`
	Consumed      bool   `json:"consumed"`
}

// txResult is the verification result of one transaction.
type txResult struct {
	// code is that of the first failing group, or of the structural
	// check that stopped verification early.
	code    vesting.Code
	info    string
	sender  string
	reports []lock.Report
	groups  []GroupReport
	events  []types.Event
}

func (r txResult) ok() bool { return r.code == vesting.CodeOK }

// verifyTx decodes raw and runs every vesting lock group in it.
// Transactions without vesting inputs pass trivially.
func verifyTx(raw types.Tx, params types.VerifierParams) txResult {
	tx, err := ledger.Validate(raw, params)
	if err != nil {
		code := vesting.CodeOf(err)
		return txResult{
			code:   code,
			info:   err.Error(),
			events: []types.Event{rejectEvent("", code)},
		}
	}

	var res txResult
	for _, script := range ledger.Groups(tx, params.VestingCodeHash) {
		lockHash := script.Hash()
		if res.sender == "" {
			res.sender = lockHash.String()
		}
		report, err := lock.Verify(ledger.NewMemory(tx, script))
		if err != nil {
			code := vesting.CodeOf(err)
			if res.ok() {
				res.code = code
				res.info = fmt.Sprintf("lock %s: %v", lockHash, err)
			}
			res.groups = append(res.groups, GroupReport{
				Lock:   lockHash.String(),
				Code:   int8(code),
				Result: code.String(),
				Error:  err.Error(),
			})
			res.events = append(res.events, rejectEvent(lockHash.String(), code))
			continue
		}
		res.reports = append(res.reports, report)
		res.groups = append(res.groups, groupReport(report))
		res.events = append(res.events, reportEvent(report))
	}
	if !res.ok() {
		// A rejected transaction changes nothing; only its
		// rejections are reported.
		res.reports = nil
		res.events = onlyRejections(res.events)
	}
	return res
}

// priority orders the mempool: terminations first, then claims,
// then refreshes.
func (r txResult) priority() int64 {
	var p int64
	for _, rep := range r.reports {
		switch rep.Operation {
		case lock.OpTerminate:
			p = max(p, 20)
		case lock.OpClaim:
			p = max(p, 10)
		default:
			p = max(p, 1)
		}
	}
	return p
}

func groupReport(r lock.Report) GroupReport {
	return GroupReport{
		Lock:          r.Lock.String(),
		Code:          int8(vesting.CodeOK),
		Result:        vesting.CodeOK.String(),
		Authorization: r.Authorization.String(),
		Operation:     r.Operation.String(),
		Vested:        r.Vested,
		Claimed:       r.Claimed(),
		Reclaimed:     r.Reclaimed(),
		Consumed:      r.Consumed,
	}
}

func reportEvent(r lock.Report) types.Event {
	attrs := []types.EventAttribute{
		{Key: "lock", Value: r.Lock.String(), Index: true},
		{Key: "block", Value: strconv.FormatUint(r.Temporal.HeaderBlock, 10)},
		{Key: "consumed", Value: strconv.FormatBool(r.Consumed)},
	}
	switch r.Operation {
	case lock.OpClaim:
		attrs = append(attrs,
			types.EventAttribute{Key: "amount", Value: strconv.FormatUint(r.Claimed(), 10)},
			types.EventAttribute{Key: "vested", Value: strconv.FormatUint(r.Vested, 10)},
		)
		return types.Event{Kind: EventClaim, Attributes: attrs}
	case lock.OpTerminate:
		attrs = append(attrs,
			types.EventAttribute{Key: "amount", Value: strconv.FormatUint(r.Reclaimed(), 10)},
			types.EventAttribute{Key: "vested", Value: strconv.FormatUint(r.Vested, 10)},
		)
		return types.Event{Kind: EventTerminate, Attributes: attrs}
	default:
		return types.Event{Kind: EventRefresh, Attributes: attrs}
	}
}

// rejectEvent reports a failed group. lockHash is empty when the
// transaction failed before any group ran.
func rejectEvent(lockHash string, code vesting.Code) types.Event {
	var attrs []types.EventAttribute
	if lockHash != "" {
		attrs = append(attrs, types.EventAttribute{Key: "lock", Value: lockHash, Index: true})
	}
	attrs = append(attrs,
		types.EventAttribute{Key: "code", Value: strconv.Itoa(int(code))},
		types.EventAttribute{Key: "result", Value: code.String(), Index: true},
	)
	return types.Event{Kind: EventReject, Attributes: attrs}
}

func onlyRejections(events []types.Event) []types.Event {
	var out []types.Event
	for _, e := range events {
		if e.Kind == EventReject {
			out = append(out, e)
		}
	}
	return out
}
