// Package server is the engine-side wrapper around a verifier. It
// enforces the lifecycle call order (Handshake, then ExecuteBlock and
// Commit strictly alternating) and routes capability-gated calls.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type lifecycleState uint32

const (
	stateInit lifecycleState = iota
	// Handshake done; CheckTx, Query, Simulate and the proposal
	// calls may run from here on.
	stateReady
	stateExecuting
	// A block was verified and awaits Commit.
	stateExecuted
	stateCommitting
	// Terminal. Every call panics.
	stateClosed
)

var stateNames = [...]string{
	stateInit:       "Init",
	stateReady:      "Ready",
	stateExecuting:  "Executing",
	stateExecuted:   "Executed",
	stateCommitting: "Committing",
	stateClosed:     "Closed",
}

func (s lifecycleState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("unknown(%d)", s)
}

// LifecycleGuard enforces the lifecycle state machine and tracks the
// height of the last committed block. Misuse is a programming error
// in the engine and panics.
type LifecycleGuard struct {
	state atomic.Uint32
	open  atomic.Bool // handshake completed and not closed

	// seqMu is held from Acquire to Complete/Fail of ExecuteBlock
	// and Commit.
	seqMu     sync.Mutex
	pending   uint64
	committed atomic.Uint64
}

// NewLifecycleGuard creates a guard in the Init state.
func NewLifecycleGuard() *LifecycleGuard {
	return &LifecycleGuard{}
}

// State returns the current lifecycle state.
func (g *LifecycleGuard) State() string {
	return g.load().String()
}

// Height returns the height of the last committed block, or the
// height reported at handshake if nothing was committed since.
func (g *LifecycleGuard) Height() uint64 {
	return g.committed.Load()
}

func (g *LifecycleGuard) load() lifecycleState {
	return lifecycleState(g.state.Load())
}

// move switches from one state to another or panics naming op.
func (g *LifecycleGuard) move(op string, from, to lifecycleState) {
	if !g.state.CompareAndSwap(uint32(from), uint32(to)) {
		panic(fmt.Sprintf("vesting: %s called in state %s (expected %s)", op, g.load(), from))
	}
}

// AcquireHandshake moves Init to Ready.
func (g *LifecycleGuard) AcquireHandshake() {
	g.move("Handshake", stateInit, stateReady)
}

// CompleteHandshake opens the guard for concurrent calls. last is
// the height the verifier reported as committed.
func (g *LifecycleGuard) CompleteHandshake(last uint64) {
	g.committed.Store(last)
	g.open.Store(true)
}

// FailHandshake rolls back to Init.
func (g *LifecycleGuard) FailHandshake() {
	g.move("Handshake", stateReady, stateInit)
}

// AcquireExecute moves Ready to Executing for the block at height.
// It blocks while a Commit is in progress.
func (g *LifecycleGuard) AcquireExecute(height uint64) {
	g.seqMu.Lock()
	if state := g.load(); state != stateReady {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("vesting: ExecuteBlock called in state %s (expected Ready)", state))
	}
	g.state.Store(uint32(stateExecuting))
	g.pending = height
}

// CompleteExecute moves Executing to Executed.
func (g *LifecycleGuard) CompleteExecute() {
	g.state.Store(uint32(stateExecuted))
	g.seqMu.Unlock()
}

// FailExecute moves Executing back to Ready so the block can be
// retried.
func (g *LifecycleGuard) FailExecute() {
	g.pending = 0
	g.state.Store(uint32(stateReady))
	g.seqMu.Unlock()
}

// AcquireCommit moves Executed to Committing.
func (g *LifecycleGuard) AcquireCommit() {
	g.seqMu.Lock()
	if state := g.load(); state != stateExecuted {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("vesting: Commit called in state %s (expected Executed)", state))
	}
	g.state.Store(uint32(stateCommitting))
}

// CompleteCommit records the executed height as committed and moves
// back to Ready.
func (g *LifecycleGuard) CompleteCommit() {
	g.committed.Store(g.pending)
	g.pending = 0
	g.state.Store(uint32(stateReady))
	g.seqMu.Unlock()
}

// CheckConcurrent panics unless the handshake has completed and the
// guard is not closed.
func (g *LifecycleGuard) CheckConcurrent() {
	if !g.open.Load() {
		if g.load() == stateClosed {
			panic("vesting: call after Close")
		}
		panic("vesting: concurrent call before Handshake completed")
	}
}

// IsReady reports whether the guard is in the Ready state.
func (g *LifecycleGuard) IsReady() bool {
	return g.load() == stateReady
}

// Close moves the guard to its terminal state. It waits for an
// in-flight ExecuteBlock or Commit and is idempotent.
func (g *LifecycleGuard) Close() {
	g.seqMu.Lock()
	defer g.seqMu.Unlock()
	g.open.Store(false)
	g.state.Store(uint32(stateClosed))
}
