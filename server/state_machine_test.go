package server

import (
	"strings"
	"testing"
	"time"
)

func ready() *LifecycleGuard {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(0)
	return g
}

func TestLifecycleGuard_Cycles(t *testing.T) {
	g := NewLifecycleGuard()
	if g.State() != "Init" {
		t.Fatalf("expected Init, got %s", g.State())
	}
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	for height := uint64(1); height <= 3; height++ {
		if !g.IsReady() {
			t.Fatalf("height %d: expected Ready, got %s", height, g.State())
		}
		g.AcquireExecute(height)
		if g.State() != "Executing" {
			t.Fatalf("height %d: expected Executing, got %s", height, g.State())
		}
		g.CompleteExecute()
		if g.State() != "Executed" {
			t.Fatalf("height %d: expected Executed, got %s", height, g.State())
		}
		if g.Height() != height-1 {
			t.Fatalf("height %d: committed %d before Commit", height, g.Height())
		}
		g.AcquireCommit()
		g.CompleteCommit()
		if g.Height() != height {
			t.Fatalf("height %d: committed %d after Commit", height, g.Height())
		}
	}
	if !g.IsReady() {
		t.Fatalf("expected Ready after commits, got %s", g.State())
	}
}

func TestLifecycleGuard_RestartHeight(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(41)
	if g.Height() != 41 {
		t.Fatalf("expected height 41 after handshake, got %d", g.Height())
	}

	g.AcquireExecute(42)
	g.FailExecute()
	if g.Height() != 41 {
		t.Fatalf("failed execute moved height to %d", g.Height())
	}
}

func TestLifecycleGuard_Misuse(t *testing.T) {
	executed := func() *LifecycleGuard {
		g := ready()
		g.AcquireExecute(1)
		g.CompleteExecute()
		return g
	}
	closed := func() *LifecycleGuard {
		g := ready()
		g.Close()
		return g
	}
	execute := func(g *LifecycleGuard) { g.AcquireExecute(1) }

	tests := []struct {
		name  string
		setup func() *LifecycleGuard
		call  func(*LifecycleGuard)
		want  string
	}{
		{
			name:  "concurrent call before handshake",
			setup: NewLifecycleGuard,
			call:  (*LifecycleGuard).CheckConcurrent,
			want:  "before Handshake",
		},
		{
			name:  "second handshake",
			setup: ready,
			call:  (*LifecycleGuard).AcquireHandshake,
			want:  "Handshake called in state Ready (expected Init)",
		},
		{
			name:  "commit without execute",
			setup: ready,
			call:  (*LifecycleGuard).AcquireCommit,
			want:  "Commit called in state Ready",
		},
		{
			name:  "execute twice",
			setup: executed,
			call:  execute,
			want:  "ExecuteBlock called in state Executed",
		},
		{
			name:  "execute before handshake",
			setup: NewLifecycleGuard,
			call:  execute,
			want:  "ExecuteBlock called in state Init",
		},
		{
			name:  "concurrent call after close",
			setup: closed,
			call:  (*LifecycleGuard).CheckConcurrent,
			want:  "after Close",
		},
		{
			name:  "execute after close",
			setup: closed,
			call:  execute,
			want:  "ExecuteBlock called in state Closed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.setup()
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				msg, _ := r.(string)
				if !strings.HasPrefix(msg, "vesting: ") || !strings.Contains(msg, tt.want) {
					t.Fatalf("panic %q, want it to mention %q", msg, tt.want)
				}
			}()
			tt.call(g)
		})
	}
}

func TestLifecycleGuard_Rollback(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.FailHandshake()
	if g.State() != "Init" {
		t.Fatalf("expected Init after failed handshake, got %s", g.State())
	}

	g.AcquireHandshake()
	g.CompleteHandshake(0)
	g.CheckConcurrent()

	g.AcquireExecute(1)
	g.FailExecute()
	if !g.IsReady() {
		t.Fatalf("expected Ready after failed execute, got %s", g.State())
	}

	// A failed execution can be retried.
	g.AcquireExecute(1)
	g.CompleteExecute()
	g.AcquireCommit()
	g.CompleteCommit()
	if g.Height() != 1 {
		t.Fatalf("expected height 1, got %d", g.Height())
	}
}

func TestLifecycleGuard_CloseWaitsForExecute(t *testing.T) {
	g := ready()
	g.AcquireExecute(1)

	closed := make(chan struct{})
	go func() {
		g.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while ExecuteBlock was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	g.CompleteExecute()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after ExecuteBlock completed")
	}
	if g.State() != "Closed" {
		t.Fatalf("expected Closed, got %s", g.State())
	}

	// Closing twice is harmless.
	g.Close()
}
