package engine

import "testing"

func TestGuard_TryEnterAndLeave(t *testing.T) {
	g := NewGuard()

	if !g.TryEnter("ctl-1") {
		t.Fatal("first entry should succeed")
	}
	if id, ok := g.Holding(); !ok || id != "ctl-1" {
		t.Errorf("slot = (%q, %v), want (ctl-1, true)", id, ok)
	}

	// Same id while held: refused.
	if g.TryEnter("ctl-1") {
		t.Error("re-entry with the same id must be refused")
	}

	g.Leave()
	if _, ok := g.Holding(); ok {
		t.Error("slot should be empty after Leave")
	}
	if !g.TryEnter("ctl-1") {
		t.Error("entry after Leave should succeed")
	}
}

func TestGuard_DifferentIDNotBlocked(t *testing.T) {
	g := NewGuard()

	if !g.TryEnter("ctl-1") {
		t.Fatal("first entry should succeed")
	}
	// A different shop is not blocked by the single slot.
	if !g.TryEnter("ctl-2") {
		t.Error("different id should not be refused")
	}
	if id, _ := g.Holding(); id != "ctl-2" {
		t.Errorf("slot = %q, want ctl-2", id)
	}
}

func TestGuard_LeaveIsUnconditional(t *testing.T) {
	g := NewGuard()

	// Leave on an empty guard must be safe.
	g.Leave()

	g.TryEnter("ctl-1")
	g.Leave()
	g.Leave()
	if _, ok := g.Holding(); ok {
		t.Error("slot should stay empty")
	}
}
