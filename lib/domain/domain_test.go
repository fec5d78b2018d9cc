package domain

import (
	"testing"

	"github.com/guregu/null/v6"
)

func TestClone(t *testing.T) {
	orig := &Task{ID: "a", Name: "add", Runtime: null.FloatFrom(1), Fields: map[string]any{"k": "v"}}
	orig.Memo("x", func() any { return 1 })

	c := orig.Clone()
	c.Fields["k"] = "changed"
	c.Name = "sub"

	if orig.Fields["k"] != "v" || orig.Name != "add" {
		t.Fatalf("clone shares state with original: %+v", orig)
	}
	if c.Runtime != orig.Runtime {
		t.Errorf("expected runtime %v, got %v", orig.Runtime, c.Runtime)
	}
	calls := 0
	c.Memo("x", func() any { calls++; return 2 })
	if calls != 1 {
		t.Errorf("clone must not carry memoized values")
	}
}

func TestMemo(t *testing.T) {
	task := &Task{}
	calls := 0
	for range 3 {
		v := task.Memo("k", func() any { calls++; return "v" })
		if v != "v" {
			t.Fatalf("expected v, got %v", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected one computation, got %d", calls)
	}
}

func TestIsReady(t *testing.T) {
	for state, want := range map[string]bool{
		StateSuccess: true, StateFailure: true, StateRevoked: true,
		StatePending: false, StateStarted: false, StateRetry: false,
	} {
		if got := IsReady(state); got != want {
			t.Errorf("IsReady(%s) = %v, want %v", state, got, want)
		}
	}
}
