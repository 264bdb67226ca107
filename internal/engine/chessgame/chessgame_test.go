package chessgame

import (
	"testing"

	"github.com/hanj724/arcade-live/internal/engine"
)

func TestFoolsMate(t *testing.T) {
	e := New()
	state := e.InitialState()
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		next, err := e.Apply(state, mv)
		if err != nil {
			t.Fatalf("Apply(%q) on %q: %v", mv, state, err)
		}
		state = next
	}
	if state != "f2f3 e7e5 g2g4 d8h4" {
		t.Fatalf("unexpected move list %q", state)
	}
	v, err := e.Terminal(state)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !v.Over || v.Winner != engine.Side2 {
		t.Fatalf("expected Win(side2) by checkmate, got %+v", v)
	}
	if e.IsLegalMove(state, "a2a3", engine.Side1) {
		t.Fatalf("move accepted after checkmate")
	}
}

func TestTurnAndLegality(t *testing.T) {
	e := New()
	side, err := e.SideToMove("")
	if err != nil || side != engine.Side1 {
		t.Fatalf("SideToMove(initial) = %v, %v", side, err)
	}

	state, err := e.Apply("", "e2e4")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	side, err = e.SideToMove(state)
	if err != nil || side != engine.Side2 {
		t.Fatalf("SideToMove after one move = %v, %v", side, err)
	}

	if e.IsLegalMove(state, "d2d4", engine.Side1) {
		t.Fatalf("out-of-turn move accepted")
	}
	if e.IsLegalMove(state, "e7e6", engine.Side1) {
		t.Fatalf("move for the wrong seat accepted")
	}
	if !e.IsLegalMove(state, "e7e5", engine.Side2) {
		t.Fatalf("legal reply rejected")
	}
	if e.IsLegalMove(state, "e1e3", engine.Side2) {
		t.Fatalf("impossible move accepted")
	}
}

func TestSANAccepted(t *testing.T) {
	e := New()
	state, err := e.Apply("", "Nf3")
	if err != nil {
		t.Fatalf("Apply(Nf3): %v", err)
	}
	// SAN input is normalized to UCI in the stored move list
	if state != "g1f3" {
		t.Fatalf("expected g1f3, got %q", state)
	}
}

func TestBadStateRejected(t *testing.T) {
	e := New()
	if _, err := e.SideToMove("e2e4 e2e4"); err == nil {
		t.Fatalf("replay of illegal history should fail")
	}
	if _, err := e.Apply("zz9x", "e2e4"); err == nil {
		t.Fatalf("garbage state accepted")
	}
}

func TestApplyRejectsIllegal(t *testing.T) {
	e := New()
	if _, err := e.Apply("", "e2e5"); err == nil {
		t.Fatalf("illegal opening move accepted")
	}
}
