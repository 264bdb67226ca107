package tictactoe

import (
	"testing"

	"github.com/hanj724/arcade-live/internal/engine"
)

func TestSweepTopRowWins(t *testing.T) {
	e := New()
	state := e.InitialState()

	// player1 sweeps the top row, player2 interleaves elsewhere
	moves := []string{"0,0", "1,0", "0,1", "1,1", "0,2"}
	for i, mv := range moves {
		side := engine.Side1
		if i%2 == 1 {
			side = engine.Side2
		}
		turn, err := e.SideToMove(state)
		if err != nil {
			t.Fatalf("SideToMove(%q): %v", state, err)
		}
		if turn != side {
			t.Fatalf("move %d: expected side %v to move, got %v", i, side, turn)
		}
		if !e.IsLegalMove(state, mv, side) {
			t.Fatalf("move %d rejected: %q on %q", i, mv, state)
		}
		next, err := e.Apply(state, mv)
		if err != nil {
			t.Fatalf("Apply(%q, %q): %v", state, mv, err)
		}
		state = next
	}

	v, err := e.Terminal(state)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !v.Over || v.Draw || v.Winner != engine.Side1 {
		t.Fatalf("expected Win(side1), got %+v (state %q)", v, state)
	}
}

func TestDrawWhenBoardFull(t *testing.T) {
	e := New()
	// X O X / X X O / O X O — no three in a row
	state := "XOXXXOOXO"
	v, err := e.Terminal(state)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !v.Over || !v.Draw {
		t.Fatalf("expected draw, got %+v", v)
	}
}

func TestIllegalMoves(t *testing.T) {
	e := New()
	state, err := e.Apply(e.InitialState(), "1,1")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if e.IsLegalMove(state, "1,1", engine.Side2) {
		t.Fatalf("occupied cell accepted")
	}
	if e.IsLegalMove(state, "0,0", engine.Side1) {
		t.Fatalf("out-of-turn move accepted")
	}
	if e.IsLegalMove(state, "3,0", engine.Side2) {
		t.Fatalf("out-of-range cell accepted")
	}
	if e.IsLegalMove(state, "banana", engine.Side2) {
		t.Fatalf("garbage move accepted")
	}
	if _, err := e.Apply(state, "1,1"); err == nil {
		t.Fatalf("Apply on occupied cell should fail")
	}
}

func TestNoMoveAfterTerminal(t *testing.T) {
	e := New()
	state := "XXXOO----"
	v, _ := e.Terminal(state)
	if !v.Over || v.Winner != engine.Side1 {
		t.Fatalf("fixture not terminal: %+v", v)
	}
	if e.IsLegalMove(state, "2,2", engine.Side2) {
		t.Fatalf("move accepted on decided game")
	}
}

func TestStateRoundTrip(t *testing.T) {
	e := New()
	state := e.InitialState()
	for _, mv := range []string{"0,0", "2,2", "0,1"} {
		next, err := e.Apply(state, mv)
		if err != nil {
			t.Fatalf("Apply(%q): %v", mv, err)
		}
		state = next
	}

	// the serialized string is the state; re-reading it must preserve
	// side-to-move and the verdict
	side1, err := e.SideToMove(state)
	if err != nil {
		t.Fatalf("SideToMove: %v", err)
	}
	v1, err := e.Terminal(state)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	copied := string([]byte(state))
	side2, _ := e.SideToMove(copied)
	v2, _ := e.Terminal(copied)
	if side1 != side2 || v1 != v2 {
		t.Fatalf("round-trip mismatch: side %v vs %v, verdict %+v vs %+v", side1, side2, v1, v2)
	}
}

func TestMalformedState(t *testing.T) {
	e := New()
	for _, bad := range []string{"XX", "ABCDEFGHI", "OOOOOOOOO"} {
		if _, err := e.SideToMove(bad); err == nil {
			t.Fatalf("SideToMove accepted malformed state %q", bad)
		}
	}
}

func TestMoveIndexNotation(t *testing.T) {
	e := New()
	state, err := e.Apply(e.InitialState(), "4")
	if err != nil {
		t.Fatalf("Apply(4): %v", err)
	}
	if state != "----X----" {
		t.Fatalf("unexpected state %q", state)
	}
}
