package engine

import (
	"errors"
	"testing"
)

type stubEngine struct{ gt GameType }

func (s stubEngine) GameType() GameType                        { return s.gt }
func (s stubEngine) InitialState() string                      { return "" }
func (s stubEngine) SideToMove(string) (Side, error)           { return Side1, nil }
func (s stubEngine) IsLegalMove(string, string, Side) bool     { return false }
func (s stubEngine) Apply(state, move string) (string, error)  { return state, nil }
func (s stubEngine) Terminal(string) (Verdict, error)          { return Verdict{}, nil }

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(stubEngine{gt: GameTicTacToe})

	if _, err := r.Lookup(GameTicTacToe); err != nil {
		t.Fatalf("Lookup(tictactoe): %v", err)
	}
	if _, err := r.Lookup(GameXiangqi); !errors.Is(err, ErrUnsupportedGame) {
		t.Fatalf("Lookup(xiangqi) = %v, want ErrUnsupportedGame", err)
	}
}

func TestParseGameType(t *testing.T) {
	for in, want := range map[string]GameType{
		"chess":       GameChess,
		" Chess ":     GameChess,
		"tictactoe":   GameTicTacToe,
		"tic-tac-toe": GameTicTacToe,
		"xiangqi":     GameXiangqi,
	} {
		got, err := ParseGameType(in)
		if err != nil || got != want {
			t.Fatalf("ParseGameType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseGameType("go"); !errors.Is(err, ErrUnknownGameType) {
		t.Fatalf("ParseGameType(go) = %v, want ErrUnknownGameType", err)
	}
}

func TestSideOpponent(t *testing.T) {
	if Side1.Opponent() != Side2 || Side2.Opponent() != Side1 {
		t.Fatalf("Opponent mapping wrong")
	}
	if SideNone.Opponent() != SideNone {
		t.Fatalf("Opponent(none) should stay none")
	}
}
