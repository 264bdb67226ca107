package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// GameType selects a rule engine implementation.
type GameType string

const (
	GameChess     GameType = "chess"
	GameXiangqi   GameType = "xiangqi"
	GameTicTacToe GameType = "tictactoe"
)

// ParseGameType normalizes a textual game type.
func ParseGameType(s string) (GameType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chess":
		return GameChess, nil
	case "xiangqi":
		return GameXiangqi, nil
	case "tictactoe", "tic-tac-toe":
		return GameTicTacToe, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGameType, s)
}

// Side identifies one of the two seats in a session. Side1 is always
// the first mover per game convention (white, X).
type Side int

const (
	SideNone Side = iota
	Side1
	Side2
)

func (s Side) String() string {
	switch s {
	case Side1:
		return "side1"
	case Side2:
		return "side2"
	}
	return "none"
}

// Opponent returns the other seat.
func (s Side) Opponent() Side {
	switch s {
	case Side1:
		return Side2
	case Side2:
		return Side1
	}
	return SideNone
}

// Verdict reports whether a position is terminal.
type Verdict struct {
	Over   bool
	Winner Side // set only for a decisive result
	Draw   bool
}

var (
	ErrUnknownGameType = errors.New("unknown game type")
	ErrUnsupportedGame = errors.New("no engine registered for game type")
	ErrBadState        = errors.New("malformed position state")
	ErrIllegalMove     = errors.New("illegal move")
)

// Engine is the per-game rule capability the coordinator is written
// against. State is an opaque compact string; an empty string means
// the initial position of the game.
type Engine interface {
	GameType() GameType
	InitialState() string
	SideToMove(state string) (Side, error)
	IsLegalMove(state, move string, side Side) bool
	Apply(state, move string) (string, error)
	Terminal(state string) (Verdict, error)
}

// Registry maps game types to engines. Register at startup, Lookup on
// every session touch.
type Registry struct {
	mu      sync.RWMutex
	engines map[GameType]Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[GameType]Engine)}
}

func (r *Registry) Register(e Engine) {
	if e == nil {
		return
	}
	r.mu.Lock()
	r.engines[e.GameType()] = e
	r.mu.Unlock()
}

func (r *Registry) Lookup(gt GameType) (Engine, error) {
	r.mu.RLock()
	e, ok := r.engines[gt]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGame, gt)
	}
	return e, nil
}
