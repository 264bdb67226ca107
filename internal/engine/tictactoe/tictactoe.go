package tictactoe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hanj724/arcade-live/internal/engine"
)

// Engine is the reference rule engine: a 3x3 grid serialized as nine
// cells of 'X', 'O' or '-' in row-major order. Side1 plays X and moves
// first; the side to move is derived from the mark counts, so the
// serialized state carries no extra bookkeeping.
type Engine struct{}

func New() *Engine { return &Engine{} }

const emptyBoard = "---------"

func (e *Engine) GameType() engine.GameType { return engine.GameTicTacToe }

func (e *Engine) InitialState() string { return emptyBoard }

func (e *Engine) SideToMove(state string) (engine.Side, error) {
	b, err := parse(state)
	if err != nil {
		return engine.SideNone, err
	}
	x, o := b.counts()
	if x == o {
		return engine.Side1, nil
	}
	return engine.Side2, nil
}

func (e *Engine) IsLegalMove(state, move string, side engine.Side) bool {
	b, err := parse(state)
	if err != nil {
		return false
	}
	turn, _ := e.SideToMove(state)
	if side != turn {
		return false
	}
	if v, _ := e.Terminal(state); v.Over {
		return false
	}
	idx, err := parseMove(move)
	if err != nil {
		return false
	}
	return b[idx] == '-'
}

func (e *Engine) Apply(state, move string) (string, error) {
	b, err := parse(state)
	if err != nil {
		return "", err
	}
	turn, err := e.SideToMove(state)
	if err != nil {
		return "", err
	}
	if !e.IsLegalMove(state, move, turn) {
		return "", fmt.Errorf("%w: %q", engine.ErrIllegalMove, move)
	}
	idx, err := parseMove(move)
	if err != nil {
		return "", fmt.Errorf("%w: %q", engine.ErrIllegalMove, move)
	}
	mark := byte('X')
	if turn == engine.Side2 {
		mark = 'O'
	}
	b[idx] = mark
	return string(b[:]), nil
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

func (e *Engine) Terminal(state string) (engine.Verdict, error) {
	b, err := parse(state)
	if err != nil {
		return engine.Verdict{}, err
	}
	for _, ln := range lines {
		m := b[ln[0]]
		if m != '-' && b[ln[1]] == m && b[ln[2]] == m {
			winner := engine.Side1
			if m == 'O' {
				winner = engine.Side2
			}
			return engine.Verdict{Over: true, Winner: winner}, nil
		}
	}
	x, o := b.counts()
	if x+o == 9 {
		return engine.Verdict{Over: true, Draw: true}, nil
	}
	return engine.Verdict{}, nil
}

type board [9]byte

func parse(state string) (board, error) {
	var b board
	if state == "" {
		state = emptyBoard
	}
	if len(state) != 9 {
		return b, fmt.Errorf("%w: want 9 cells, got %d", engine.ErrBadState, len(state))
	}
	for i := 0; i < 9; i++ {
		c := state[i]
		if c != 'X' && c != 'O' && c != '-' {
			return b, fmt.Errorf("%w: cell %d = %q", engine.ErrBadState, i, c)
		}
		b[i] = c
	}
	x, o := b.counts()
	if o > x || x > o+1 {
		return b, fmt.Errorf("%w: mark counts X=%d O=%d", engine.ErrBadState, x, o)
	}
	return b, nil
}

func (b board) counts() (x, o int) {
	for _, c := range b {
		switch c {
		case 'X':
			x++
		case 'O':
			o++
		}
	}
	return
}

// parseMove accepts "r,c" coordinates or a single cell index "0".."8".
func parseMove(move string) (int, error) {
	move = strings.TrimSpace(move)
	if r, c, ok := strings.Cut(move, ","); ok {
		ri, err := strconv.Atoi(strings.TrimSpace(r))
		if err != nil {
			return 0, err
		}
		ci, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return 0, err
		}
		if ri < 0 || ri > 2 || ci < 0 || ci > 2 {
			return 0, fmt.Errorf("cell out of range: %s", move)
		}
		return ri*3 + ci, nil
	}
	idx, err := strconv.Atoi(move)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx > 8 {
		return 0, fmt.Errorf("cell out of range: %s", move)
	}
	return idx, nil
}
