package chessgame

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/hanj724/arcade-live/internal/engine"
)

// Engine wraps the corentings chess library behind the rule engine
// contract. State is the space-joined UCI move list; positions are
// always reconstructed from the start position by replay, never from
// FEN, so library-internal bookkeeping (repetition counts, the
// fifty-move rule) stays intact across serialize/deserialize.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) GameType() engine.GameType { return engine.GameChess }

func (e *Engine) InitialState() string { return "" }

func (e *Engine) SideToMove(state string) (engine.Side, error) {
	g, err := reconstruct(state)
	if err != nil {
		return engine.SideNone, err
	}
	if g.Position().Turn() == nchess.White {
		return engine.Side1, nil
	}
	return engine.Side2, nil
}

func (e *Engine) IsLegalMove(state, move string, side engine.Side) bool {
	g, err := reconstruct(state)
	if err != nil {
		return false
	}
	if g.Outcome() != nchess.NoOutcome {
		return false
	}
	turn := engine.Side1
	if g.Position().Turn() == nchess.Black {
		turn = engine.Side2
	}
	if side != turn {
		return false
	}
	return pushMove(g, move) == nil
}

func (e *Engine) Apply(state, move string) (string, error) {
	g, err := reconstruct(state)
	if err != nil {
		return "", err
	}
	if g.Outcome() != nchess.NoOutcome {
		return "", fmt.Errorf("%w: game already decided", engine.ErrIllegalMove)
	}
	if err := pushMove(g, move); err != nil {
		return "", fmt.Errorf("%w: %q", engine.ErrIllegalMove, move)
	}
	moves := g.Moves()
	last := moves[len(moves)-1]
	uci := last.String()
	if state == "" {
		return uci, nil
	}
	return state + " " + uci, nil
}

func (e *Engine) Terminal(state string) (engine.Verdict, error) {
	g, err := reconstruct(state)
	if err != nil {
		return engine.Verdict{}, err
	}
	switch g.Outcome() {
	case nchess.WhiteWon:
		return engine.Verdict{Over: true, Winner: engine.Side1}, nil
	case nchess.BlackWon:
		return engine.Verdict{Over: true, Winner: engine.Side2}, nil
	case nchess.Draw:
		return engine.Verdict{Over: true, Draw: true}, nil
	}
	return engine.Verdict{}, nil
}

// pushMove tries UCI first, then SAN as entered by a human.
func pushMove(g *nchess.Game, move string) error {
	raw := strings.TrimSpace(move)
	if raw == "" {
		return engine.ErrIllegalMove
	}
	if err := g.PushNotationMove(strings.ToLower(raw), nchess.UCINotation{}, nil); err == nil {
		return nil
	}
	return g.PushNotationMove(raw, nchess.AlgebraicNotation{}, nil)
}

func reconstruct(state string) (*nchess.Game, error) {
	g := nchess.NewGame()
	for _, mv := range strings.Fields(state) {
		if err := g.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("%w: replay %q: %v", engine.ErrBadState, mv, err)
		}
	}
	return g, nil
}
