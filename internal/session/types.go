package session

import (
	"errors"
	"time"

	"github.com/hanj724/arcade-live/internal/engine"
)

// Status is the session lifecycle state. Transitions only run
// Waiting → Active → Completed; a completed session is a terminal
// read-only record.
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// End reasons recorded at completion.
const (
	EndCheckmate = "terminal" // natural terminal position per engine
	EndForfeit   = "forfeit"
	EndDraw      = "draw"
	EndReported  = "reported" // client-advised, engine-verified
)

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrPersistence     = errors.New("session persistence failure")
)

// Session is the live state of one two-player match. It is created
// Waiting by the invitation flow, mutated only by the coordinator
// while holding the session's lock, and immutable once Completed.
type Session struct {
	ID       string          `json:"id"`
	GameType engine.GameType `json:"game_type"`

	Player1ID   string `json:"player1_id"`
	Player1Name string `json:"player1_name,omitempty"`
	Player2ID   string `json:"player2_id"`
	Player2Name string `json:"player2_name,omitempty"`

	Status       Status `json:"status"`
	Player1Ready bool   `json:"player1_ready"`
	Player2Ready bool   `json:"player2_ready"`

	// State is the opaque serialized position; empty until the first
	// move. MoveSeq increments on every accepted move and lets the
	// coordinator discard replayed submissions.
	State   string `json:"state,omitempty"`
	MoveSeq int64  `json:"move_seq"`

	WinnerID  string `json:"winner_id,omitempty"`
	IsDraw    bool   `json:"is_draw,omitempty"`
	EndReason string `json:"end_reason,omitempty"`

	Player1RatingBefore int `json:"player1_rating_before,omitempty"`
	Player1RatingAfter  int `json:"player1_rating_after,omitempty"`
	Player2RatingBefore int `json:"player2_rating_before,omitempty"`
	Player2RatingAfter  int `json:"player2_rating_after,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns an independent copy; Session has no reference fields.
func (s *Session) Clone() *Session {
	cp := *s
	return &cp
}

func (s *Session) IsPlayer(userID string) bool {
	return userID != "" && (userID == s.Player1ID || userID == s.Player2ID)
}

// SideOf maps a participant to a seat; Side1 is player1 by creation
// order (first color/symbol per game convention).
func (s *Session) SideOf(userID string) engine.Side {
	switch userID {
	case s.Player1ID:
		return engine.Side1
	case s.Player2ID:
		return engine.Side2
	}
	return engine.SideNone
}

// PlayerBySide is the inverse of SideOf.
func (s *Session) PlayerBySide(side engine.Side) string {
	switch side {
	case engine.Side1:
		return s.Player1ID
	case engine.Side2:
		return s.Player2ID
	}
	return ""
}

func (s *Session) NameOf(userID string) string {
	switch userID {
	case s.Player1ID:
		if s.Player1Name != "" {
			return s.Player1Name
		}
	case s.Player2ID:
		if s.Player2Name != "" {
			return s.Player2Name
		}
	}
	return userID
}

func (s *Session) ReadyOf(userID string) bool {
	switch userID {
	case s.Player1ID:
		return s.Player1Ready
	case s.Player2ID:
		return s.Player2Ready
	}
	return false
}

func (s *Session) OpponentOf(userID string) string {
	switch userID {
	case s.Player1ID:
		return s.Player2ID
	case s.Player2ID:
		return s.Player1ID
	}
	return ""
}
