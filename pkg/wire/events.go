package wire

// Client-to-server event types.
const (
	EvJoin     = "join"
	EvReady    = "ready"
	EvMove     = "move"
	EvForfeit  = "forfeit"
	EvGameOver = "gameOver"
)

// Server-to-room event types.
const (
	EvInitGame        = "initGame"
	EvPlayerReady     = "playerReady"
	EvGameStart       = "gameStart"
	EvMoveApplied     = "move"
	EvOpponentForfeit = "opponentForfeit"
	EvGameOverStats   = "gameOverStats"
	EvError           = "error"
)

// ClientEvent is a single inbound frame. Type selects which optional
// fields are meaningful.
type ClientEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Move      string `json:"move,omitempty"`
	// StateHint carries the client's view of the move sequence number;
	// absent means the client offers no hint.
	StateHint *int64 `json:"state_hint,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
}

// NoHint marks a move submission that carries no sequence hint.
const NoHint int64 = -1

// ServerEvent is a single outbound frame. Exactly one payload pointer
// is set according to Type.
type ServerEvent struct {
	Type    string        `json:"type"`
	Init    *InitGame     `json:"init,omitempty"`
	Ready   *PlayerReady  `json:"ready,omitempty"`
	Move    *MoveApplied  `json:"move,omitempty"`
	Forfeit *ForfeitNote  `json:"forfeit,omitempty"`
	Stats   *GameOverStats `json:"stats,omitempty"`
	Error   *ErrorNote    `json:"error,omitempty"`
}

// InitGame is the full resync snapshot pushed to a (re)joining
// connection instead of replaying history.
type InitGame struct {
	SessionID    string `json:"session_id"`
	GameType     string `json:"game_type"`
	Status       string `json:"status"`
	Player1ID    string `json:"player1_id"`
	Player2ID    string `json:"player2_id"`
	Player1Ready bool   `json:"player1_ready"`
	Player2Ready bool   `json:"player2_ready"`
	State        string `json:"state"`
	MoveSeq      int64  `json:"move_seq"`
	WinnerID     string `json:"winner_id,omitempty"`
	IsDraw       bool   `json:"is_draw,omitempty"`
}

type PlayerReady struct {
	UserID string `json:"user_id"`
}

type MoveApplied struct {
	UserID   string `json:"user_id"`
	Move     string `json:"move"`
	NewState string `json:"new_state"`
	MoveSeq  int64  `json:"move_seq"`
}

type ForfeitNote struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	Notice     string `json:"notice"`
}

// RatingLine is one player's rating snapshot at completion.
type RatingLine struct {
	UserID string `json:"user_id"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

type GameOverStats struct {
	WinnerID string     `json:"winner_id,omitempty"`
	IsDraw   bool       `json:"is_draw"`
	Notice   string     `json:"notice"`
	Player1  RatingLine `json:"player1"`
	Player2  RatingLine `json:"player2"`
}

type ErrorNote struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
