package coordinator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanj724/arcade-live/internal/engine"
	"github.com/hanj724/arcade-live/internal/msgcat"
	"github.com/hanj724/arcade-live/internal/obslog"
	"github.com/hanj724/arcade-live/internal/rating"
	"github.com/hanj724/arcade-live/internal/room"
	"github.com/hanj724/arcade-live/internal/session"
	"github.com/hanj724/arcade-live/pkg/wire"
)

// Rejection errors are reported to the submitting connection only;
// they never mutate the session and never broadcast.
var (
	ErrNotParticipant = errf("user is not a session participant")
	ErrNotActive      = errf("session is not active")
	ErrNotYourTurn    = errf("not your turn")
	ErrIllegalMove    = errf("illegal move")
	ErrStaleMove      = errf("stale move submission")
	ErrInvalidInput   = errf("invalid arguments")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

// Coordinator owns the session lifecycle: ready handshake, turn
// discipline, forfeit and terminal detection, and the rating update.
// All mutation of one session happens under that session's lock inside
// store.Update; operations on different sessions run in parallel.
type Coordinator struct {
	engines *engine.Registry
	store   *session.Store
	hub     *room.Hub
	elo     *rating.Updater
	repo    session.Repository
	cat     *msgcat.Catalog
}

func New(engines *engine.Registry, store *session.Store, hub *room.Hub, elo *rating.Updater, repo session.Repository, cat *msgcat.Catalog) *Coordinator {
	return &Coordinator{engines: engines, store: store, hub: hub, elo: elo, repo: repo, cat: cat}
}

// CreateParams is what the invitation/CRUD layer supplies when it
// creates the session row, before any socket traffic is possible.
type CreateParams struct {
	ID          string
	GameType    string
	Player1ID   string
	Player1Name string
	Player2ID   string
	Player2Name string
}

// CreateSession registers a fresh Waiting session. The id is assigned
// by the caller's invitation flow; one is generated when absent.
func (c *Coordinator) CreateSession(ctx context.Context, p CreateParams) (*session.Session, error) {
	gt, err := engine.ParseGameType(p.GameType)
	if err != nil {
		return nil, err
	}
	if _, err := c.engines.Lookup(gt); err != nil {
		return nil, err
	}
	p1 := strings.TrimSpace(p.Player1ID)
	p2 := strings.TrimSpace(p.Player2ID)
	if p1 == "" || p2 == "" || p1 == p2 {
		return nil, ErrInvalidInput
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = uuid.NewString()
	}
	sess := &session.Session{
		ID:          id,
		GameType:    gt,
		Player1ID:   p1,
		Player1Name: strings.TrimSpace(p.Player1Name),
		Player2ID:   p2,
		Player2Name: strings.TrimSpace(p.Player2Name),
		Status:      session.StatusWaiting,
		CreatedAt:   time.Now(),
	}
	if err := c.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	obslog.L().Info("session_create",
		zap.String("session_id", sess.ID),
		zap.String("game_type", string(gt)),
		zap.String("player1_id", p1),
		zap.String("player2_id", p2),
	)
	return sess.Clone(), nil
}

// Join binds a connection into the session's room and always answers
// with a full resync snapshot, so a reconnecting client rebuilds its
// board from state instead of replaying moves. Safe to call on every
// reconnect.
func (c *Coordinator) Join(ctx context.Context, sessionID, userID string, conn room.Conn) error {
	sess, err := c.store.Snapshot(ctx, sessionID)
	if err != nil {
		obslog.L().Warn("join_unknown_session", zap.String("session_id", sessionID), zap.String("user_id", userID))
		return err
	}
	if !sess.IsPlayer(userID) {
		obslog.L().Warn("join_refused",
			zap.String("session_id", sessionID),
			zap.String("user_id", userID),
		)
		return ErrNotParticipant
	}
	c.hub.Join(sessionID, conn)
	conn.Send(initEvent(sess))
	obslog.L().Info("session_join",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.String("conn_id", conn.ID()),
	)
	return nil
}

// Leave drops a connection from the room. Disconnection is never an
// error and never mutates the session.
func (c *Coordinator) Leave(sessionID, connID string) {
	c.hub.Leave(sessionID, connID)
}

// SetReady flips the caller's ready flag. Duplicate calls and calls on
// a non-Waiting session are no-ops. Both flags up moves the session to
// Active and announces the start to the room.
func (c *Coordinator) SetReady(ctx context.Context, sessionID, userID string) error {
	var started, flipped bool
	err := c.store.Update(ctx, sessionID, func(s *session.Session) (bool, error) {
		if !s.IsPlayer(userID) {
			return false, ErrNotParticipant
		}
		if s.Status != session.StatusWaiting {
			obslog.L().Debug("ready_ignored",
				zap.String("session_id", sessionID),
				zap.String("user_id", userID),
				zap.String("status", string(s.Status)),
			)
			return false, nil
		}
		if s.ReadyOf(userID) {
			return false, nil
		}
		switch userID {
		case s.Player1ID:
			s.Player1Ready = true
		case s.Player2ID:
			s.Player2Ready = true
		}
		flipped = true
		if s.Player1Ready && s.Player2Ready {
			s.Status = session.StatusActive
			started = true
		}
		return true, nil
	})
	if err != nil || !flipped {
		return err
	}
	c.hub.Broadcast(sessionID, &wire.ServerEvent{Type: wire.EvPlayerReady, Ready: &wire.PlayerReady{UserID: userID}})
	if started {
		c.hub.Broadcast(sessionID, &wire.ServerEvent{Type: wire.EvGameStart})
		obslog.L().Info("session_start", zap.String("session_id", sessionID))
	}
	return nil
}

// SubmitMove validates and applies one move. A rejection leaves the
// session byte-for-byte unchanged and reaches only the caller; an
// accepted move is persisted before it is broadcast, and a terminal
// position completes the session before SubmitMove returns.
func (c *Coordinator) SubmitMove(ctx context.Context, sessionID, userID, move string, stateHint int64) error {
	var (
		applied *wire.MoveApplied
		done    *completion
	)
	err := c.store.Update(ctx, sessionID, func(s *session.Session) (bool, error) {
		if !s.IsPlayer(userID) {
			return false, ErrNotParticipant
		}
		if s.Status != session.StatusActive {
			return false, ErrNotActive
		}
		if stateHint != wire.NoHint && stateHint != s.MoveSeq {
			return false, ErrStaleMove
		}
		eng, err := c.engines.Lookup(s.GameType)
		if err != nil {
			return false, err
		}
		state := s.State
		if state == "" {
			state = eng.InitialState()
		}
		side, err := eng.SideToMove(state)
		if err != nil {
			return false, err
		}
		if s.PlayerBySide(side) != userID {
			return false, ErrNotYourTurn
		}
		if !eng.IsLegalMove(state, move, side) {
			return false, ErrIllegalMove
		}
		newState, err := eng.Apply(state, move)
		if err != nil {
			return false, ErrIllegalMove
		}
		s.State = newState
		s.MoveSeq++
		applied = &wire.MoveApplied{UserID: userID, Move: move, NewState: newState, MoveSeq: s.MoveSeq}

		verdict, err := eng.Terminal(newState)
		if err != nil {
			return false, err
		}
		if verdict.Over {
			reason := session.EndCheckmate
			if verdict.Draw {
				reason = session.EndDraw
			}
			done = c.complete(ctx, s, s.PlayerBySide(verdict.Winner), verdict.Draw, reason)
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	c.hub.Broadcast(sessionID, &wire.ServerEvent{Type: wire.EvMoveApplied, Move: applied})
	obslog.L().Info("session_move",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.Int64("move_seq", applied.MoveSeq),
	)
	c.finishBroadcast(ctx, sessionID, done)
	return nil
}

// Forfeit ends an Active session in the opponent's favor. On a
// Completed session it is a silent no-op: whichever of a forfeit and a
// winning move acquires the session lock first performs the
// transition; the other observes Completed.
func (c *Coordinator) Forfeit(ctx context.Context, sessionID, userID string) error {
	var (
		done    *completion
		forfeit *wire.ForfeitNote
	)
	err := c.store.Update(ctx, sessionID, func(s *session.Session) (bool, error) {
		if !s.IsPlayer(userID) {
			return false, ErrNotParticipant
		}
		switch s.Status {
		case session.StatusCompleted:
			obslog.L().Debug("forfeit_after_complete", zap.String("session_id", sessionID), zap.String("user_id", userID))
			return false, nil
		case session.StatusWaiting:
			return false, ErrNotActive
		}
		winnerID := s.OpponentOf(userID)
		done = c.complete(ctx, s, winnerID, false, session.EndForfeit)
		forfeit = &wire.ForfeitNote{
			WinnerID:   winnerID,
			WinnerName: s.NameOf(winnerID),
			Notice:     c.notice("game.forfeit", map[string]string{"Name": s.NameOf(userID)}, s.NameOf(userID)+" left the game"),
		}
		return true, nil
	})
	if err != nil || done == nil {
		return err
	}
	c.hub.Broadcast(sessionID, &wire.ServerEvent{Type: wire.EvOpponentForfeit, Forfeit: forfeit})
	obslog.L().Info("session_forfeit",
		zap.String("session_id", sessionID),
		zap.String("forfeiter", userID),
		zap.String("winner_id", forfeit.WinnerID),
	)
	c.finishBroadcast(ctx, sessionID, done)
	return nil
}

// DeclareGameOver handles a client-reported terminal detection. The
// report is advisory: the engine's terminal check is authoritative,
// and both clients reporting the same end is expected duplication —
// the first accepted report wins, later ones are no-ops.
func (c *Coordinator) DeclareGameOver(ctx context.Context, sessionID, userID, outcome string) error {
	var done *completion
	err := c.store.Update(ctx, sessionID, func(s *session.Session) (bool, error) {
		if !s.IsPlayer(userID) {
			return false, ErrNotParticipant
		}
		if s.Status != session.StatusActive {
			obslog.L().Debug("game_over_ignored",
				zap.String("session_id", sessionID),
				zap.String("user_id", userID),
				zap.String("status", string(s.Status)),
			)
			return false, nil
		}
		eng, err := c.engines.Lookup(s.GameType)
		if err != nil {
			return false, err
		}
		state := s.State
		if state == "" {
			state = eng.InitialState()
		}
		verdict, err := eng.Terminal(state)
		if err != nil {
			return false, err
		}
		if !verdict.Over {
			obslog.L().Warn("game_over_report_rejected",
				zap.String("session_id", sessionID),
				zap.String("user_id", userID),
				zap.String("claimed", outcome),
			)
			return false, nil
		}
		done = c.complete(ctx, s, s.PlayerBySide(verdict.Winner), verdict.Draw, session.EndReported)
		return true, nil
	})
	if err != nil || done == nil {
		return err
	}
	c.finishBroadcast(ctx, sessionID, done)
	return nil
}

// Snapshot exposes current session state to collaborators (profile
// display reads results back through this; the coordinator never
// initiates anything toward them).
func (c *Coordinator) Snapshot(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := c.store.Snapshot(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, session.ErrSessionNotFound) {
		// Live record may have expired; fall back to the archive.
		if archived, aerr := c.repo.GetResult(ctx, sessionID); aerr == nil && archived != nil {
			return archived, nil
		}
	}
	return nil, err
}

type completion struct {
	finalSession *session.Session
	stats        *wire.GameOverStats
}

// complete performs the one-way Active→Completed transition on the
// working copy. Caller holds the session lock; the store persists the
// copy before anything is broadcast. Invoked at most once per session
// because Completed is checked under the same lock.
func (c *Coordinator) complete(ctx context.Context, s *session.Session, winnerID string, isDraw bool, reason string) *completion {
	s.Status = session.StatusCompleted
	s.IsDraw = isDraw
	s.EndReason = reason
	if !isDraw {
		s.WinnerID = winnerID
	}

	r1 := c.ratingOf(ctx, s.Player1ID)
	r2 := c.ratingOf(ctx, s.Player2ID)
	outcome := rating.Drawn
	switch winnerID {
	case s.Player1ID:
		if !isDraw {
			outcome = rating.Player1Wins
		}
	case s.Player2ID:
		if !isDraw {
			outcome = rating.Player2Wins
		}
	}
	new1, new2 := c.elo.Update(r1, r2, outcome)
	s.Player1RatingBefore, s.Player1RatingAfter = r1, new1
	s.Player2RatingBefore, s.Player2RatingAfter = r2, new2

	notice := c.notice("game.draw", nil, "Game drawn")
	if !isDraw {
		notice = c.notice("game.win", map[string]string{"Name": s.NameOf(winnerID)}, s.NameOf(winnerID)+" wins")
	}
	return &completion{
		finalSession: s.Clone(),
		stats: &wire.GameOverStats{
			WinnerID: s.WinnerID,
			IsDraw:   isDraw,
			Notice:   notice,
			Player1:  wire.RatingLine{UserID: s.Player1ID, Before: r1, After: new1},
			Player2:  wire.RatingLine{UserID: s.Player2ID, Before: r2, After: new2},
		},
	}
}

// finishBroadcast archives the completed session and announces the
// summary. Archival is best-effort: the session record itself is
// already durable, so an archive error is logged, never surfaced as a
// rejection.
func (c *Coordinator) finishBroadcast(ctx context.Context, sessionID string, done *completion) {
	if done == nil {
		return
	}
	final := done.finalSession
	if err := c.repo.InsertResult(ctx, final); err != nil {
		obslog.L().Error("result_archive_error", zap.String("session_id", sessionID), zap.Error(err))
	}
	if err := c.repo.UpsertRating(ctx, final.Player1ID, final.Player1RatingAfter); err != nil {
		obslog.L().Error("rating_persist_error", zap.String("user_id", final.Player1ID), zap.Error(err))
	}
	if err := c.repo.UpsertRating(ctx, final.Player2ID, final.Player2RatingAfter); err != nil {
		obslog.L().Error("rating_persist_error", zap.String("user_id", final.Player2ID), zap.Error(err))
	}
	c.hub.Broadcast(sessionID, &wire.ServerEvent{Type: wire.EvGameOverStats, Stats: done.stats})
	obslog.L().Info("session_complete",
		zap.String("session_id", sessionID),
		zap.String("winner_id", final.WinnerID),
		zap.Bool("is_draw", final.IsDraw),
		zap.String("end_reason", final.EndReason),
	)
}

// ratingOf reads the player's current rating; archival-layer failures
// must not block completion, so errors fall back to the default.
func (c *Coordinator) ratingOf(ctx context.Context, userID string) int {
	r, err := c.repo.GetRating(ctx, userID)
	if err != nil {
		obslog.L().Error("rating_read_error", zap.String("user_id", userID), zap.Error(err))
		return session.DefaultRating
	}
	return r
}

func (c *Coordinator) notice(key string, data any, fallback string) string {
	if c.cat == nil {
		return fallback
	}
	out, err := c.cat.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}

func initEvent(s *session.Session) *wire.ServerEvent {
	return &wire.ServerEvent{
		Type: wire.EvInitGame,
		Init: &wire.InitGame{
			SessionID:    s.ID,
			GameType:     string(s.GameType),
			Status:       string(s.Status),
			Player1ID:    s.Player1ID,
			Player2ID:    s.Player2ID,
			Player1Ready: s.Player1Ready,
			Player2Ready: s.Player2Ready,
			State:        s.State,
			MoveSeq:      s.MoveSeq,
			WinnerID:     s.WinnerID,
			IsDraw:       s.IsDraw,
		},
	}
}
