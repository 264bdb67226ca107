package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/hanj724/arcade-live/internal/coordinator"
	"github.com/hanj724/arcade-live/internal/obslog"
	"github.com/hanj724/arcade-live/internal/session"
	"github.com/hanj724/arcade-live/pkg/wire"
)

// Server accepts player websocket connections and turns inbound frames
// into coordinator calls. Each connection gets a read loop and a write
// loop; the coordinator's only side effect is outbound events, so the
// state machine never touches the transport directly.
type Server struct {
	coord     *coordinator.Coordinator
	queueSize int
}

func New(coord *coordinator.Coordinator, queueSize int) *Server {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Server{coord: coord, queueSize: queueSize}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		http.Error(w, "user query parameter required", http.StatusBadRequest)
		return
	}
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.Error(err))
		return
	}

	wc := newWSConn(c, userID, s.queueSize)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go wc.writeLoop(ctx)
	defer wc.close()

	obslog.L().Info("ws_connect", zap.String("conn_id", wc.ID()), zap.String("user_id", userID))

	for {
		var ev wire.ClientEvent
		if err := wsjson.Read(ctx, c, &ev); err != nil {
			break
		}
		s.dispatch(ctx, wc, &ev)
	}

	// Disconnection is not an error and mutates nothing: the session
	// stays as it was; only the room membership goes away.
	for _, sid := range wc.sessions() {
		s.coord.Leave(sid, wc.ID())
	}
	obslog.L().Info("ws_disconnect", zap.String("conn_id", wc.ID()), zap.String("user_id", userID))
}

func (s *Server) dispatch(ctx context.Context, wc *wsConn, ev *wire.ClientEvent) {
	sid := strings.TrimSpace(ev.SessionID)
	if sid == "" {
		s.reject(wc, "bad_request", "session_id required")
		return
	}
	var err error
	switch ev.Type {
	case wire.EvJoin:
		if err = s.coord.Join(ctx, sid, wc.UserID(), wc); err == nil {
			wc.track(sid)
		}
	case wire.EvReady:
		err = s.coord.SetReady(ctx, sid, wc.UserID())
	case wire.EvMove:
		hint := wire.NoHint
		if ev.StateHint != nil {
			hint = *ev.StateHint
		}
		err = s.coord.SubmitMove(ctx, sid, wc.UserID(), ev.Move, hint)
	case wire.EvForfeit:
		err = s.coord.Forfeit(ctx, sid, wc.UserID())
	case wire.EvGameOver:
		err = s.coord.DeclareGameOver(ctx, sid, wc.UserID(), ev.Outcome)
	default:
		s.reject(wc, "bad_request", "unknown event type: "+ev.Type)
		return
	}
	if err != nil {
		s.reject(wc, codeFor(err), err.Error())
	}
}

// reject answers the origin connection only; rejections are never
// broadcast.
func (s *Server) reject(wc *wsConn, code, msg string) {
	wc.Send(&wire.ServerEvent{Type: wire.EvError, Error: &wire.ErrorNote{Code: code, Message: msg}})
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, coordinator.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, coordinator.ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, coordinator.ErrStaleMove):
		return "stale_move"
	case errors.Is(err, coordinator.ErrNotActive):
		return "not_active"
	case errors.Is(err, coordinator.ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, session.ErrSessionNotFound):
		return "unknown_session"
	case errors.Is(err, session.ErrPersistence):
		return "rejected"
	default:
		return "rejected"
	}
}

// wsConn adapts one websocket to room.Conn. Outbound events flow
// through a buffered queue drained by a single writer goroutine, so
// delivery is ordered per socket and a backlogged peer rejects new
// events instead of blocking a broadcast.
type wsConn struct {
	id     string
	userID string
	conn   *websocket.Conn

	out chan *wire.ServerEvent

	mu     sync.Mutex
	joined map[string]struct{}
	closed bool
}

func newWSConn(c *websocket.Conn, userID string, queueSize int) *wsConn {
	return &wsConn{
		id:     uuid.NewString(),
		userID: userID,
		conn:   c,
		out:    make(chan *wire.ServerEvent, queueSize),
		joined: make(map[string]struct{}),
	}
}

func (w *wsConn) ID() string     { return w.id }
func (w *wsConn) UserID() string { return w.userID }

func (w *wsConn) Send(ev *wire.ServerEvent) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.mu.Unlock()
	select {
	case w.out <- ev:
		return true
	default:
		return false
	}
}

func (w *wsConn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.out:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(wctx, w.conn, ev)
			cancel()
			if err != nil {
				obslog.L().Debug("ws_write_error", zap.String("conn_id", w.id), zap.Error(err))
				return
			}
		}
	}
}

func (w *wsConn) track(sessionID string) {
	w.mu.Lock()
	w.joined[sessionID] = struct{}{}
	w.mu.Unlock()
}

func (w *wsConn) sessions() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.joined))
	for sid := range w.joined {
		out = append(out, sid)
	}
	return out
}

func (w *wsConn) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	_ = w.conn.Close(websocket.StatusNormalClosure, "bye")
}
