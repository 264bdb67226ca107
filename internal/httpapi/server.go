package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/hanj724/arcade-live/internal/coordinator"
	"github.com/hanj724/arcade-live/internal/engine"
	"github.com/hanj724/arcade-live/internal/obslog"
	"github.com/hanj724/arcade-live/internal/session"
)

// Server is the collaborator-facing HTTP surface: the invitation/CRUD
// layer creates the session row here before any socket traffic, and
// reads the final result back for profile display afterwards.
type Server struct {
	coord *coordinator.Coordinator
}

func New(coord *coordinator.Coordinator) *Server {
	return &Server{coord: coord}
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	return fasthttp.ListenAndServe(addr, s.Handler)
}

func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())
	switch {
	case method == fasthttp.MethodPost && path == "/v1/sessions":
		s.createSession(ctx)
	case method == fasthttp.MethodGet && strings.HasPrefix(path, "/v1/sessions/"):
		s.getSession(ctx, strings.TrimPrefix(path, "/v1/sessions/"))
	default:
		writeJSON(ctx, fasthttp.StatusNotFound, errBody("not_found", "no such route"))
	}
}

type createRequest struct {
	ID          string `json:"id,omitempty"`
	GameType    string `json:"game_type"`
	Player1ID   string `json:"player1_id"`
	Player1Name string `json:"player1_name,omitempty"`
	Player2ID   string `json:"player2_id"`
	Player2Name string `json:"player2_name,omitempty"`
}

func (s *Server) createSession(ctx *fasthttp.RequestCtx) {
	var req createRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, errBody("bad_request", "malformed JSON body"))
		return
	}
	sess, err := s.coord.CreateSession(context.Background(), coordinator.CreateParams{
		ID:          req.ID,
		GameType:    req.GameType,
		Player1ID:   req.Player1ID,
		Player1Name: req.Player1Name,
		Player2ID:   req.Player2ID,
		Player2Name: req.Player2Name,
	})
	switch {
	case err == nil:
		writeJSON(ctx, fasthttp.StatusCreated, sess)
	case errors.Is(err, session.ErrSessionExists):
		writeJSON(ctx, fasthttp.StatusConflict, errBody("exists", err.Error()))
	case errors.Is(err, engine.ErrUnknownGameType), errors.Is(err, engine.ErrUnsupportedGame),
		errors.Is(err, coordinator.ErrInvalidInput):
		writeJSON(ctx, fasthttp.StatusBadRequest, errBody("bad_request", err.Error()))
	default:
		obslog.L().Error("api_create_error", zap.Error(err))
		writeJSON(ctx, fasthttp.StatusInternalServerError, errBody("internal", "session create failed"))
	}
}

func (s *Server) getSession(ctx *fasthttp.RequestCtx, id string) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		writeJSON(ctx, fasthttp.StatusBadRequest, errBody("bad_request", "invalid session id"))
		return
	}
	sess, err := s.coord.Snapshot(context.Background(), id)
	switch {
	case err == nil:
		writeJSON(ctx, fasthttp.StatusOK, sess)
	case errors.Is(err, session.ErrSessionNotFound):
		writeJSON(ctx, fasthttp.StatusNotFound, errBody("unknown_session", "session not found"))
	default:
		obslog.L().Error("api_get_error", zap.String("session_id", id), zap.Error(err))
		writeJSON(ctx, fasthttp.StatusInternalServerError, errBody("internal", "session read failed"))
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	raw, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetBody(raw)
}

func errBody(code, msg string) map[string]string {
	return map[string]string{"error": code, "message": msg}
}
