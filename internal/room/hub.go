package room

import (
	"sync"

	"go.uber.org/zap"

	"github.com/hanj724/arcade-live/internal/obslog"
	"github.com/hanj724/arcade-live/pkg/wire"
)

// Conn is one live client connection. Send enqueues an event for
// in-order delivery on that socket and must never block: it reports
// false when the connection is dead or its queue is full, and the hub
// then drops the member so one stuck socket cannot stall a room.
type Conn interface {
	ID() string
	UserID() string
	Send(ev *wire.ServerEvent) bool
}

type member struct {
	conn Conn
}

// Hub maps a session id to the set of currently-connected sockets for
// its players. Multiple connections per user (tabs) are legitimate;
// coordination happens by player identity, not connection identity.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*member // sessionID → connID → member
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*member)}
}

func (h *Hub) Join(sessionID string, c Conn) {
	h.mu.Lock()
	r, ok := h.rooms[sessionID]
	if !ok {
		r = make(map[string]*member)
		h.rooms[sessionID] = r
	}
	r[c.ID()] = &member{conn: c}
	h.mu.Unlock()
	obslog.L().Debug("room_join",
		zap.String("session_id", sessionID),
		zap.String("conn_id", c.ID()),
		zap.String("user_id", c.UserID()),
	)
}

// Leave removes one connection; the session itself is untouched.
func (h *Hub) Leave(sessionID, connID string) {
	h.mu.Lock()
	if r, ok := h.rooms[sessionID]; ok {
		delete(r, connID)
		if len(r) == 0 {
			delete(h.rooms, sessionID)
		}
	}
	h.mu.Unlock()
	obslog.L().Debug("room_leave",
		zap.String("session_id", sessionID),
		zap.String("conn_id", connID),
	)
}

// Broadcast delivers ev to every connection in the room, origin
// included. Delivery is best-effort per connection: a member whose
// queue rejects the event is evicted and the rest still receive it.
func (h *Hub) Broadcast(sessionID string, ev *wire.ServerEvent) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.rooms[sessionID]))
	for _, m := range h.rooms[sessionID] {
		conns = append(conns, m.conn)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.Send(ev) {
			h.Leave(sessionID, c.ID())
			obslog.L().Warn("room_drop_slow_conn",
				zap.String("session_id", sessionID),
				zap.String("conn_id", c.ID()),
				zap.String("event", ev.Type),
			)
		}
	}
}

// Size reports the number of live connections in a room.
func (h *Hub) Size(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
