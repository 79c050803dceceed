package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/infra"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second // must stay under wsPongWait
	wsReadLimit  = 512
	wsSendBuffer = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades subscribers onto the hub's match rooms.
type WSHandler struct {
	hub    *infra.WSHub
	logger *slog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *infra.WSHub, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// MatchFeed handles GET /ws/matches/{matchID}. The connection receives
// every event published to the match room (live, tick, finished) until
// either side closes. The feed is one-way; inbound frames are dropped.
func (h *WSHandler) MatchFeed(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	room := "match:" + matchID.String()
	sub := &infra.WSConn{ID: uuid.New().String(), Send: make(chan []byte, wsSendBuffer)}
	h.hub.Join(room, sub)
	h.logger.Info("websocket subscriber joined", "room", room, "conn_id", sub.ID)

	go h.writePump(conn, sub)
	h.readPump(conn, room, sub)
}

// writePump forwards room payloads to the peer and keeps the connection
// alive with pings. It exits when the hub closes the send channel or a
// write fails.
func (h *WSHandler) writePump(conn *websocket.Conn, sub *infra.WSConn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump blocks until the peer disconnects, then detaches the
// subscriber from its room.
func (h *WSHandler) readPump(conn *websocket.Conn, room string, sub *infra.WSConn) {
	defer func() {
		h.hub.Leave(room, sub.ID)
		conn.Close()
	}()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
