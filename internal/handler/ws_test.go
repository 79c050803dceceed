package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pitchside/league/internal/infra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T) (*httptest.Server, *infra.WSHub) {
	t.Helper()
	hub := infra.NewWSHub(noopLogger())
	h := NewWSHandler(hub, noopLogger())

	r := chi.NewRouter()
	r.Get("/ws/matches/{matchID}", h.MatchFeed)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMatchFeed_DeliversPublishedEvents(t *testing.T) {
	srv, hub := newWSServer(t)
	matchID := uuid.New()
	conn := dialWS(t, srv, "/ws/matches/"+matchID.String())

	// The subscriber joins its room after the handshake completes.
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.PublishToMatch(matchID.String(), "match.tick", map[string]int{"minute": 7})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg infra.WSMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "match.tick", msg.Event)
}

func TestMatchFeed_IgnoresOtherRooms(t *testing.T) {
	srv, hub := newWSServer(t)
	matchID := uuid.New()
	conn := dialWS(t, srv, "/ws/matches/"+matchID.String())

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.PublishToMatch(uuid.New().String(), "match.tick", map[string]int{"minute": 3})
	hub.PublishToMatch(matchID.String(), "match.finished", nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg infra.WSMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "match.finished", msg.Event, "foreign room traffic must not leak in")
}

func TestMatchFeed_LeavesRoomOnDisconnect(t *testing.T) {
	srv, hub := newWSServer(t)
	conn := dialWS(t, srv, "/ws/matches/"+uuid.New().String())

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestMatchFeed_InvalidMatchID(t *testing.T) {
	hub := infra.NewWSHub(noopLogger())
	h := NewWSHandler(hub, noopLogger())

	r := chi.NewRouter()
	r.Get("/ws/matches/{matchID}", h.MatchFeed)

	req := httptest.NewRequest(http.MethodGet, "/ws/matches/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
