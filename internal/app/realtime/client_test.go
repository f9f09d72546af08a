package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// presenceServer hosts a minimal WebSocket endpoint wired to a shared Registry, the
// same way the HTTP handler does it: upgrade, start the write pump, join, then run
// the read pump on the request goroutine.
func presenceServer(t *testing.T, reg *Registry, room uuid.UUID) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("username")
		if username == "" {
			http.Error(w, "missing username", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}

		occ := NewOccupant(uuid.New(), username)
		client := NewClient(reg, conn, occ)

		go client.WritePump()
		reg.Join(room, occ)
		client.ReadPump()
	}))
}

func dialPresence(t *testing.T, srv *httptest.Server, username string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?username=" + username
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(payload)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	var ev Event
	if err := json.Unmarshal([]byte(readText(t, conn)), &ev); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	return ev
}

func TestConnectionReceivesRoomState(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()
	srv := presenceServer(t, reg, room)
	defer srv.Close()

	conn := dialPresence(t, srv, "first")
	defer conn.Close()

	ev := readEvent(t, conn)
	if ev.Type != TypeRoomState {
		t.Fatalf("expected room_state on connect, got %q", ev.Type)
	}
	if len(ev.Users) != 0 {
		t.Fatalf("expected empty occupant list, got %v", ev.Users)
	}
}

func TestHeartbeatProbeGetsReply(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()
	srv := presenceServer(t, reg, room)
	defer srv.Close()

	conn := dialPresence(t, srv, "pinger")
	defer conn.Close()

	readEvent(t, conn) // room_state

	before := reg.Occupants(room)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(HeartbeatProbe)); err != nil {
		t.Fatalf("failed to send probe: %v", err)
	}

	if got := readText(t, conn); got != HeartbeatReply {
		t.Fatalf("expected %q, got %q", HeartbeatReply, got)
	}

	// Heartbeats must not touch presence state.
	after := reg.Occupants(room)
	if len(before) != len(after) {
		t.Fatalf("heartbeat changed occupancy: %v -> %v", before, after)
	}
}

func TestUnknownFramesAreIgnored(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()
	srv := presenceServer(t, reg, room)
	defer srv.Close()

	conn := dialPresence(t, srv, "chatty")
	defer conn.Close()

	readEvent(t, conn) // room_state

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json at all {{{")); err != nil {
		t.Fatalf("failed to send garbage: %v", err)
	}

	// The connection survives: a heartbeat probe still gets its reply.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(HeartbeatProbe)); err != nil {
		t.Fatalf("failed to send probe: %v", err)
	}
	if got := readText(t, conn); got != HeartbeatReply {
		t.Fatalf("connection should survive malformed input, got %q", got)
	}
}

func TestDisconnectBroadcastsUserLeft(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()
	srv := presenceServer(t, reg, room)
	defer srv.Close()

	stayer := dialPresence(t, srv, "stayer")
	defer stayer.Close()
	readEvent(t, stayer) // room_state

	leaver := dialPresence(t, srv, "leaver")
	readEvent(t, leaver) // room_state

	joined := readEvent(t, stayer)
	if joined.Type != TypeUserJoined || joined.Username != "leaver" {
		t.Fatalf("expected user_joined leaver, got %+v", joined)
	}

	if err := leaver.Close(); err != nil {
		t.Fatalf("failed to close leaver: %v", err)
	}

	left := readEvent(t, stayer)
	if left.Type != TypeUserLeft || left.Username != "leaver" {
		t.Fatalf("expected user_left leaver, got %+v", left)
	}
}
