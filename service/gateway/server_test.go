package gateway_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"EduProject/service/gateway"
	handler "EduProject/service/gateway/handler"
)

// stubAuth resolves the token itself as the identity, so tests dial with
// ?token=alice and land as alice.
type stubAuth struct{}

func (stubAuth) Verify(credential string) (string, error) {
	if credential == "" {
		return "", errors.New("missing token")
	}
	return credential, nil
}

func newTestGateway(t *testing.T) (*gateway.Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := gateway.NewServerWithConf("gw-test", stubAuth{}, gateway.Conf{
		HeartbeatTTL:  10 * time.Second,
		SweepEvery:    time.Hour,
		PingInterval:  time.Hour,
		WriteTimeout:  2 * time.Second,
		SendQueueSize: 64,
	})
	handler.RegisterAll(srv.Disp())
	srv.Start()

	r := gin.New()
	r.GET("/ws", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + user
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", user, err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, event string, payload map[string]any) {
	t.Helper()
	raw, _ := json.Marshal(map[string]any{"event": event, "payload": payload})
	if err := ws.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// waitFor reads frames until the wanted event arrives, skipping unrelated
// broadcasts that interleave.
func waitFor(t *testing.T, ws *websocket.Conn, event string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = ws.SetReadDeadline(deadline)
		_, raw, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		var out struct {
			Event string         `json:"event"`
			Data  map[string]any `json:"data"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("bad frame %q: %v", raw, err)
		}
		if out.Event == event {
			return out.Data
		}
	}
}

// assertSilent fails when any frame with the given event arrives shortly.
func assertSilent(t *testing.T, ws *websocket.Conn, event string) {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return // timeout is the pass case
		}
		var out struct {
			Event string `json:"event"`
		}
		_ = json.Unmarshal(raw, &out)
		if out.Event == event {
			t.Fatalf("unexpected %q frame", event)
		}
	}
}

func TestHandshakeRejectedWithoutToken(t *testing.T) {
	_, ts := newTestGateway(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial without token must fail")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("want 401, got %+v", resp)
	}
}

func TestPresenceTransitionsExactlyOnce(t *testing.T) {
	srv, ts := newTestGateway(t)

	a1 := dial(t, ts, "alice")
	if d := waitFor(t, a1, gateway.EvtConnectionSuccess); d["user"] != "alice" {
		t.Fatalf("connection_success: %v", d)
	}
	if d := waitFor(t, a1, gateway.EvtUserOnline); d["user"] != "alice" {
		t.Fatalf("user_online: %v", d)
	}

	// second tab: no second user_online anywhere
	a2 := dial(t, ts, "alice")
	waitFor(t, a2, gateway.EvtConnectionSuccess)
	assertSilent(t, a1, gateway.EvtUserOnline)

	b := dial(t, ts, "bob")
	waitFor(t, b, gateway.EvtConnectionSuccess)
	if d := waitFor(t, a1, gateway.EvtUserOnline); d["user"] != "bob" {
		t.Fatalf("expected bob online, got %v", d)
	}

	if !srv.IsUserOnline("alice") || !srv.IsUserOnline("bob") {
		t.Fatalf("both users should be online")
	}

	// first tab closes: alice still online, no user_offline
	_ = a1.Close()
	assertSilent(t, b, gateway.EvtUserOffline)
	if !srv.IsUserOnline("alice") {
		t.Fatalf("alice must stay online on one remaining tab")
	}

	// last tab closes: exactly one user_offline
	_ = a2.Close()
	if d := waitFor(t, b, gateway.EvtUserOffline); d["user"] != "alice" {
		t.Fatalf("user_offline: %v", d)
	}
}

func TestRoomJoinLeaveBroadcasts(t *testing.T) {
	_, ts := newTestGateway(t)

	a := dial(t, ts, "alice")
	waitFor(t, a, gateway.EvtUserOnline)
	b := dial(t, ts, "bob")
	waitFor(t, b, gateway.EvtConnectionSuccess)
	waitFor(t, a, gateway.EvtUserOnline) // bob

	// solitary joiner gets no user_joined echo
	send(t, a, "join_room", map[string]any{"room": "math-101"})
	assertSilent(t, a, gateway.EvtUserJoined)

	send(t, b, "join_room", map[string]any{"room": "math-101"})
	d := waitFor(t, a, gateway.EvtUserJoined)
	if d["room"] != "math-101" || d["user"] != "bob" {
		t.Fatalf("user_joined: %v", d)
	}
	// the joiner itself gets no echo
	assertSilent(t, b, gateway.EvtUserJoined)

	send(t, b, "send_message", map[string]any{"room": "math-101", "message": "hi"})
	d = waitFor(t, a, gateway.EvtNewMessage)
	if d["from"] != "bob" || d["message"] != "hi" || d["room"] != "math-101" {
		t.Fatalf("new_message: %v", d)
	}
	assertSilent(t, b, gateway.EvtNewMessage)

	send(t, b, "leave_room", map[string]any{"room": "math-101"})
	d = waitFor(t, a, gateway.EvtUserLeft)
	if d["user"] != "bob" {
		t.Fatalf("user_left: %v", d)
	}
}

func TestDisconnectLeavesRooms(t *testing.T) {
	srv, ts := newTestGateway(t)

	a := dial(t, ts, "alice")
	waitFor(t, a, gateway.EvtUserOnline)
	b := dial(t, ts, "bob")
	waitFor(t, a, gateway.EvtUserOnline)

	send(t, a, "join_room", map[string]any{"room": "physics-2"})
	send(t, b, "join_room", map[string]any{"room": "physics-2"})
	waitFor(t, a, gateway.EvtUserJoined)

	_ = b.Close()
	d := waitFor(t, a, gateway.EvtUserLeft)
	if d["room"] != "physics-2" || d["user"] != "bob" {
		t.Fatalf("user_left on disconnect: %v", d)
	}
	waitFor(t, a, gateway.EvtUserOffline)

	deadline := time.Now().Add(2 * time.Second)
	for srv.Rooms().RoomCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(srv.Rooms().MembersOf("physics-2")); got != 1 {
		t.Fatalf("room members after disconnect: %d", got)
	}
}

func TestSignalRelayTaggedWithSender(t *testing.T) {
	_, ts := newTestGateway(t)

	a := dial(t, ts, "alice")
	waitFor(t, a, gateway.EvtUserOnline)
	b1 := dial(t, ts, "bob")
	waitFor(t, b1, gateway.EvtUserOnline)
	b2 := dial(t, ts, "bob")
	waitFor(t, b2, gateway.EvtConnectionSuccess)

	send(t, a, "signal", map[string]any{
		"to":      "bob",
		"payload": map[string]any{"type": "offer", "sdp": "v=0"},
	})

	// every connection of the recipient gets the envelope
	for _, ws := range []*websocket.Conn{b1, b2} {
		d := waitFor(t, ws, gateway.EvtSignal)
		if d["from"] != "alice" {
			t.Fatalf("signal from: %v", d)
		}
		body, ok := d["payload"].(map[string]any)
		if !ok || body["type"] != "offer" || body["sdp"] != "v=0" {
			t.Fatalf("signal payload must pass through opaque: %v", d)
		}
	}
	// sender gets nothing back
	assertSilent(t, a, gateway.EvtSignal)
}

func TestSignalToOfflineUserIsDropped(t *testing.T) {
	_, ts := newTestGateway(t)
	a := dial(t, ts, "alice")
	waitFor(t, a, gateway.EvtUserOnline)

	send(t, a, "signal", map[string]any{"to": "ghost", "payload": map[string]any{}})
	assertSilent(t, a, gateway.EvtError)
}

func TestMalformedFrameKeepsConnectionAlive(t *testing.T) {
	_, ts := newTestGateway(t)
	a := dial(t, ts, "alice")
	waitFor(t, a, gateway.EvtUserOnline)

	if err := a.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, a, gateway.EvtError)

	// connection still works afterwards
	send(t, a, "ping", nil)
	waitFor(t, a, gateway.EvtPong)
}

func TestGetOnlineUsers(t *testing.T) {
	_, ts := newTestGateway(t)
	a := dial(t, ts, "alice")
	waitFor(t, a, gateway.EvtUserOnline)
	b := dial(t, ts, "bob")
	waitFor(t, b, gateway.EvtConnectionSuccess)
	waitFor(t, a, gateway.EvtUserOnline)

	send(t, a, "get_online_users", nil)
	d := waitFor(t, a, gateway.EvtOnlineUsers)
	users, ok := d["users"].([]any)
	if !ok || len(users) != 2 {
		t.Fatalf("online_users: %v", d)
	}
}

func TestLogoutClosesConnection(t *testing.T) {
	srv, ts := newTestGateway(t)
	a := dial(t, ts, "alice")
	waitFor(t, a, gateway.EvtUserOnline)
	b := dial(t, ts, "bob")
	waitFor(t, b, gateway.EvtConnectionSuccess)

	send(t, a, "logout", nil)
	if d := waitFor(t, b, gateway.EvtUserOffline); d["user"] != "alice" {
		t.Fatalf("user_offline after logout: %v", d)
	}
	deadline := time.Now().Add(2 * time.Second)
	for srv.IsUserOnline("alice") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.IsUserOnline("alice") {
		t.Fatalf("alice must be offline after logout")
	}
}
