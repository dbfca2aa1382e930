package gateway

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseFrameKnownEvents(t *testing.T) {
	cases := []struct {
		raw  string
		kind EventKind
	}{
		{`{"event":"join_room","payload":{"room":"math-101"}}`, KindJoinRoom},
		{`{"event":"leave_room","payload":{"room":"math-101"}}`, KindLeaveRoom},
		{`{"event":"send_message","payload":{"room":"r","message":"hi"}}`, KindSendMessage},
		{`{"event":"send_notification","payload":{"to":"bob"}}`, KindSendNotification},
		{`{"event":"signal","payload":{"to":"bob","payload":{}}}`, KindSignal},
		{`{"event":"typing_start","payload":{"room":"r"}}`, KindTypingStart},
		{`{"event":"typing_stop","payload":{"room":"r"}}`, KindTypingStop},
		{`{"event":"get_online_users"}`, KindGetOnlineUsers},
		{`{"event":"ping"}`, KindPing},
		{`{"event":"logout"}`, KindLogout},
	}
	for _, tc := range cases {
		f, err := ParseFrame([]byte(tc.raw))
		if err != nil {
			t.Fatalf("ParseFrame(%s): %v", tc.raw, err)
		}
		if f.Kind != tc.kind {
			t.Fatalf("ParseFrame(%s): kind=%v want %v", tc.raw, f.Kind, tc.kind)
		}
	}
}

func TestParseFrameRejectsBadInput(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"event":"no_such_event"}`,
		`{"payload":{"room":"r"}}`,
		`[]`,
	} {
		if _, err := ParseFrame([]byte(raw)); err == nil {
			t.Fatalf("ParseFrame(%s): expected protocol error", raw)
		}
	}
}

func TestEncodeEventShape(t *testing.T) {
	raw, err := EncodeEvent(EvtUserOnline, map[string]any{"user": "alice"})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	var out OutEvent
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Event != EvtUserOnline {
		t.Fatalf("event: got %q", out.Event)
	}
	if out.Ts == 0 {
		t.Fatalf("ts must be set")
	}
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	c := newWsConn("c1", "alice", nil, 2, 0, time.Now())
	if err := c.enqueue([]byte("a")); err != nil {
		t.Fatalf("enqueue 1: %v", err)
	}
	if err := c.enqueue([]byte("b")); err != nil {
		t.Fatalf("enqueue 2: %v", err)
	}
	if err := c.enqueue([]byte("c")); err == nil {
		t.Fatalf("full queue must drop")
	}
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	c := testConn("c1", "alice")
	if !c.markClosed() {
		t.Fatalf("first markClosed must win")
	}
	if c.markClosed() {
		t.Fatalf("second markClosed must lose")
	}
	if err := c.enqueue([]byte("x")); err == nil {
		t.Fatalf("enqueue on closed conn must fail")
	}
}
