package gateway

import (
	"encoding/json"
	"time"

	errs "EduProject/tools/errs"
)

// EventKind is the closed set of inbound event types. Frames are decoded at
// the boundary into one of these kinds; there is no string-keyed dispatch
// past this point.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindJoinRoom
	KindLeaveRoom
	KindSendMessage
	KindSendNotification
	KindSignal
	KindTypingStart
	KindTypingStop
	KindGetOnlineUsers
	KindPing
	KindLogout
)

var kindNames = map[string]EventKind{
	"join_room":         KindJoinRoom,
	"leave_room":        KindLeaveRoom,
	"send_message":      KindSendMessage,
	"send_notification": KindSendNotification,
	"signal":            KindSignal,
	"typing_start":      KindTypingStart,
	"typing_stop":       KindTypingStop,
	"get_online_users":  KindGetOnlineUsers,
	"ping":              KindPing,
	"logout":            KindLogout,
}

func (k EventKind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Outbound event names emitted by the gateway.
const (
	EvtConnectionSuccess = "connection_success"
	EvtUserOnline        = "user_online"
	EvtUserOffline       = "user_offline"
	EvtUserJoined        = "user_joined"
	EvtUserLeft          = "user_left"
	EvtNewMessage        = "new_message"
	EvtNewNotification   = "new_notification"
	EvtSignal            = "signal"
	EvtUserTyping        = "user_typing"
	EvtUserStoppedTyping = "user_stopped_typing"
	EvtOnlineUsers       = "online_users"
	EvtPong              = "pong"
	EvtError             = "error"
)

// InboundFrame is one decoded client event.
type InboundFrame struct {
	Kind    EventKind
	Payload map[string]any
}

type wireFrame struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ParseFrame decodes a raw websocket text frame. Malformed JSON and unknown
// event names are protocol errors.
func ParseFrame(raw []byte) (*InboundFrame, error) {
	var w wireFrame
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errs.ErrProtocol.WithDetail(err.Error())
	}
	kind, ok := kindNames[w.Event]
	if !ok {
		return nil, errs.ErrProtocol.WithDetail("unknown event: " + w.Event)
	}
	return &InboundFrame{Kind: kind, Payload: w.Payload}, nil
}

// OutEvent is the frame shape pushed to clients.
type OutEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Ts    int64  `json:"ts"`
}

// EncodeEvent builds the wire bytes for an outbound event. Encoding happens
// once per fan-out, not once per target connection.
func EncodeEvent(event string, data any) ([]byte, error) {
	return json.Marshal(OutEvent{Event: event, Data: data, Ts: time.Now().UnixMilli()})
}

// ---- typed inbound payloads ----

type RoomPayload struct {
	Room string `json:"room"`
}

type MessagePayload struct {
	Room    string `json:"room"`
	Message any    `json:"message"`
}

type NotificationPayload struct {
	To           string `json:"to"`
	Notification any    `json:"notification"`
}

// SignalPayload carries an opaque signaling body (offer/answer/ICE). The
// gateway never inspects Payload.
type SignalPayload struct {
	To      string `json:"to"`
	Payload any    `json:"payload"`
}

// SignalEnvelope is what the recipient receives: the opaque body tagged with
// the sender identity.
type SignalEnvelope struct {
	From    string `json:"from"`
	Payload any    `json:"payload"`
}
