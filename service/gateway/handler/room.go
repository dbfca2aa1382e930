package handler

import (
	"EduProject/service/gateway"
	"EduProject/tools/decode"
	errs "EduProject/tools/errs"

	"github.com/gin-gonic/gin"
)

type JoinRoomHandler struct{}

func NewJoinRoomHandler() gateway.Handler { return &JoinRoomHandler{} }

func (h *JoinRoomHandler) Kind() gateway.EventKind { return gateway.KindJoinRoom }

func (h *JoinRoomHandler) Handle(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn) error {
	p, err := decode.DecodeMap[gateway.RoomPayload](f.Payload)
	if err != nil {
		return errs.ErrProtocol.WithDetail(err.Error())
	}
	if p.Room == "" {
		return errs.ErrProtocol.WithDetail("join_room: empty room")
	}

	// joining an unknown room creates it; re-joining is a no-op and emits
	// nothing. The joiner itself receives no user_joined echo.
	if ctx.S.Rooms().Join(p.Room, conn) {
		ctx.S.BroadcastRoom(p.Room, gateway.EvtUserJoined,
			gin.H{"room": p.Room, "user": conn.Identity}, conn)
	}
	return nil
}

type LeaveRoomHandler struct{}

func NewLeaveRoomHandler() gateway.Handler { return &LeaveRoomHandler{} }

func (h *LeaveRoomHandler) Kind() gateway.EventKind { return gateway.KindLeaveRoom }

func (h *LeaveRoomHandler) Handle(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn) error {
	p, err := decode.DecodeMap[gateway.RoomPayload](f.Payload)
	if err != nil {
		return errs.ErrProtocol.WithDetail(err.Error())
	}
	if p.Room == "" {
		return errs.ErrProtocol.WithDetail("leave_room: empty room")
	}

	if ctx.S.Rooms().Leave(p.Room, conn) {
		ctx.S.BroadcastRoom(p.Room, gateway.EvtUserLeft,
			gin.H{"room": p.Room, "user": conn.Identity}, nil)
	}
	return nil
}
