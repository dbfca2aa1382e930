package handler

import (
	"EduProject/service/gateway"
	"EduProject/tools/decode"
	errs "EduProject/tools/errs"

	"github.com/gin-gonic/gin"
)

// typing indicators are best effort: no delivery confirmation, failures only
// logged by the router.

type TypingStartHandler struct{}

func NewTypingStartHandler() gateway.Handler { return &TypingStartHandler{} }

func (h *TypingStartHandler) Kind() gateway.EventKind { return gateway.KindTypingStart }

func (h *TypingStartHandler) Handle(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn) error {
	return typingBroadcast(ctx, f, conn, gateway.EvtUserTyping)
}

type TypingStopHandler struct{}

func NewTypingStopHandler() gateway.Handler { return &TypingStopHandler{} }

func (h *TypingStopHandler) Kind() gateway.EventKind { return gateway.KindTypingStop }

func (h *TypingStopHandler) Handle(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn) error {
	return typingBroadcast(ctx, f, conn, gateway.EvtUserStoppedTyping)
}

func typingBroadcast(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn, event string) error {
	p, err := decode.DecodeMap[gateway.RoomPayload](f.Payload)
	if err != nil {
		return errs.ErrProtocol.WithDetail(err.Error())
	}
	if p.Room == "" {
		return errs.ErrProtocol.WithDetail("typing: empty room")
	}
	ctx.S.BroadcastRoom(p.Room, event, gin.H{"room": p.Room, "user": conn.Identity}, conn)
	return nil
}
