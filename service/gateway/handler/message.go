package handler

import (
	"EduProject/service/gateway"
	"EduProject/tools/decode"
	errs "EduProject/tools/errs"

	"github.com/gin-gonic/gin"
)

type SendMessageHandler struct{}

func NewSendMessageHandler() gateway.Handler { return &SendMessageHandler{} }

func (h *SendMessageHandler) Kind() gateway.EventKind { return gateway.KindSendMessage }

func (h *SendMessageHandler) Handle(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn) error {
	p, err := decode.DecodeMap[gateway.MessagePayload](f.Payload)
	if err != nil {
		return errs.ErrProtocol.WithDetail(err.Error())
	}
	if p.Room == "" {
		return errs.ErrProtocol.WithDetail("send_message: empty room")
	}

	ctx.S.BroadcastRoom(p.Room, gateway.EvtNewMessage, gin.H{
		"room":    p.Room,
		"from":    conn.Identity,
		"message": p.Message,
	}, conn)
	return nil
}
