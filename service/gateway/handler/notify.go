package handler

import (
	"EduProject/service/gateway"
	"EduProject/tools/decode"
	errs "EduProject/tools/errs"

	"github.com/gin-gonic/gin"
)

type SendNotificationHandler struct{}

func NewSendNotificationHandler() gateway.Handler { return &SendNotificationHandler{} }

func (h *SendNotificationHandler) Kind() gateway.EventKind { return gateway.KindSendNotification }

func (h *SendNotificationHandler) Handle(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn) error {
	p, err := decode.DecodeMap[gateway.NotificationPayload](f.Payload)
	if err != nil {
		return errs.ErrProtocol.WithDetail(err.Error())
	}
	if p.To == "" {
		return errs.ErrProtocol.WithDetail("send_notification: empty recipient")
	}

	// an offline recipient resolves to an empty set: dropped, not an error
	ctx.S.SendToUser(p.To, gateway.EvtNewNotification, gin.H{
		"from":         conn.Identity,
		"notification": p.Notification,
	})
	return nil
}
