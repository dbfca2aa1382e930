package handler

import (
	"EduProject/service/gateway"

	"github.com/gin-gonic/gin"
)

type GetOnlineUsersHandler struct{}

func NewGetOnlineUsersHandler() gateway.Handler { return &GetOnlineUsersHandler{} }

func (h *GetOnlineUsersHandler) Kind() gateway.EventKind { return gateway.KindGetOnlineUsers }

// Handle replies with the current presence snapshot to the requesting
// connection only.
func (h *GetOnlineUsersHandler) Handle(ctx *gateway.Context, _ *gateway.InboundFrame, conn *gateway.WsConn) error {
	ctx.S.SendToConn(conn, gateway.EvtOnlineUsers, gin.H{
		"users": ctx.S.Registry().OnlineUsers(),
	})
	return nil
}
