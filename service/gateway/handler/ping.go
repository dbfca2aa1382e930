package handler

import (
	"time"

	"EduProject/service/gateway"

	"github.com/gin-gonic/gin"
)

// PingHandler answers application-level pings. The read loop already
// refreshed the heartbeat before dispatch; the pong just carries server time
// for client clock skew checks.
type PingHandler struct{}

func NewPingHandler() gateway.Handler { return &PingHandler{} }

func (h *PingHandler) Kind() gateway.EventKind { return gateway.KindPing }

func (h *PingHandler) Handle(ctx *gateway.Context, _ *gateway.InboundFrame, conn *gateway.WsConn) error {
	ctx.S.SendToConn(conn, gateway.EvtPong, gin.H{"server_time": time.Now().UnixMilli()})
	return nil
}
