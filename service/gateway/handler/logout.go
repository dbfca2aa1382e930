package handler

import (
	"EduProject/logger"
	"EduProject/service/gateway"
)

// LogoutHandler acknowledges an explicit logout. The read loop exits after
// dispatching this kind and the server runs the normal one-shot teardown, so
// a logout racing a transport error still tears down exactly once.
type LogoutHandler struct{}

func NewLogoutHandler() gateway.Handler { return &LogoutHandler{} }

func (h *LogoutHandler) Kind() gateway.EventKind { return gateway.KindLogout }

func (h *LogoutHandler) Handle(_ *gateway.Context, _ *gateway.InboundFrame, conn *gateway.WsConn) error {
	logger.Infof("[Logout] user=%s conn=%s", conn.Identity, conn.ID)
	return nil
}
