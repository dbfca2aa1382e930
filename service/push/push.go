package push

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"EduProject/logger"
	"EduProject/service/gateway"
	"EduProject/tools/errs"
)

// Service is the server-originated delivery surface. Other processes reach it
// over HTTP or the NATS bridge; in-process callers use it directly.
type Service struct {
	s *gateway.Server
}

func NewService(s *gateway.Server) *Service {
	return &Service{s: s}
}

// SendNotificationToUser fans a notification out to every connection of the
// user, in the same shape as a peer-sent notification but from "server".
// Returns the number of enqueued deliveries; 0 means offline.
func (p *Service) SendNotificationToUser(user string, notification any) int {
	return p.s.SendToUser(user, gateway.EvtNewNotification, gin.H{
		"from":         "server",
		"notification": notification,
	})
}

// BroadcastToRoom pushes an event to every current member of the room.
func (p *Service) BroadcastToRoom(room, event string, data any) int {
	return p.s.BroadcastRoom(room, event, data, nil)
}

func (p *Service) IsUserOnline(user string) bool { return p.s.IsUserOnline(user) }

func (p *Service) OnlineUsers() []string { return p.s.Registry().OnlineUsers() }

type pushUserReq struct {
	User         string `json:"user" binding:"required"`
	Notification any    `json:"notification"`
}

type pushRoomReq struct {
	Room  string `json:"room" binding:"required"`
	Event string `json:"event" binding:"required"`
	Data  any    `json:"data"`
}

// HandlePushUser serves POST /push/user.
func (p *Service) HandlePushUser(c *gin.Context) {
	var req pushUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errs.ErrProtocol.Code, "msg": err.Error()})
		return
	}
	n := p.SendNotificationToUser(req.User, req.Notification)
	logger.Infof("[Push] user=%s delivered=%d", req.User, n)
	c.JSON(http.StatusOK, gin.H{"code": 0, "delivered": n, "online": n > 0})
}

// HandlePushRoom serves POST /push/room.
func (p *Service) HandlePushRoom(c *gin.Context) {
	var req pushRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errs.ErrProtocol.Code, "msg": err.Error()})
		return
	}
	n := p.BroadcastToRoom(req.Room, req.Event, req.Data)
	logger.Infof("[Push] room=%s event=%s delivered=%d", req.Room, req.Event, n)
	c.JSON(http.StatusOK, gin.H{"code": 0, "delivered": n})
}

// HandleOnline serves GET /online/:user.
func (p *Service) HandleOnline(c *gin.Context) {
	user := c.Param("user")
	c.JSON(http.StatusOK, gin.H{"code": 0, "user": user, "online": p.IsUserOnline(user)})
}

// HandleOnlineList serves GET /online.
func (p *Service) HandleOnlineList(c *gin.Context) {
	users := p.OnlineUsers()
	c.JSON(http.StatusOK, gin.H{"code": 0, "count": len(users), "users": users})
}
