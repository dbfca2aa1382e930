package push

import (
	"context"
	"encoding/json"
	"time"

	"EduProject/logger"
	"EduProject/service/natsx"
)

const (
	BizNotifyUser = "notify_user"
	BizNotifyRoom = "notify_room"

	SubjectNotifyUser = "edu.notify.user"
	SubjectNotifyRoom = "edu.notify.room"
)

type notifyUserMsg struct {
	User         string          `json:"user"`
	Notification json.RawMessage `json:"notification"`
}

type notifyRoomMsg struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// StartBridge subscribes the push service to the notify subjects so other
// services can reach connected clients without an HTTP round trip. Messages
// carrying a Nats-Msg-Id are deduplicated for idemTTL.
func StartBridge(p *Service, cfg natsx.NatsxConfig, queue string, idemTTL time.Duration) (*natsx.NatsManager, error) {
	mgr, err := natsx.NewNatsManager(cfg, natsx.NatsxIdemMiddleware(natsx.NewMemIdem(idemTTL), idemTTL))
	if err != nil {
		return nil, err
	}
	routes := []natsx.NatsxRoute{
		{Biz: BizNotifyUser, Subject: SubjectNotifyUser, Queue: queue},
		{Biz: BizNotifyRoom, Subject: SubjectNotifyRoom, Queue: queue},
	}
	for _, r := range routes {
		if err := mgr.RegisterRoute(r); err != nil {
			_ = mgr.Close()
			return nil, err
		}
	}

	if err := mgr.Subscribe(BizNotifyUser, func(_ context.Context, m natsx.NatsxMessage) error {
		var msg notifyUserMsg
		if err := json.Unmarshal(m.Data, &msg); err != nil || msg.User == "" {
			logger.Warnf("[PushBridge] bad user notify on %s: %v", m.Subject, err)
			return nil
		}
		n := p.SendNotificationToUser(msg.User, msg.Notification)
		logger.Infof("[PushBridge] user=%s delivered=%d", msg.User, n)
		return nil
	}); err != nil {
		_ = mgr.Close()
		return nil, err
	}

	if err := mgr.Subscribe(BizNotifyRoom, func(_ context.Context, m natsx.NatsxMessage) error {
		var msg notifyRoomMsg
		if err := json.Unmarshal(m.Data, &msg); err != nil || msg.Room == "" || msg.Event == "" {
			logger.Warnf("[PushBridge] bad room notify on %s: %v", m.Subject, err)
			return nil
		}
		n := p.BroadcastToRoom(msg.Room, msg.Event, msg.Data)
		logger.Infof("[PushBridge] room=%s event=%s delivered=%d", msg.Room, msg.Event, n)
		return nil
	}); err != nil {
		_ = mgr.Close()
		return nil, err
	}

	return mgr, nil
}
