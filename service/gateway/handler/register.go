package handler

import (
	"EduProject/service/gateway"
)

// RegisterAll installs the full inbound event set on the dispatcher.
func RegisterAll(d *gateway.Dispatcher) {
	d.Register(NewJoinRoomHandler())
	d.Register(NewLeaveRoomHandler())
	d.Register(NewSendMessageHandler())
	d.Register(NewSendNotificationHandler())
	d.Register(NewSignalHandler())
	d.Register(NewTypingStartHandler())
	d.Register(NewTypingStopHandler())
	d.Register(NewGetOnlineUsersHandler())
	d.Register(NewPingHandler())
	d.Register(NewLogoutHandler())
}
