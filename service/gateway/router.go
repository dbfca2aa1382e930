package gateway

import (
	"EduProject/logger"
)

// Fan-out primitives. Target sets are snapshot-copied by the registry/room
// manager under their own locks; the actual enqueue happens lock-free so a
// slow peer never blocks unrelated connections. Each delivery attempt is
// independent: failures are logged and skipped, never retried.

// SendToConn delivers one event to a single connection.
func (s *Server) SendToConn(c *WsConn, event string, data any) {
	raw, err := EncodeEvent(event, data)
	if err != nil {
		logger.Errorf("[Router] encode %s failed: %v", event, err)
		return
	}
	if err := c.enqueue(raw); err != nil {
		logger.Infof("[Router] drop %s conn=%s user=%s: %v", event, c.ID, c.Identity, err)
	}
}

// SendToUser delivers the event to every live connection of the identity.
// Zero connections is a silent no-op. Returns the number of successful
// enqueues.
func (s *Server) SendToUser(identity, event string, data any) int {
	conns := s.reg.ConnectionsFor(identity)
	if len(conns) == 0 {
		return 0
	}
	raw, err := EncodeEvent(event, data)
	if err != nil {
		logger.Errorf("[Router] encode %s failed: %v", event, err)
		return 0
	}
	n := 0
	for _, c := range conns {
		if err := c.enqueue(raw); err != nil {
			logger.Infof("[Router] drop %s conn=%s user=%s: %v", event, c.ID, identity, err)
			continue
		}
		n++
	}
	return n
}

// BroadcastRoom delivers the event to the room's members, optionally
// excluding one connection (the sender never hears its own room events).
func (s *Server) BroadcastRoom(room, event string, data any, except *WsConn) int {
	members := s.rooms.MembersOf(room)
	if len(members) == 0 {
		return 0
	}
	raw, err := EncodeEvent(event, data)
	if err != nil {
		logger.Errorf("[Router] encode %s failed: %v", event, err)
		return 0
	}
	n := 0
	for _, c := range members {
		if except != nil && c.ID == except.ID {
			continue
		}
		if err := c.enqueue(raw); err != nil {
			logger.Infof("[Router] drop %s room=%s conn=%s: %v", event, room, c.ID, err)
			continue
		}
		n++
	}
	return n
}

// BroadcastAll delivers the event to every registered connection (presence
// events).
func (s *Server) BroadcastAll(event string, data any) int {
	conns := s.reg.AllConnections()
	if len(conns) == 0 {
		return 0
	}
	raw, err := EncodeEvent(event, data)
	if err != nil {
		logger.Errorf("[Router] encode %s failed: %v", event, err)
		return 0
	}
	n := 0
	for _, c := range conns {
		if err := c.enqueue(raw); err != nil {
			logger.Infof("[Router] drop %s conn=%s: %v", event, c.ID, err)
			continue
		}
		n++
	}
	return n
}
