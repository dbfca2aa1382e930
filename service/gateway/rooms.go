package gateway

import (
	"sync"
)

// RoomManager tracks ad-hoc rooms (tutoring sessions). It is the single
// writer of both the room member-set and each connection's join-set, so the
// two stay mutually consistent under one mutex.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*WsConn // room_id -> conn_id -> conn
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]map[string]*WsConn)}
}

// Join adds the connection to the room, creating the room implicitly.
// Idempotent; returns whether this was a new member.
func (m *RoomManager) Join(room string, c *WsConn) bool {
	if room == "" || c == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	members := m.rooms[room]
	if members == nil {
		members = make(map[string]*WsConn)
		m.rooms[room] = members
	}
	if _, ok := members[c.ID]; ok {
		return false
	}
	members[c.ID] = c
	c.joined[room] = struct{}{}
	return true
}

// Leave removes the connection from the room. Idempotent; a room emptied by
// the leave is deleted so no dangling rooms remain addressable.
func (m *RoomManager) Leave(room string, c *WsConn) bool {
	if room == "" || c == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(room, c)
}

func (m *RoomManager) leaveLocked(room string, c *WsConn) bool {
	members := m.rooms[room]
	if members == nil {
		return false
	}
	if _, ok := members[c.ID]; !ok {
		return false
	}
	delete(members, c.ID)
	delete(c.joined, room)
	if len(members) == 0 {
		delete(m.rooms, room)
	}
	return true
}

// LeaveAll removes the connection from every room it had joined, driven off
// the connection's own join-set rather than a scan of all rooms. Returns the
// rooms that were left, for the caller to emit user_left events.
func (m *RoomManager) LeaveAll(c *WsConn) []string {
	if c == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(c.joined) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.joined))
	for room := range c.joined {
		if m.leaveLocked(room, c) {
			out = append(out, room)
		}
	}
	return out
}

// MembersOf returns a snapshot of the room's members, empty for unknown rooms.
func (m *RoomManager) MembersOf(room string) []*WsConn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.rooms[room]
	if len(members) == 0 {
		return nil
	}
	out := make([]*WsConn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// RoomsOf returns a snapshot of the rooms the connection has joined.
func (m *RoomManager) RoomsOf(c *WsConn) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(c.joined) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.joined))
	for room := range c.joined {
		out = append(out, room)
	}
	return out
}

func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
