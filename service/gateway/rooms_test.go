package gateway

import (
	"sort"
	"testing"
)

func TestJoinIsIdempotent(t *testing.T) {
	m := NewRoomManager()
	c := testConn("c1", "alice")

	if !m.Join("math-101", c) {
		t.Fatalf("first join must report membership change")
	}
	if m.Join("math-101", c) {
		t.Fatalf("second join of the same conn must be a no-op")
	}
	if got := len(m.MembersOf("math-101")); got != 1 {
		t.Fatalf("MembersOf: got %d want 1", got)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	m := NewRoomManager()
	c := testConn("c1", "alice")
	m.Join("math-101", c)

	if !m.Leave("math-101", c) {
		t.Fatalf("leave must report membership change")
	}
	if m.Leave("math-101", c) {
		t.Fatalf("leaving twice must be a no-op")
	}
	if m.RoomCount() != 0 {
		t.Fatalf("empty room must be deleted, RoomCount=%d", m.RoomCount())
	}
}

func TestLeaveAllReturnsEveryJoinedRoom(t *testing.T) {
	m := NewRoomManager()
	c := testConn("c1", "alice")
	other := testConn("c2", "bob")
	m.Join("math-101", c)
	m.Join("physics-2", c)
	m.Join("math-101", other)

	left := m.LeaveAll(c)
	sort.Strings(left)
	if len(left) != 2 || left[0] != "math-101" || left[1] != "physics-2" {
		t.Fatalf("LeaveAll: got %v", left)
	}
	if got := m.RoomsOf(c); len(got) != 0 {
		t.Fatalf("RoomsOf after LeaveAll: got %v", got)
	}
	// bob keeps math-101 alive
	if m.RoomCount() != 1 {
		t.Fatalf("RoomCount: got %d want 1", m.RoomCount())
	}
	if len(m.LeaveAll(c)) != 0 {
		t.Fatalf("second LeaveAll must return nothing")
	}
}

func TestMembersOfUnknownRoom(t *testing.T) {
	m := NewRoomManager()
	if got := m.MembersOf("nope"); len(got) != 0 {
		t.Fatalf("unknown room: got %v", got)
	}
}

func TestSeparateConnsOfSameUserAreSeparateMembers(t *testing.T) {
	m := NewRoomManager()
	a1 := testConn("c1", "alice")
	a2 := testConn("c2", "alice")
	m.Join("math-101", a1)
	m.Join("math-101", a2)

	if got := len(m.MembersOf("math-101")); got != 2 {
		t.Fatalf("membership is per connection, got %d members", got)
	}
	m.Leave("math-101", a1)
	if got := len(m.MembersOf("math-101")); got != 1 {
		t.Fatalf("after one leave: got %d members", got)
	}
}
