package gateway

import (
	"sync"
)

// Registry maps a user identity to its live connections and back. A user may
// hold several connections at once (multiple tabs/devices); presence is
// derived from the cardinality of the set.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*WsConn // identity -> conn_id -> conn
	byConn map[string]*WsConn            // conn_id -> conn
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]*WsConn),
		byConn: make(map[string]*WsConn),
	}
}

// Register adds the connection under its identity. Both indexes are updated
// under one lock so no reader can observe a half-registered connection.
// Returns true when this is the identity's first live connection, i.e. the
// empty -> non-empty presence transition.
func (r *Registry) Register(identity string, c *WsConn) (wentOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.byUser[identity]
	if m == nil {
		m = make(map[string]*WsConn)
		r.byUser[identity] = m
		wentOnline = true
	}
	m[c.ID] = c
	r.byConn[c.ID] = c
	return wentOnline
}

// Unregister removes the connection via the reverse index. The identity entry
// is deleted entirely (never left empty) when its last connection goes away;
// that deletion is the non-empty -> empty presence transition.
func (r *Registry) Unregister(c *WsConn) (identity string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byConn[c.ID]
	if !ok {
		return "", false
	}
	delete(r.byConn, c.ID)

	identity = reg.Identity
	if m := r.byUser[identity]; m != nil {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(r.byUser, identity)
			wentOffline = true
		}
	}
	return identity, wentOffline
}

// ConnectionsFor returns a snapshot of the identity's connections. Unknown
// identities resolve to an empty slice, not an error.
func (r *Registry) ConnectionsFor(identity string) []*WsConn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.byUser[identity]
	if len(m) == 0 {
		return nil
	}
	out := make([]*WsConn, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

func (r *Registry) IsOnline(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[identity]) > 0
}

// OnlineUsers returns the identities with at least one live connection.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byUser))
	for user := range r.byUser {
		out = append(out, user)
	}
	return out
}

// AllConnections returns a snapshot of every registered connection, used for
// global broadcasts (presence events).
func (r *Registry) AllConnections() []*WsConn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*WsConn, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, c)
	}
	return out
}

func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
