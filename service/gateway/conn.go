package gateway

import (
	"net"
	"sync"
	"time"

	"EduProject/logger"
	errs "EduProject/tools/errs"

	"github.com/gorilla/websocket"
)

// WsConn is one live client connection. The gateway server owns the lifecycle;
// the registry and room manager only hold lookup references.
type WsConn struct {
	ID       string // snowflake connection ID
	Identity string // set once at handshake, immutable afterwards

	Conn   *websocket.Conn
	Remote net.Addr

	CreatedAt time.Time

	// joined room IDs; written only by the RoomManager under its own mutex
	joined map[string]struct{}

	hbMu      sync.Mutex
	heartbeat time.Time
	ttl       time.Duration

	sendCh    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(id, identity string, ws *websocket.Conn, queueSize int, ttl time.Duration, now time.Time) *WsConn {
	c := &WsConn{
		ID:        id,
		Identity:  identity,
		Conn:      ws,
		CreatedAt: now,
		joined:    make(map[string]struct{}),
		heartbeat: now,
		ttl:       ttl,
		sendCh:    make(chan []byte, queueSize),
		closed:    make(chan struct{}),
	}
	if ws != nil {
		c.Remote = ws.RemoteAddr()
	}
	return c
}

// markClosed flips the connection into Closed exactly once. Returns true for
// the caller that won the race and must run the teardown steps.
func (c *WsConn) markClosed() bool {
	won := false
	c.closeOnce.Do(func() {
		close(c.closed)
		won = true
	})
	return won
}

func (c *WsConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// enqueue hands a pre-encoded frame to the write pump. It never blocks: a
// closed connection or a full queue drops the frame, which the caller logs as
// a delivery failure and moves on.
func (c *WsConn) enqueue(data []byte) error {
	if c.isClosed() {
		return errs.ErrDelivery.WithDetail("connection closed")
	}
	select {
	case c.sendCh <- data:
		return nil
	default:
		return errs.ErrDelivery.WithDetail("send queue full")
	}
}

func (c *WsConn) touch(now time.Time) {
	c.hbMu.Lock()
	c.heartbeat = now
	c.hbMu.Unlock()
}

func (c *WsConn) expired(now time.Time) bool {
	c.hbMu.Lock()
	defer c.hbMu.Unlock()
	return now.After(c.heartbeat.Add(c.ttl))
}

// writePump is the single writer for the underlying socket
// (gorilla/websocket forbids concurrent writes). It also emits transport
// pings so the peer's pongs keep the heartbeat fresh.
func (c *WsConn) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case data := <-c.sendCh:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Infof("[WS] write failed conn=%s user=%s err=%v", c.ID, c.Identity, err)
				// let the read loop observe the dead socket and run teardown
				_ = c.Conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Conn.Close()
				return
			}
		}
	}
}
