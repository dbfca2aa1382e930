package gateway

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"EduProject/logger"
	errs "EduProject/tools/errs"
	"EduProject/tools/ids"
	"EduProject/tools/safe"
	"EduProject/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Authenticator is the external identity collaborator: the gateway does not
// issue sessions, it only consumes a verified identity per connection.
type Authenticator interface {
	Verify(credential string) (identity string, err error)
}

// JWTAuthenticator verifies HMAC-signed tokens issued by the platform's auth
// service and extracts the subject as the identity.
type JWTAuthenticator struct {
	Opts security.Options
}

func (a *JWTAuthenticator) Verify(credential string) (string, error) {
	if credential == "" {
		return "", errs.ErrAuthFailed.WithDetail("missing credential")
	}
	claims, err := security.Verify(a.Opts, credential)
	if err != nil {
		return "", errs.ErrAuthFailed.WithDetail(err.Error())
	}
	sub, err := claims.Subject()
	if err != nil {
		return "", errs.ErrAuthFailed.WithDetail(err.Error())
	}
	return sub, nil
}

// PresenceListener observes identity-level presence transitions (not
// per-connection churn). Used to mirror presence into Redis for out-of-process
// readers; a nil listener is fine.
type PresenceListener interface {
	Online(identity string)
	Offline(identity string)
}

type Conf struct {
	HeartbeatTTL  time.Duration // heartbeat grace before the sweeper reaps (default 75s)
	SweepEvery    time.Duration // sweeper period (default 30s)
	PingInterval  time.Duration // transport ping period (default 25s)
	WriteTimeout  time.Duration // per-write deadline (default 5s)
	SendQueueSize int           // per-connection outbound buffer (default 256)
	Clock         func() time.Time
}

func (c *Conf) norm() {
	if c.HeartbeatTTL <= 0 {
		c.HeartbeatTTL = 75 * time.Second
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = 30 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server owns the connection lifecycle (accept, authenticate, teardown) and
// composes the registry, room manager and dispatcher. All state is held by
// the instance so independent servers can coexist (tests run several).
type Server struct {
	gwID string
	conf Conf

	auth     Authenticator
	reg      *Registry
	rooms    *RoomManager
	disp     *Dispatcher
	presence PresenceListener

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewServer(gwID string, auth Authenticator) *Server {
	return NewServerWithConf(gwID, auth, Conf{})
}

func NewServerWithConf(gwID string, auth Authenticator, conf Conf) *Server {
	conf.norm()
	return &Server{
		gwID:   gwID,
		conf:   conf,
		auth:   auth,
		reg:    NewRegistry(),
		rooms:  NewRoomManager(),
		disp:   NewDispatcher(),
		stopCh: make(chan struct{}),
	}
}

func (s *Server) GwID() string             { return s.gwID }
func (s *Server) Registry() *Registry      { return s.reg }
func (s *Server) Rooms() *RoomManager      { return s.rooms }
func (s *Server) Disp() *Dispatcher        { return s.disp }
func (s *Server) IsUserOnline(user string) bool { return s.reg.IsOnline(user) }

func (s *Server) SetPresenceListener(l PresenceListener) { s.presence = l }

// Start launches the stale-connection sweeper.
func (s *Server) Start() {
	safe.SafeGo(s.sweeper)
}

// Shutdown stops the sweeper and tears down every live connection.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	for _, c := range s.reg.AllConnections() {
		s.teardown(c)
	}
}

// HandleWS is the gin handler for GET /ws. The credential travels in the
// Authorization header or a token query param; verification happens before
// the upgrade so a failed handshake mutates nothing.
func (s *Server) HandleWS(c *gin.Context) {
	credential := extractCredential(c)
	identity, err := s.auth.Verify(credential)
	if err != nil {
		logger.Infof("[WS] handshake rejected remote=%s err=%v", c.ClientIP(), err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuthFailed)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[WS] upgrade failed user=%s err=%v", identity, err)
		return
	}

	conn := newWsConn(ids.GenerateString(), identity, ws, s.conf.SendQueueSize, s.conf.HeartbeatTTL, s.conf.Clock())
	s.runConn(conn)
}

// runConn drives one connection from Authenticated to Closed.
func (s *Server) runConn(conn *WsConn) {
	defer s.teardown(conn)

	wentOnline := s.reg.Register(conn.Identity, conn)

	safe.SafeGo(func() { conn.writePump(s.conf.WriteTimeout, s.conf.PingInterval) })

	s.SendToConn(conn, EvtConnectionSuccess, gin.H{
		"conn_id":          conn.ID,
		"user":             conn.Identity,
		"gateway":          s.gwID,
		"ping_interval_ms": s.conf.PingInterval.Milliseconds(),
	})

	if wentOnline {
		s.BroadcastAll(EvtUserOnline, gin.H{"user": conn.Identity})
		if s.presence != nil {
			s.presence.Online(conn.Identity)
		}
	}

	logger.Infof("[WS] connected user=%s conn=%s remote=%v online=%v",
		conn.Identity, conn.ID, conn.Remote, wentOnline)

	s.readLoop(conn)
}

func (s *Server) readLoop(conn *WsConn) {
	ws := conn.Conn
	_ = ws.SetReadDeadline(s.conf.Clock().Add(conn.ttl))
	ws.SetPongHandler(func(string) error {
		conn.touch(s.conf.Clock())
		return ws.SetReadDeadline(s.conf.Clock().Add(conn.ttl))
	})

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed conn=%s err=%v", conn.ID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout conn=%s err=%v", conn.ID, rerr)
			} else {
				logger.Infof("[WS] read err conn=%s err=%v", conn.ID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		conn.touch(s.conf.Clock())
		_ = ws.SetReadDeadline(s.conf.Clock().Add(conn.ttl))

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[WS] bad frame conn=%s err=%v sample=%q", conn.ID, perr, sample)
			s.SendToConn(conn, EvtError, errs.ErrProtocol)
			continue
		}

		h := s.disp.GetHandler(frame.Kind)
		if h == nil {
			logger.Infof("[WS] no handler kind=%v conn=%s", frame.Kind, conn.ID)
			continue
		}
		if err := h.Handle(&Context{S: s}, frame, conn); err != nil {
			logger.Infof("[WS] handler %v err conn=%s: %v", frame.Kind, conn.ID, err)
			var ce *errs.CodeError
			if errors.As(err, &ce) {
				s.SendToConn(conn, EvtError, ce)
			}
		}
		if frame.Kind == KindLogout {
			return
		}
	}
}

// teardown runs the Active -> Closed transition exactly once, even when a
// transport error and an explicit logout race. Order matters: rooms first
// (user_left to remaining members), then the registry (possible
// user_offline), then the socket.
func (s *Server) teardown(conn *WsConn) {
	if !conn.markClosed() {
		return
	}

	left := s.rooms.LeaveAll(conn)
	for _, room := range left {
		s.BroadcastRoom(room, EvtUserLeft, gin.H{"room": room, "user": conn.Identity}, nil)
	}

	identity, wentOffline := s.reg.Unregister(conn)
	if wentOffline {
		s.BroadcastAll(EvtUserOffline, gin.H{"user": identity})
		if s.presence != nil {
			s.presence.Offline(identity)
		}
	}

	_ = conn.Conn.Close()
	logger.Infof("[WS] closed user=%s conn=%s rooms_left=%d offline=%v",
		conn.Identity, conn.ID, len(left), wentOffline)
}

// sweeper reaps connections whose heartbeat expired; they go through the
// same teardown path as a normal disconnect.
func (s *Server) sweeper() {
	t := time.NewTicker(s.conf.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-t.C:
			var expired []*WsConn
			for _, c := range s.reg.AllConnections() {
				if c.expired(now) {
					expired = append(expired, c)
				}
			}
			for _, c := range expired {
				logger.Infof("[Sweeper] reap conn=%s user=%s", c.ID, c.Identity)
				s.teardown(c)
			}
		}
	}
}

func extractCredential(c *gin.Context) string {
	if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
		return authz
	}
	return strings.TrimSpace(c.Query("token"))
}
