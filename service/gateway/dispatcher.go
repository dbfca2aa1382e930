package gateway

import (
	"fmt"
)

type Handler interface {
	Kind() EventKind
	Handle(ctx *Context, f *InboundFrame, conn *WsConn) error
}

// Context hands the server to handlers without exposing internals.
type Context struct {
	S *Server
}

type Dispatcher struct {
	handlers map[EventKind]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind]Handler)}
}

// Register installs a handler. Called from main() during wiring, before the
// server accepts connections; not safe for concurrent use afterwards.
func (d *Dispatcher) Register(h Handler) { d.handlers[h.Kind()] = h }

func (d *Dispatcher) Dispatch(ctx *Context, f *InboundFrame, conn *WsConn) error {
	h, ok := d.handlers[f.Kind]
	if !ok {
		return fmt.Errorf("no handler for kind=%v", f.Kind)
	}
	return h.Handle(ctx, f, conn)
}

func (d *Dispatcher) GetHandler(kind EventKind) Handler {
	return d.handlers[kind]
}
