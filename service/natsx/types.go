package natsx

import "context"

// NatsxMessage is the transport-agnostic view handed to handlers.
type NatsxMessage struct {
	Subject string
	Data    []byte
	Header  map[string]string
}

type NatsxHandler func(ctx context.Context, msg NatsxMessage) error

type NatsxMiddleware func(next NatsxHandler) NatsxHandler

// NatsxChain applies middlewares outermost-first.
func NatsxChain(h NatsxHandler, mws ...NatsxMiddleware) NatsxHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
