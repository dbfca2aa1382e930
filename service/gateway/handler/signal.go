package handler

import (
	"EduProject/service/gateway"
	"EduProject/tools/decode"
	errs "EduProject/tools/errs"
)

type SignalHandler struct{}

func NewSignalHandler() gateway.Handler { return &SignalHandler{} }

func (h *SignalHandler) Kind() gateway.EventKind { return gateway.KindSignal }

func (h *SignalHandler) Handle(ctx *gateway.Context, f *gateway.InboundFrame, conn *gateway.WsConn) error {
	p, err := decode.DecodeMap[gateway.SignalPayload](f.Payload)
	if err != nil {
		return errs.ErrProtocol.WithDetail(err.Error())
	}
	if p.To == "" {
		return errs.ErrProtocol.WithDetail("signal: empty recipient")
	}

	// opaque pass-through; every device of the recipient is notified
	ctx.S.Relay(conn.Identity, p.To, p.Payload)
	return nil
}
