package natsx

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

type NatsxProducer struct {
	c *NatsxClient
}

func NewNatsxProducer(c *NatsxClient) *NatsxProducer {
	return &NatsxProducer{c: c}
}

// Publish sends to the subject registered under biz.
func (p *NatsxProducer) Publish(_ context.Context, biz string, data []byte, hdr map[string]string) error {
	r, ok := p.c.route(biz)
	if !ok {
		return errors.Errorf("route not found: %s", biz)
	}
	msg := nats.NewMsg(r.Subject)
	msg.Data = data
	for k, v := range hdr {
		msg.Header.Set(k, v)
	}
	return p.c.nc.PublishMsg(msg)
}

// PublishOnce sends with a Nats-Msg-Id header so idempotent consumers can
// deduplicate redeliveries.
func (p *NatsxProducer) PublishOnce(ctx context.Context, biz string, data []byte, hdr map[string]string, msgID string) error {
	if hdr == nil {
		hdr = map[string]string{}
	}
	if msgID != "" {
		hdr["Nats-Msg-Id"] = msgID
	}
	return p.Publish(ctx, biz, data, hdr)
}
