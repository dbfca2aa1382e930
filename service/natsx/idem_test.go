package natsx

import (
	"context"
	"testing"
	"time"
)

func TestMemIdemSeenOnce(t *testing.T) {
	store := NewMemIdem(time.Minute)
	seen, err := store.SeenOnce("msg-1", 0)
	if err != nil || seen {
		t.Fatalf("first sight: seen=%v err=%v", seen, err)
	}
	seen, _ = store.SeenOnce("msg-1", 0)
	if !seen {
		t.Fatalf("second sight must report seen")
	}
	seen, _ = store.SeenOnce("msg-2", 0)
	if seen {
		t.Fatalf("different key must not be seen")
	}
}

func TestIdemMiddlewareSkipsDuplicates(t *testing.T) {
	calls := 0
	h := NatsxChain(func(context.Context, NatsxMessage) error {
		calls++
		return nil
	}, NatsxIdemMiddleware(NewMemIdem(time.Minute), time.Minute))

	msg := NatsxMessage{
		Subject: "edu.notify.user",
		Data:    []byte(`{"user":"alice"}`),
		Header:  map[string]string{"Nats-Msg-Id": "m1"},
	}
	for i := 0; i < 3; i++ {
		if err := h(context.Background(), msg); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("duplicates must be skipped, calls=%d", calls)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) NatsxMiddleware {
		return func(next NatsxHandler) NatsxHandler {
			return func(ctx context.Context, m NatsxMessage) error {
				order = append(order, name)
				return next(ctx, m)
			}
		}
	}
	h := NatsxChain(func(context.Context, NatsxMessage) error {
		order = append(order, "handler")
		return nil
	}, mk("outer"), mk("inner"))

	_ = h(context.Background(), NatsxMessage{})
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Fatalf("order: %v", order)
	}
}
