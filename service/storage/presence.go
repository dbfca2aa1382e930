package storage

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"EduProject/logger"
	"EduProject/tools/safe"
)

// PresenceMirror writes online/offline transitions into Redis so services on
// other nodes can answer "is this user online, and on which gateway" without
// asking the gateway. The in-memory registry stays the source of truth; a
// mirror write failure is logged and never blocks the connection path.
type PresenceMirror struct {
	rdb    *goredis.Client
	nodeID string
	ttl    time.Duration

	stopCh chan struct{}
	ticker *time.Ticker
}

const presenceKeyPrefix = "edu:presence:"

func presenceKey(user string) string { return presenceKeyPrefix + user }

// NewPresenceMirror starts a refresh loop that re-extends the TTL of live
// keys so a crashed gateway's entries expire on their own.
func NewPresenceMirror(rdb *goredis.Client, nodeID string, ttl time.Duration) *PresenceMirror {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &PresenceMirror{
		rdb:    rdb,
		nodeID: nodeID,
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
}

// Online implements gateway.PresenceListener.
func (pm *PresenceMirror) Online(identity string) {
	safe.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pm.rdb.Set(ctx, presenceKey(identity), pm.nodeID, pm.ttl).Err(); err != nil {
			logger.Warnf("[PresenceMirror] set %s failed: %v", identity, err)
		}
	})
}

// Offline implements gateway.PresenceListener.
func (pm *PresenceMirror) Offline(identity string) {
	safe.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pm.rdb.Del(ctx, presenceKey(identity)).Err(); err != nil {
			logger.Warnf("[PresenceMirror] del %s failed: %v", identity, err)
		}
	})
}

// StartRefresh extends the TTLs of all users the snapshot function reports as
// online. Call once after the gateway starts.
func (pm *PresenceMirror) StartRefresh(snapshot func() []string) {
	interval := pm.ttl / 3
	if interval < time.Second {
		interval = time.Second
	}
	pm.ticker = time.NewTicker(interval)
	safe.SafeGo(func() {
		for {
			select {
			case <-pm.stopCh:
				return
			case <-pm.ticker.C:
				pm.refresh(snapshot())
			}
		}
	})
}

func (pm *PresenceMirror) refresh(users []string) {
	if len(users) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pipe := pm.rdb.Pipeline()
	for _, u := range users {
		pipe.Set(ctx, presenceKey(u), pm.nodeID, pm.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warnf("[PresenceMirror] refresh %d users failed: %v", len(users), err)
	}
}

func (pm *PresenceMirror) Stop() {
	if pm.ticker != nil {
		pm.ticker.Stop()
	}
	select {
	case <-pm.stopCh:
	default:
		close(pm.stopCh)
	}
}

// GatewayOf answers which node currently holds the user, for remote callers.
func (pm *PresenceMirror) GatewayOf(ctx context.Context, user string) (string, error) {
	v, err := pm.rdb.Get(ctx, presenceKey(user)).Result()
	if err == goredis.Nil {
		return "", fmt.Errorf("user %s not online", user)
	}
	return v, err
}
