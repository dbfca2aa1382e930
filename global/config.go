package global

import (
	"sync"
	"time"

	"EduProject/middleware"
	"EduProject/service/natsx"
	storeredis "EduProject/service/storage/redis"
	"EduProject/tools"
	"EduProject/tools/ids"
)

var (
	jwtOnce   sync.Once
	jwtSecret []byte
)

// GetJwtSecret reads JWT_SECRET once. The dev fallback matches what the
// auth middleware uses so local runs work without any setup.
func GetJwtSecret() []byte {
	jwtOnce.Do(func() {
		jwtSecret = []byte(tools.GetEnv("JWT_SECRET", "dev-secret"))
	})
	return jwtSecret
}

// ConfigIds seeds the snowflake node from GATEWAY_NODE_ID.
func ConfigIds() {
	ids.SetNodeID(int64(tools.GetEnvInt("GATEWAY_NODE_ID", 1)))
}

// ConfigMiddleware installs the default middleware set.
func ConfigMiddleware() {
	middleware.Config()
	m := middleware.Manager()
	m.Add(middleware.Origin())
}

// RedisConfigFromEnv builds the Redis config; Addr empty means disabled.
func RedisConfigFromEnv() storeredis.Config {
	return storeredis.Config{
		Addr:     tools.GetEnv("REDIS_ADDR", ""),
		Password: tools.GetEnv("REDIS_PASSWORD", ""),
		DB:       tools.GetEnvInt("REDIS_DB", 0),
		PoolSize: tools.GetEnvInt("REDIS_POOL_SIZE", 10),
	}
}

// NatsConfigFromEnv builds the NATS config; empty Servers means disabled.
func NatsConfigFromEnv(name string) natsx.NatsxConfig {
	url := tools.GetEnv("NATS_URL", "")
	cfg := natsx.NatsxConfig{
		Name:          name,
		ReconnectWait: 500 * time.Millisecond,
		Timeout:       3 * time.Second,
	}
	if url != "" {
		cfg.Servers = []string{url}
	}
	return cfg
}
