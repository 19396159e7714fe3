package redis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect dials addr and verifies it with a PING. It returns nil with a no-op
// cleanup when addr is empty or unreachable, so callers can fall back to
// in-memory adapters.
func Connect(ctx context.Context, addr string, logger *slog.Logger) (goredis.UniversalClient, func()) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		if logger != nil {
			logger.Warn("REDIS_ADDR not set, falling back to in-process idempotency store")
		}
		return nil, func() {}
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		PoolSize:     50,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger != nil {
			logger.Warn("failed to connect to redis, falling back to in-process idempotency store",
				slog.String("addr", addr), slog.String("error", err.Error()))
		}
		_ = client.Close()
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("redis connection established", slog.String("addr", addr))
	}
	return client, func() { _ = client.Close() }
}
