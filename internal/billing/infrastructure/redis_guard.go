// Package infrastructure holds the payment idempotency guard.
package infrastructure

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultGuardTTL bounds how long a payment reference stays claimed.
const DefaultGuardTTL = 24 * time.Hour

// RedisGuard claims payment references with SETNX so concurrent webhook
// deliveries do not race into project creation. It fails open: when Redis
// is unreachable the database unique constraint is the only guard.
type RedisGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisGuard creates a guard on rdb.
func NewRedisGuard(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisGuard{rdb: rdb, ttl: ttl, prefix: "patentdesk:payment:", logger: logger}
}

// NewRedisClient opens a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// Acquire reports whether this caller is the first to claim reference.
func (g *RedisGuard) Acquire(ctx context.Context, reference string) bool {
	ok, err := g.rdb.SetNX(ctx, g.prefix+reference, 1, g.ttl).Result()
	if err != nil {
		g.logger.WarnContext(ctx, "payment guard unavailable, allowing processing",
			"payment_reference", reference,
			"error", err,
		)
		return true
	}
	if !ok {
		g.logger.InfoContext(ctx, "payment reference already claimed", "payment_reference", reference)
	}
	return ok
}

// Release drops a claim so a failed attempt can be retried.
func (g *RedisGuard) Release(ctx context.Context, reference string) {
	if err := g.rdb.Del(ctx, g.prefix+reference).Err(); err != nil {
		g.logger.WarnContext(ctx, "failed to release payment guard",
			"payment_reference", reference,
			"error", err,
		)
	}
}

// Ping checks connectivity for readiness checks.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.rdb.Ping(ctx).Err()
}
