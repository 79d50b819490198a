package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisLimiter counts requests in Redis so every API instance shares one
// window per key. When Redis is unreachable it delegates to an embedded
// MemoryLimiter: degraded local counting rather than fail-open or
// fail-closed.
type RedisLimiter struct {
	client    redis.UniversalClient
	keyPrefix string
	max       int
	window    time.Duration
	fallback  *MemoryLimiter
	degraded  atomic.Bool
}

// NewRedisLimiter wraps an existing client. The caller owns the client's
// lifecycle; Close here only stops the embedded fallback.
func NewRedisLimiter(client redis.UniversalClient, keyPrefix string, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		max:       max,
		window:    window,
		fallback:  NewMemoryLimiter(max, window, window),
	}
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (Result, error) {
	fullKey := fmt.Sprintf("%s:ratelimit:%s", l.keyPrefix, key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pttl := pipe.PTTL(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return l.delegate(ctx, key, err)
	}

	count := incr.Val()
	ttl := pttl.Val()
	// PTTL of -1 means the INCR just created the key; stamp the window on
	// it exactly once so the counter expires on its own.
	if ttl < 0 {
		ttl = l.window
		if err := l.client.PExpire(ctx, fullKey, l.window).Err(); err != nil {
			return l.delegate(ctx, key, err)
		}
	}

	if l.degraded.Swap(false) {
		log.Info().Msg("rate limiter: redis recovered, distributed counting resumed")
	}

	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   NowTimeFunc().Add(ttl),
	}, nil
}

// delegate routes the decision to the in-memory fallback. The transition
// into degraded mode is logged once, not per request.
func (l *RedisLimiter) delegate(ctx context.Context, key string, cause error) (Result, error) {
	if !l.degraded.Swap(true) {
		log.Warn().Err(cause).Msg("rate limiter: redis unavailable, falling back to local counting")
	}
	return l.fallback.Check(ctx, key)
}

func (l *RedisLimiter) Close() error {
	return l.fallback.Close()
}

var _ Limiter = (*RedisLimiter)(nil)
