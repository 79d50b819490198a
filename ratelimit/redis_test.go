package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/ratelimit"
)

func newRedisLimiter(t *testing.T, max int, window time.Duration) (*ratelimit.RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := ratelimit.NewRedisLimiter(client, "guildboard", max, window)
	t.Cleanup(func() { _ = l.Close() })
	return l, mr
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	l, _ := newRedisLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		result, err := l.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, result.Allowed)
		require.Equal(t, 2-i, result.Remaining)
	}

	result, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Equal(t, 0, result.Remaining)
}

func TestRedisLimiter_WindowExpiresWithKey(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t, 1, time.Minute)

	first, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, first.Allowed)

	blocked, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, blocked.Allowed)

	mr.FastForward(2 * time.Minute)

	result, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func TestRedisLimiter_TTLSetOnlyOnFirstHit(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t, 10, time.Minute)

	_, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	ttlAfterFirst := mr.TTL("guildboard:ratelimit:1.2.3.4")
	require.Greater(t, ttlAfterFirst, time.Duration(0))

	mr.FastForward(10 * time.Second)
	_, err = l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	// Later hits must not refresh the window.
	require.LessOrEqual(t, mr.TTL("guildboard:ratelimit:1.2.3.4"), ttlAfterFirst)
}

func TestRedisLimiter_FallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t, 2, time.Minute)

	result, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, result.Allowed)

	// Kill Redis: decisions keep flowing from local counting instead of
	// failing the request.
	mr.Close()

	for i := 0; i < 2; i++ {
		result, err = l.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}
	result, err = l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, result.Allowed)
}
