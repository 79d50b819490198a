package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/sessions"
)

func newRedisRepo(t *testing.T) (*sessions.RedisRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return sessions.NewRedisRepo(client, "guildboard", time.Hour), mr
}

func TestRedisRepo_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRedisRepo(t)

	session := testSession("user-1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Set(ctx, session))

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "discord-token", got.AccessToken)
	require.Equal(t, session.Nonce, got.Nonce)

	require.NoError(t, repo.Delete(ctx, "user-1"))
	_, err = repo.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestRedisRepo_KeyTTLExpiry(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t)

	session := testSession("user-1", time.Now().Add(time.Minute))
	require.NoError(t, repo.Set(ctx, session))

	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestRedisRepo_KeysAreNamespaced(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t)

	require.NoError(t, repo.Set(ctx, testSession("user-1", time.Now().Add(time.Hour))))
	require.True(t, mr.Exists("guildboard:session:user-1"))
}
