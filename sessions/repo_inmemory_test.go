package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/sessions"
)

func newTestRepo(t *testing.T) *sessions.InMemoryRepo {
	t.Helper()
	repo := sessions.NewInMemoryRepo(time.Hour, 0)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testSession(userID string, expiresAt time.Time) sessions.Session {
	return sessions.Session{
		UserID:      userID,
		Username:    "tester",
		AccessToken: "discord-token",
		Nonce:       "nonce-1",
		ExpiresAt:   expiresAt,
	}
}

func TestInMemoryRepo_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	session := testSession("user-1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Set(ctx, session))

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "discord-token", got.AccessToken)
	require.Equal(t, "nonce-1", got.Nonce)

	require.NoError(t, repo.Delete(ctx, "user-1"))
	_, err = repo.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestInMemoryRepo_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := testSession("user-1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Set(ctx, first))

	second := first
	second.Nonce = "nonce-2"
	require.NoError(t, repo.Set(ctx, second))

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "nonce-2", got.Nonce)
}

func TestInMemoryRepo_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	expired := testSession("user-1", time.Now().Add(-time.Minute))
	require.NoError(t, repo.Set(ctx, expired))

	_, err := repo.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestInMemoryRepo_Cleanup(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Set(ctx, testSession("stale", time.Now().Add(-time.Minute))))
	require.NoError(t, repo.Set(ctx, testSession("live", time.Now().Add(time.Hour))))

	require.NoError(t, repo.Cleanup(ctx))

	_, err := repo.Get(ctx, "stale")
	require.ErrorIs(t, err, sessions.ErrNotFound)
	_, err = repo.Get(ctx, "live")
	require.NoError(t, err)
}

func TestInMemoryRepo_DeleteMissingIsNoError(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Delete(context.Background(), "ghost"))
}
