package token_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/sessions"
	"github.com/guildboard/guildboard/token"
)

// securityStub satisfies config.SecurityConfig with fixed values.
type securityStub struct {
	sessionSecret string
}

func (s securityStub) GetAPISecret() string            { return "" }
func (s securityStub) GetSessionSecret() string        { return s.sessionSecret }
func (securityStub) GetSessionTTL() time.Duration      { return time.Hour }
func (securityStub) GetStateTTL() time.Duration        { return 10 * time.Minute }
func (securityStub) GetStateCapacity() int             { return 10000 }
func (securityStub) GetStateEvictFraction() float64    { return 0.1 }
func (securityStub) GetRateLimitMax() int              { return 60 }
func (securityStub) GetRateLimitWindow() time.Duration { return time.Minute }

type fixture struct {
	repo    *sessions.InMemoryRepo
	manager *token.Manager
	session sessions.Session
}

func setup(t *testing.T, secret string) *fixture {
	t.Helper()

	repo := sessions.NewInMemoryRepo(time.Hour, 0)
	t.Cleanup(func() { _ = repo.Close() })

	return &fixture{
		repo:    repo,
		manager: token.New(securityStub{sessionSecret: secret}, repo),
		session: sessions.Session{
			UserID:      "user-1",
			Username:    "tester",
			Avatar:      "a1b2c3",
			AccessToken: "discord-token",
			Nonce:       "nonce-1",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
}

func TestManager_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "signing-secret")
	require.NoError(t, f.repo.Set(ctx, f.session))

	signed, err := f.manager.Issue(f.session)
	require.NoError(t, err)
	require.Len(t, strings.Split(signed, "."), 3)

	claims, err := f.manager.Verify(ctx, signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "tester", claims.Username)
	require.Equal(t, "a1b2c3", claims.Avatar)
	require.Equal(t, "nonce-1", claims.Nonce)
}

func TestManager_NotConfigured(t *testing.T) {
	f := setup(t, "")

	_, err := f.manager.Issue(f.session)
	require.ErrorIs(t, err, token.ErrNotConfigured)

	_, err = f.manager.Verify(context.Background(), "whatever")
	require.ErrorIs(t, err, token.ErrNotConfigured)
}

func TestManager_LogoutRevokesUnexpiredToken(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "signing-secret")
	require.NoError(t, f.repo.Set(ctx, f.session))

	signed, err := f.manager.Issue(f.session)
	require.NoError(t, err)

	_, err = f.manager.Verify(ctx, signed)
	require.NoError(t, err)

	// Logout: the token is still signature-valid and unexpired, but the
	// backing session is gone.
	require.NoError(t, f.repo.Delete(ctx, f.session.UserID))
	_, err = f.manager.Verify(ctx, signed)
	require.ErrorIs(t, err, token.ErrSessionRevoked)
}

func TestManager_ReloginRotatesNonce(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "signing-secret")
	require.NoError(t, f.repo.Set(ctx, f.session))

	oldToken, err := f.manager.Issue(f.session)
	require.NoError(t, err)

	relogin := f.session
	relogin.Nonce = "nonce-2"
	require.NoError(t, f.repo.Set(ctx, relogin))

	_, err = f.manager.Verify(ctx, oldToken)
	require.ErrorIs(t, err, token.ErrSessionRevoked)

	newToken, err := f.manager.Issue(relogin)
	require.NoError(t, err)
	claims, err := f.manager.Verify(ctx, newToken)
	require.NoError(t, err)
	require.Equal(t, "nonce-2", claims.Nonce)
}

func TestManager_TamperedTokenRejected(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "signing-secret")
	require.NoError(t, f.repo.Set(ctx, f.session))

	signed, err := f.manager.Issue(f.session)
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = f.manager.Verify(ctx, tampered)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestManager_WrongKeyRejected(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "signing-secret")
	other := setup(t, "different-secret")
	require.NoError(t, other.repo.Set(ctx, other.session))

	signed, err := f.manager.Issue(f.session)
	require.NoError(t, err)

	_, err = other.manager.Verify(ctx, signed)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestManager_ExpiredTokenRejected(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "signing-secret")

	expired := f.session
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	// Issue against an already-past expiry; the signature is fine but the
	// exp claim is not.
	signed, err := f.manager.Issue(expired)
	require.NoError(t, err)

	_, err = f.manager.Verify(ctx, signed)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}
