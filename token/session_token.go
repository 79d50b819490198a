package token

import (
	"context"
	"errors"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/guildboard/guildboard/internal/config"
	"github.com/guildboard/guildboard/sessions"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	// ErrNotConfigured means the signing secret is missing from the
	// environment. Verification cannot proceed at all.
	ErrNotConfigured = errors.New("session token signing not configured")

	// ErrInvalidToken means the token failed cryptographic validation:
	// bad signature, malformed, or past its exp claim.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrSessionRevoked means the signature checked out but the backing
	// session is gone, expired, or was re-issued with a different nonce.
	ErrSessionRevoked = errors.New("session revoked")
)

// SessionClaims is the payload of an issued session token. The subject is
// the Discord user ID; Nonce ties the token to one server-side session.
type SessionClaims struct {
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Nonce    string `json:"nonce"`
	jwtlib.RegisteredClaims
}

// Manager issues and verifies session tokens. A token is only
// authoritative while the session it names is live and its nonce matches;
// the signature alone is necessary but not sufficient.
type Manager struct {
	cfg      config.SecurityConfig
	sessions sessions.Repo

	mu     sync.Mutex
	signer Signer // lazily created from the configured secret
}

// New creates a Manager. The signing secret is read from cfg on first use
// and cached; an empty secret fails every operation with ErrNotConfigured.
func New(cfg config.SecurityConfig, sessionRepo sessions.Repo) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: sessionRepo,
	}
}

func (m *Manager) getSigner() (Signer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.signer != nil {
		return m.signer, nil
	}
	secret := m.cfg.GetSessionSecret()
	if secret == "" {
		return nil, ErrNotConfigured
	}
	m.signer = NewHMACSigner(secret)
	return m.signer, nil
}

// Issue signs a session token for the given session. The token expiry
// mirrors the session TTL so both die together.
func (m *Manager) Issue(session sessions.Session) (string, error) {
	signer, err := m.getSigner()
	if err != nil {
		return "", err
	}

	now := NowTimeFunc()
	claims := &SessionClaims{
		Username: session.Username,
		Avatar:   session.Avatar,
		Nonce:    session.Nonce,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(session.ExpiresAt),
			ID:        uuid.New().String(),
		},
	}
	return signer.Sign(claims)
}

// Verify runs the two-tier check: stateless signature validation first,
// then the stateful nonce match against the live session. Logout rotates
// the session away, which flips still-unexpired tokens to ErrSessionRevoked.
func (m *Manager) Verify(ctx context.Context, tokenString string) (*SessionClaims, error) {
	signer, err := m.getSigner()
	if err != nil {
		return nil, err
	}

	claims := &SessionClaims{}
	parsed, err := jwtlib.ParseWithClaims(tokenString, claims, signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Nonce == "" {
		return nil, ErrInvalidToken
	}

	session, err := m.sessions.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}
	if session.Nonce != claims.Nonce {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}
