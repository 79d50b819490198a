package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/guildboard/guildboard/internal/httperr"
	"github.com/guildboard/guildboard/token"
)

const (
	// APISecretHeader carries the backend-to-backend shared secret.
	APISecretHeader = "X-API-Secret"
	// SessionCookieName carries the browser session token.
	SessionCookieName = "guildboard_session"
)

// Decision is the tri-state outcome of one strategy. Making the rejection
// explicit is what guarantees a failed credential never falls through to a
// weaker strategy further down the list.
type Decision int

const (
	// DecisionNotApplicable means the strategy's credential was absent.
	DecisionNotApplicable Decision = iota
	// DecisionAuthenticated means the strategy resolved a principal.
	DecisionAuthenticated
	// DecisionRejected means the credential was present and wrong.
	DecisionRejected
)

// Strategy authenticates one credential class.
type Strategy interface {
	Authenticate(r *http.Request) (Decision, Principal, error)
}

// Authenticator evaluates strategies in order and stops at the first one
// whose credential is present, whether it passes or fails.
type Authenticator struct {
	strategies []Strategy
}

// NewAuthenticator builds the standard chain: shared secret first, then
// bearer session token.
func NewAuthenticator(secrets *SecretValidator, tokens *token.Manager) *Authenticator {
	return &Authenticator{
		strategies: []Strategy{
			&secretStrategy{validator: secrets},
			&bearerStrategy{tokens: tokens},
		},
	}
}

// Authenticate resolves the request's principal or returns the taxonomy
// error to send. No credential at all is a 401.
func (a *Authenticator) Authenticate(r *http.Request) (Principal, error) {
	for _, s := range a.strategies {
		decision, principal, err := s.Authenticate(r)
		switch decision {
		case DecisionAuthenticated:
			return principal, nil
		case DecisionRejected:
			return Principal{}, err
		}
	}
	return Principal{}, httperr.Credential("Unauthorized")
}

// secretStrategy matches the shared-secret header. A present header with
// no secret configured server-side is a rejection, not a skip: an
// explicitly offered credential must never degrade to the JWT path.
type secretStrategy struct {
	validator *SecretValidator
}

func (s *secretStrategy) Authenticate(r *http.Request) (Decision, Principal, error) {
	candidate := r.Header.Get(APISecretHeader)
	if candidate == "" {
		return DecisionNotApplicable, Principal{}, nil
	}
	if !s.validator.Configured() || !s.validator.Matches(candidate) {
		return DecisionRejected, Principal{}, httperr.Credential("Invalid API secret")
	}
	return DecisionAuthenticated, Principal{Kind: PrincipalAPISecret}, nil
}

// bearerStrategy verifies a session token from the Authorization header or
// the session cookie.
type bearerStrategy struct {
	tokens *token.Manager
}

func (s *bearerStrategy) Authenticate(r *http.Request) (Decision, Principal, error) {
	raw := bearerToken(r)
	if raw == "" {
		return DecisionNotApplicable, Principal{}, nil
	}

	claims, err := s.tokens.Verify(r.Context(), raw)
	if err != nil {
		return DecisionRejected, Principal{}, mapTokenError(err)
	}
	return DecisionAuthenticated, Principal{Kind: PrincipalOAuth, Claims: claims}, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrNotConfigured):
		return httperr.Configuration("Session not configured")
	case errors.Is(err, token.ErrInvalidToken):
		return httperr.Credential("Invalid session token")
	case errors.Is(err, token.ErrSessionRevoked):
		return httperr.Credential("Session expired")
	default:
		return err
	}
}
