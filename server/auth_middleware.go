package server

import (
	"net/http"

	"github.com/guildboard/guildboard/auth"
	"github.com/guildboard/guildboard/internal/httperr"
)

// RequireAuth resolves the request's principal through the ordered
// authenticator chain and attaches it to the request context. Downstream
// handlers read it back with auth.PrincipalFrom.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, err := s.authenticator.Authenticate(r)
			if err != nil {
				httperr.Write(w, err)
				return
			}
			next(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		}
	}
}

// requireOAuthPrincipal returns the oauth principal or writes the error.
// Routes that proxy the user's own Discord data have no meaning for the
// shared-secret caller.
func requireOAuthPrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httperr.Write(w, httperr.Credential("Unauthorized"))
		return auth.Principal{}, false
	}
	if principal.Kind != auth.PrincipalOAuth || principal.Claims == nil {
		httperr.WriteStatus(w, http.StatusForbidden, "OAuth session required")
		return auth.Principal{}, false
	}
	return principal, true
}
