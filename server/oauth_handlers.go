package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/guildboard/guildboard/auth"
	"github.com/guildboard/guildboard/internal/httperr"
	"github.com/guildboard/guildboard/sessions"
)

// LoginHandler starts the authorization-code flow: mint a CSRF state and
// send the browser to Discord.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.discord.Configured() {
			httperr.Write(w, httperr.Configuration("OAuth not configured"))
			return
		}

		state, err := s.states.Generate()
		if err != nil {
			log.Error().Err(err).Msg("failed to generate login state")
			httperr.WriteStatus(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		http.Redirect(w, r, s.discord.AuthCodeURL(state), http.StatusFound)
	}
}

// CallbackHandler finishes the flow. The state is consumed before anything
// else so a replayed callback dies at the door even if a later step failed
// the first time. Failures respond with a JSON body directly; redirecting
// would leak error detail through a URL.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		code := query.Get("code")
		if code == "" {
			httperr.Write(w, httperr.BadRequest("Missing authorization code"))
			return
		}

		state := query.Get("state")
		if state == "" || !s.states.ValidateAndConsume(state) {
			httperr.Write(w, httperr.Csrf("Invalid or expired state"))
			return
		}

		accessToken, err := s.discord.Exchange(r.Context(), code)
		if err != nil {
			httperr.Write(w, err)
			return
		}

		user, err := s.discord.FetchUser(r.Context(), accessToken)
		if err != nil {
			httperr.Write(w, err)
			return
		}

		ttl := s.config.GetSessionTTL()
		session := sessions.Session{
			UserID:      user.ID,
			Username:    user.Username,
			Avatar:      user.Avatar,
			AccessToken: accessToken,
			Nonce:       uuid.New().String(),
			ExpiresAt:   time.Now().Add(ttl),
		}
		if err := s.sessions.Set(r.Context(), session); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to store session")
			httperr.WriteStatus(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		sessionToken, err := s.tokens.Issue(session)
		if err != nil {
			httperr.Write(w, httperr.Configuration("Session not configured"))
			return
		}

		target := s.config.GetDashboardURL()
		if !s.allowedRedirectTarget(target) {
			log.Error().Str("target", target).Msg("dashboard redirect target not allow-listed")
			httperr.Write(w, httperr.Configuration("Invalid dashboard redirect"))
			return
		}

		s.SetSessionCookie(w, r, sessionToken, int(ttl.Seconds()))
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// LogoutHandler deletes the server-side session, which revokes every
// outstanding session token for the user via the nonce check.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFrom(r.Context())
		if !ok {
			httperr.Write(w, httperr.Credential("Unauthorized"))
			return
		}

		if principal.Kind == auth.PrincipalOAuth && principal.Claims != nil {
			if err := s.sessions.Delete(r.Context(), principal.Claims.Subject); err != nil {
				log.Warn().Err(err).Msg("failed to delete session on logout")
			}
		}
		s.ClearSessionCookie(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}
