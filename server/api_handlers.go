package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/guildboard/guildboard/auth"
	"github.com/guildboard/guildboard/internal/httperr"
	"github.com/guildboard/guildboard/sessions"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	_ = json.NewEncoder(w).Encode(v)
}

// MeHandler reports the resolved principal: kind plus, for browser
// sessions, the identity claims from the session token.
func (s *Server) MeHandler() http.HandlerFunc {
	type userInfo struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Avatar   string `json:"avatar,omitempty"`
	}
	type response struct {
		Principal string    `json:"principal"`
		User      *userInfo `json:"user,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFrom(r.Context())
		if !ok {
			httperr.Write(w, httperr.Credential("Unauthorized"))
			return
		}

		resp := response{Principal: string(principal.Kind)}
		if principal.Kind == auth.PrincipalOAuth && principal.Claims != nil {
			resp.User = &userInfo{
				ID:       principal.Claims.Subject,
				Username: principal.Claims.Username,
				Avatar:   principal.Claims.Avatar,
			}
		}
		writeJSON(w, resp)
	}
}

// GuildsHandler proxies the user's guild list from Discord using the
// server-held access token. The token itself never appears in the response.
func (s *Server) GuildsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requireOAuthPrincipal(w, r)
		if !ok {
			return
		}

		session, err := s.sessions.Get(r.Context(), principal.Claims.Subject)
		if err != nil {
			if errors.Is(err, sessions.ErrNotFound) {
				httperr.Write(w, httperr.Credential("Session expired"))
				return
			}
			log.Error().Err(err).Msg("failed to load session for guild listing")
			httperr.WriteStatus(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		guilds, err := s.discord.FetchGuilds(r.Context(), session.AccessToken)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, guilds)
	}
}

// HealthHandler is the unauthenticated liveness probe.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}
}
