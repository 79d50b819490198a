package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/guildboard/guildboard/auth"
	"github.com/guildboard/guildboard/discord"
	"github.com/guildboard/guildboard/internal/config"
	"github.com/guildboard/guildboard/ratelimit"
	"github.com/guildboard/guildboard/server/statestore"
	"github.com/guildboard/guildboard/sessions"
	"github.com/guildboard/guildboard/token"
)

// Deps are the constructed stores and clients the server routes through.
// Building them at startup and passing them in keeps every piece of state
// owned by the application context rather than package-level variables.
type Deps struct {
	Sessions sessions.Repo
	States   *statestore.Store
	Tokens   *token.Manager
	Discord  *discord.Client
	Limiter  ratelimit.Limiter
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	authenticator *auth.Authenticator
	sessions      sessions.Repo
	states        *statestore.Store
	tokens        *token.Manager
	discord       *discord.Client
	limiter       ratelimit.Limiter
}

func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		env:           cfg.GetEnv(),
		mux:           http.NewServeMux(),
		config:        cfg,
		authenticator: auth.NewAuthenticator(auth.NewSecretValidator(cfg.GetAPISecret()), deps.Tokens),
		sessions:      deps.Sessions,
		states:        deps.States,
		tokens:        deps.Tokens,
		discord:       deps.Discord,
		limiter:       deps.Limiter,
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Close releases the stores and limiters the server was handed. Safe to
// call once at shutdown; background sweeps stop without leaking timers.
func (s *Server) Close() {
	s.states.Close()
	if err := s.sessions.Close(); err != nil {
		log.Warn().Err(err).Msg("closing session store")
	}
	if err := s.limiter.Close(); err != nil {
		log.Warn().Err(err).Msg("closing rate limiter")
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
