package server

const (
	RouteLogin    = "/auth/login"
	RouteCallback = "/auth/callback"
	RouteLogout   = "/auth/logout"

	RouteAPIMe     = "/api/me"
	RouteAPIGuilds = "/api/guilds"

	RouteHealth = "/healthz"
)
