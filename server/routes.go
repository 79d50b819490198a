package server

func (s *Server) initRoutes() {
	// Every route sits behind the rate limiter; protected routes add the
	// request authenticator on top.
	base := s.APIMiddleware()
	authed := append(s.APIMiddleware(), s.RequireAuth())

	// Browser preflights arrive as OPTIONS before the real request. The
	// method-specific patterns below would 405 them at the mux, so they get
	// their own route; the CORS middleware answers the cross-origin ones.
	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(s.PreflightHandler(), base...))

	// LOGIN FLOW
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), base...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), base...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), authed...))

	// DASHBOARD API
	s.RegisterRouteFunc("GET "+RouteAPIMe, ChainMiddleware(s.MeHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteAPIGuilds, ChainMiddleware(s.GuildsHandler(), authed...))

	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), base...))
}
