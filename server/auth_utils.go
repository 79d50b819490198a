package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/guildboard/guildboard/auth"
)

// SetSessionCookie delivers the signed session token to the browser. It is
// httpOnly so the raw Discord credential never needs to travel in a URL
// fragment or be readable from script.
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionToken string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearSessionCookie expires the session cookie on logout.
func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// clientIP keys the rate limiter. The first X-Forwarded-For hop wins when
// a proxy fronts the API, otherwise the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.SplitN(forwarded, ",", 2)[0]
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// allowedRedirectTarget gates the post-login redirect so a misconfigured
// target cannot become an open redirect. HTTPS is always allowed; plain
// HTTP only for loopback hosts outside production.
func (s *Server) allowedRedirectTarget(target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "https":
		return true
	case "http":
		return s.env != "PROD" && isLoopbackHost(u.Hostname())
	default:
		return false
	}
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
