package sessions

import "time"

// Session is the server-side record backing a logged-in user. The Discord
// access token lives only here; the browser holds a signed session token
// whose nonce must match Nonce for the session to count as live. Rotating
// the nonce (logout, re-login) revokes every previously issued token.
type Session struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Avatar      string    `json:"avatar"`
	AccessToken string    `json:"access_token"`
	Nonce       string    `json:"nonce"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its TTL.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
