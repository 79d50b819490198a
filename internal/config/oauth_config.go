package config

import "os"

type OAuthConfig interface {
	GetDiscordClientID() string
	GetDiscordClientSecret() string
	GetDiscordRedirectURI() string
	GetDiscordScopes() []string
}

// OAuth holds the Discord OAuth2 client settings.
type OAuth struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

var _ OAuthConfig = OAuth{}

func loadOAuth() OAuth {
	return OAuth{
		clientID:     os.Getenv("DISCORD_CLIENT_ID"),
		clientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		redirectURI:  GetEnv("DISCORD_REDIRECT_URI", "http://localhost:8080/auth/callback"),
	}
}

func (o OAuth) GetDiscordClientID() string {
	return o.clientID
}

func (o OAuth) GetDiscordClientSecret() string {
	return o.clientSecret
}

func (o OAuth) GetDiscordRedirectURI() string {
	return o.redirectURI
}

// GetDiscordScopes returns the scopes requested at login. "identify" covers
// the profile fetch, "guilds" the dashboard's guild listing.
func (OAuth) GetDiscordScopes() []string {
	return []string{"identify", "guilds"}
}
