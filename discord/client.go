// Package discord is the OAuth2 provider client: authorization URL
// construction, code exchange, and the REST lookups the dashboard needs.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/guildboard/guildboard/internal/config"
	"github.com/guildboard/guildboard/internal/httperr"
)

const (
	authorizeURL = "https://discord.com/oauth2/authorize"
	tokenURL     = "https://discord.com/api/oauth2/token"
	apiBaseURL   = "https://discord.com/api"

	// requestTimeout bounds every provider call so a stalled Discord
	// cannot pin request handlers.
	requestTimeout = 10 * time.Second
)

// User is the subset of the Discord /users/@me payload the dashboard uses.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Guild is one entry of /users/@me/guilds.
type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}

// Client talks to Discord's OAuth2 and REST endpoints.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// Option adjusts a Client, used by tests to point at a fake provider.
type Option func(*Client)

// WithBaseURL redirects all endpoints at the given server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
		c.oauth.Endpoint = oauth2.Endpoint{
			AuthURL:   base + "/oauth2/authorize",
			TokenURL:  base + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}
}

// New creates a provider client from the configured OAuth2 credentials.
func New(cfg config.OAuthConfig, opts ...Option) *Client {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = requestTimeout

	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.GetDiscordClientID(),
			ClientSecret: cfg.GetDiscordClientSecret(),
			RedirectURL:  cfg.GetDiscordRedirectURI(),
			Scopes:       cfg.GetDiscordScopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:   authorizeURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		baseURL:    apiBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the OAuth2 client credentials are present.
func (c *Client) Configured() bool {
	return c.oauth.ClientID != "" && c.oauth.ClientSecret != ""
}

// AuthCodeURL builds the provider authorization redirect for the given
// CSRF state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange swaps an authorization code for the user's access token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := retrieveErr.Response.StatusCode
			log.Warn().Int("status", status).Msg("discord: token exchange rejected")
			if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
				return "", httperr.Upstream(http.StatusUnauthorized, "Authorization code rejected", err)
			}
			return "", httperr.Upstream(http.StatusBadGateway, "Token exchange failed", err)
		}
		log.Warn().Err(err).Msg("discord: token exchange unreachable")
		return "", httperr.Upstream(http.StatusBadGateway, "Token exchange failed", err)
	}
	if tok.AccessToken == "" {
		return "", httperr.Upstream(http.StatusBadGateway, "Token exchange failed", errors.New("empty access token"))
	}
	return tok.AccessToken, nil
}

// FetchUser loads the profile of the token's owner.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/users/@me", accessToken, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, httperr.Upstream(http.StatusBadGateway, "Malformed profile response", nil)
	}
	return &user, nil
}

// FetchGuilds lists the guilds the token's owner belongs to.
func (c *Client) FetchGuilds(ctx context.Context, accessToken string) ([]Guild, error) {
	var guilds []Guild
	if err := c.getJSON(ctx, "/users/@me/guilds", accessToken, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

func (c *Client) getJSON(ctx context.Context, path, accessToken string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("discord: request failed")
		return httperr.Upstream(http.StatusBadGateway, "Discord unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("discord: token rejected")
		return httperr.Upstream(http.StatusUnauthorized, "Discord rejected the access token", nil)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("discord: unexpected response")
		return httperr.Upstream(http.StatusBadGateway, "Unexpected Discord response", nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return httperr.Upstream(http.StatusBadGateway, "Malformed Discord response", err)
	}
	return nil
}
