// Package auth builds authenticated HTTP clients for the scheduling API:
// OAuth2 client credentials when a token URL is configured, a static bearer
// token otherwise.
package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Conf represents the configuration needed for authentication.
type Conf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
	// Token is a static bearer token used when TokenURL is empty.
	Token string `json:"token"`
}

func (c Conf) clientCredentials() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}

// TokenSource returns the token source described by c, or nil when no
// credentials are configured.
func (c Conf) TokenSource(ctx context.Context) oauth2.TokenSource {
	switch {
	case c.TokenURL != "":
		cc := c.clientCredentials()
		return cc.TokenSource(ctx)
	case c.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"})
	}
	return nil
}

// HTTPClient returns a client adding the Authorization header to every
// request. Tokens fetched with client credentials are cached and refreshed
// on expiry. Without credentials it returns http.DefaultClient.
func (c Conf) HTTPClient(ctx context.Context) *http.Client {
	ts := c.TokenSource(ctx)
	if ts == nil {
		return http.DefaultClient
	}
	return oauth2.NewClient(ctx, ts)
}
