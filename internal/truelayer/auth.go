package truelayer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Credentials identify the TrueLayer application used for the OAuth2 flow.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Token is the persisted connection state for one TrueLayer consent.
// AccessTokenExpiry is a unix timestamp in seconds.
type Token struct {
	DisplayName       string `json:"display_name"`
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
	RefreshToken      string `json:"refresh_token"`
}

const (
	authURL     = "https://auth.truelayer.com/"
	tokenURL    = "https://auth.truelayer.com/connect/token"
	redirectURL = "https://console.truelayer.com/redirect-page"
)

// OAuth2Config builds the oauth2 configuration for the TrueLayer auth flow.
func OAuth2Config(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
		Scopes: []string{
			"accounts", "balance", "info", "offline_access",
			"transactions", "cards", "direct_debits", "standing_orders",
		},
	}
}

// AuthCodeURL returns the URL the user visits to grant consent. Mock and
// open-banking provider flags are enabled so every supported bank shows up
// in the picker.
func AuthCodeURL(creds Credentials) string {
	cfg := OAuth2Config(creds)
	return cfg.AuthCodeURL("state",
		oauth2.SetAuthURLParam("enable_mock", "true"),
		oauth2.SetAuthURLParam("enable_oauth_providers", "true"),
		oauth2.SetAuthURLParam("enable_open_banking_providers", "true"),
		oauth2.SetAuthURLParam("enable_credentials_sharing_providers", "true"),
	)
}

// Authorize exchanges a consent code for a fresh Token.
func Authorize(ctx context.Context, creds Credentials, code string) (*Token, error) {
	cfg := OAuth2Config(creds)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize with truelayer: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("truelayer token response missing refresh token")
	}
	return &Token{
		DisplayName:       "unknown",
		AccessToken:       tok.AccessToken,
		AccessTokenExpiry: tok.Expiry.Unix(),
		RefreshToken:      tok.RefreshToken,
	}, nil
}

// Refresh renews the access token if it has expired, mutating token in
// place. The first return reports whether the token changed and needs to be
// saved back to the config store.
func Refresh(ctx context.Context, creds Credentials, token *Token) (bool, error) {
	if time.Now().Unix() < token.AccessTokenExpiry {
		return false, nil
	}

	cfg := OAuth2Config(creds)
	source := cfg.TokenSource(ctx, &oauth2.Token{
		RefreshToken: token.RefreshToken,
		Expiry:       time.Unix(token.AccessTokenExpiry, 0),
	})
	fresh, err := source.Token()
	if err != nil {
		return false, fmt.Errorf("failed to refresh truelayer token: %w", err)
	}

	token.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		token.RefreshToken = fresh.RefreshToken
	}
	token.AccessTokenExpiry = fresh.Expiry.Unix()
	return true, nil
}
