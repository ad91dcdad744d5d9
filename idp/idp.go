// Package idp wraps the upstream OpenID Connect identity provider. This
// service is a relying party: the provider owns authentication and consent,
// we only exchange codes, refresh tokens and read the userinfo endpoint.
package idp

import "context"

// Tokens is the credential set handed back by the provider after a
// successful code exchange.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// Profile is the subset of userinfo claims the customer directory needs.
type Profile struct {
	Username   string
	Email      string
	GivenName  string
	FamilyName string
}

// Client is the provider contract the handlers depend on. The production
// implementation is Provider; tests substitute fakes.
type Client interface {
	// AuthCodeURL builds the provider's authorization URL for a login redirect.
	AuthCodeURL(state, nonce, codeVerifier string) string

	// Exchange trades an authorization code for the provider's token set.
	Exchange(ctx context.Context, code, codeVerifier string) (Tokens, error)

	// Refresh performs the refresh-token exchange and returns the new access
	// token. An exchange that yields no usable access token is an error.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// UserInfo fetches the profile for an access token.
	UserInfo(ctx context.Context, accessToken string) (Profile, error)
}
