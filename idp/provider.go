package idp

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/tunnelmesh/go-tunnel-backend/internal/config"
	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

// Provider is the go-oidc backed Client. Discovery runs once at
// construction; the token and userinfo endpoints come from the provider's
// metadata document.
type Provider struct {
	provider    *oidc.Provider
	oauthConfig *oauth2.Config
}

var _ Client = (*Provider)(nil)

func NewProvider(ctx context.Context, cfg config.OidcConfig) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetOidcIssuer())
	if err != nil {
		return nil, errors.Wrap(err, "[idp.NewProvider] discovery failed")
	}

	return &Provider{
		provider: provider,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GetOidcClientID(),
			ClientSecret: cfg.GetOidcClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.GetOidcRedirectURL(),
			Scopes:       cfg.GetOidcScopes(),
		},
	}, nil
}

func (p *Provider) AuthCodeURL(state, nonce, codeVerifier string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(codeVerifier),
	)
}

func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (Tokens, error) {
	oauth2Token, err := p.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return Tokens{}, errors.Wrap(err, "[Provider.Exchange] code exchange failed")
	}

	tokens := Tokens{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
	}
	if rawIDToken, ok := oauth2Token.Extra("id_token").(string); ok {
		tokens.IDToken = rawIDToken
	}
	return tokens, nil
}

func (p *Provider) Refresh(ctx context.Context, refreshToken string) (string, error) {
	tokenSource := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		return "", errors.Wrap(err, "[Provider.Refresh] refresh exchange failed")
	}
	if token.AccessToken == "" {
		return "", interrors.ErrRefreshFailed
	}
	return token.AccessToken, nil
}

func (p *Provider) UserInfo(ctx context.Context, accessToken string) (Profile, error) {
	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return Profile{}, errors.Wrap(err, "[Provider.UserInfo] userinfo call failed")
	}

	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		GivenName         string `json:"given_name"`
		FamilyName        string `json:"family_name"`
	}
	if err := userInfo.Claims(&claims); err != nil {
		return Profile{}, errors.Wrap(err, "[Provider.UserInfo] failed to extract claims")
	}

	return Profile{
		Username:   claims.PreferredUsername,
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
	}, nil
}

// Verifier returns an access-token verifier bound to this provider's JWKS.
// SkipClientIDCheck is set because upstream access tokens carry the API
// audience, not this client's id.
func (p *Provider) Verifier() *oidc.IDTokenVerifier {
	return p.provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
}

// AccessTokenVerifier adapts the JWKS-backed verifier to the bearer
// validation step: signature plus expiry, subject out.
type AccessTokenVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (p *Provider) AccessTokenVerifier() *AccessTokenVerifier {
	return &AccessTokenVerifier{verifier: p.Verifier()}
}

func (v *AccessTokenVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", interrors.ErrInvalidToken
	}
	return token.Subject, nil
}
