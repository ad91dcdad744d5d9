package config

// OidcConfig describes the upstream identity provider this service is a
// relying party of. Authentication itself happens at the provider; this
// service only exchanges codes, refreshes tokens and reads the userinfo
// endpoint.
type OidcConfig interface {
	GetOidcIssuer() string
	GetOidcClientID() string
	GetOidcClientSecret() string
	GetOidcRedirectURL() string
	GetOidcScopes() []string
}

type Oidc struct{}

var _ OidcConfig = Oidc{}

func (Oidc) GetOidcIssuer() string {
	return GetEnv("OIDC_ISSUER", "http://localhost:8180/realms/tunnelmesh")
}

func (Oidc) GetOidcClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "tunnel-backend")
}

func (Oidc) GetOidcClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (o Oidc) GetOidcRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", EnvVars{}.GetBaseURL()+"/LoginCallback")
}

func (Oidc) GetOidcScopes() []string {
	return []string{"openid", "profile", "email", "offline_access"}
}
