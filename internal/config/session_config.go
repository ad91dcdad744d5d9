package config

// SessionConfig holds the settings of the pointer-token session layer: the
// process-wide symmetric signing key and the URLs the login completion
// handler redirects to.
type SessionConfig interface {
	GetPointerSigningKey() []byte
	GetLoginRedirectURL() string
	GetLoginFailureURL() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetPointerSigningKey() []byte {
	return []byte(GetEnv("POINTER_SIGNING_KEY", "dev-only-pointer-signing-key"))
}

// GetLoginRedirectURL is the destination the browser lands on after login,
// with the freshly minted pointer token appended as a query parameter.
func (Session) GetLoginRedirectURL() string {
	return GetEnv("LOGIN_REDIRECT_URL", "http://localhost:3000/landing")
}

// GetLoginFailureURL is where the browser is sent when login completion
// cannot resolve an access token.
func (Session) GetLoginFailureURL() string {
	return GetEnv("LOGIN_FAILURE_URL", "http://localhost:3000/login-failed")
}
