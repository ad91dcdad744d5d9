package config

type Config interface {
	EnvConfig
	CorsConfig
	OidcConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetMongoURI() string
	GetMongoDatabase() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Oidc
	Session
}

func New() Config {
	return mainConfig{}
}
