package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	mongoURIVar   = "MONGODB_URI"
	mongoDBVar    = "MONGODB_DATABASE"
	defaultDBName = "tunnelbackend"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Tunnel Backend")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the externally visible base URL of this service
// (e.g. "https://api.tunnelmesh.dev"). Used to build the OIDC redirect URI.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetMongoURI returns the MongoDB connection string. When empty the service
// falls back to in-memory storage (development mode).
func (EnvVars) GetMongoURI() string {
	return GetEnv(mongoURIVar, "")
}

func (EnvVars) GetMongoDatabase() string {
	return GetEnv(mongoDBVar, defaultDBName)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
