package config

import (
	"os"
	"time"
)

// parseEnv overlays configuration from environment variables. Environment
// wins over flags so that secrets injected by the deployment (or a local
// .env file loaded by the entrypoint) are authoritative.
//
// Recognized variables:
//
//	CONFIDE_ADDR, CONFIDE_DATABASE_DSN, CONFIDE_SECRET_KEY,
//	CONFIDE_SESSION_VALIDITY (Go duration, e.g. "30m"),
//	CONFIDE_GOOGLE_CLIENT_ID, CONFIDE_GOOGLE_CLIENT_SECRET,
//	CONFIDE_OAUTH_CALLBACK_URL, CONFIDE_OAUTH_AUTH_URL,
//	CONFIDE_OAUTH_TOKEN_URL, CONFIDE_OAUTH_USERINFO_URL,
//	CONFIDE_PROVIDER_TIMEOUT (Go duration)
func parseEnv(config *Config) {
	if v := os.Getenv("CONFIDE_ADDR"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("CONFIDE_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("CONFIDE_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("CONFIDE_SESSION_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionValidityDuration = d
		}
	}
	if v := os.Getenv("CONFIDE_GOOGLE_CLIENT_ID"); v != "" {
		config.GoogleClientID = v
	}
	if v := os.Getenv("CONFIDE_GOOGLE_CLIENT_SECRET"); v != "" {
		config.GoogleClientSecret = v
	}
	if v := os.Getenv("CONFIDE_OAUTH_CALLBACK_URL"); v != "" {
		config.OAuthCallbackURL = v
	}
	if v := os.Getenv("CONFIDE_OAUTH_AUTH_URL"); v != "" {
		config.OAuthAuthURL = v
	}
	if v := os.Getenv("CONFIDE_OAUTH_TOKEN_URL"); v != "" {
		config.OAuthTokenURL = v
	}
	if v := os.Getenv("CONFIDE_OAUTH_USERINFO_URL"); v != "" {
		config.OAuthUserInfoURL = v
	}
	if v := os.Getenv("CONFIDE_PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.ProviderTimeout = d
		}
	}
}
