package config

import (
	"encoding/json"
	"os"

	"github.com/confideapp/confide/internal/flagx"
	"github.com/confideapp/confide/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	GoogleClientID          string         `json:"google_client_id"`
	GoogleClientSecret      string         `json:"google_client_secret"`
	OAuthCallbackURL        string         `json:"oauth_callback_url"`
	OAuthAuthURL            string         `json:"oauth_auth_url"`
	OAuthTokenURL           string         `json:"oauth_token_url"`
	OAuthUserInfoURL        string         `json:"oauth_userinfo_url"`
	ProviderTimeout         timex.Duration `json:"provider_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags;
// if neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: a config file that is present but broken is a deployment error.
//
// Only non-zero values from the file are applied, so the file can override
// a subset of the defaults.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionValidityDuration.Duration != 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.GoogleClientID != "" {
		config.GoogleClientID = c.GoogleClientID
	}
	if c.GoogleClientSecret != "" {
		config.GoogleClientSecret = c.GoogleClientSecret
	}
	if c.OAuthCallbackURL != "" {
		config.OAuthCallbackURL = c.OAuthCallbackURL
	}
	if c.OAuthAuthURL != "" {
		config.OAuthAuthURL = c.OAuthAuthURL
	}
	if c.OAuthTokenURL != "" {
		config.OAuthTokenURL = c.OAuthTokenURL
	}
	if c.OAuthUserInfoURL != "" {
		config.OAuthUserInfoURL = c.OAuthUserInfoURL
	}
	if c.ProviderTimeout.Duration != 0 {
		config.ProviderTimeout = c.ProviderTimeout.Duration
	}
}
