package config

import (
	"flag"
	"os"
	"time"

	"github.com/confideapp/confide/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret key
//	-t int      session validity, minutes
//	-i string   OAuth client id
//	-p string   OAuth client secret
//	-u string   OAuth callback URL
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The duration
// flag is accepted as an integer in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-i", "-p", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidityDuration := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session_validity_duration (in minutes)")

	fs.StringVar(&config.GoogleClientID, "i", config.GoogleClientID, "OAuth client id")
	fs.StringVar(&config.GoogleClientSecret, "p", config.GoogleClientSecret, "OAuth client secret")
	fs.StringVar(&config.OAuthCallbackURL, "u", config.OAuthCallbackURL, "OAuth callback URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidityDuration) * time.Minute
}
