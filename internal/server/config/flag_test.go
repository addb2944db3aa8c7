package config

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server", "-a", ":7070", "-s", "flag-secret", "-t", "15"}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	if cfg.EndpointAddrHTTP != ":7070" {
		t.Fatalf("addr flag not applied: %s", cfg.EndpointAddrHTTP)
	}
	if cfg.SecretKey != "flag-secret" {
		t.Fatalf("secret flag not applied")
	}
	if cfg.SessionValidityDuration != 15*time.Minute {
		t.Fatalf("validity flag not applied: %v", cfg.SessionValidityDuration)
	}
}

func TestParseFlags_UnknownFlagsIgnored(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server", "-zzz", "whatever", "-a", ":6060"}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	if cfg.EndpointAddrHTTP != ":6060" {
		t.Fatalf("addr flag not applied: %s", cfg.EndpointAddrHTTP)
	}
}
