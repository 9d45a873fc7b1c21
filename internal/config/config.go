// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

// Package config loads layered configuration: defaults, then an
// optional YAML file, then QUILLSTASH_* environment variables, then
// command-line flags. Later layers win.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

const envPrefix = "QUILLSTASH_"

// Config is the full service configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Google   GoogleConfig   `koanf:"google"`
	Log      LogConfig      `koanf:"log"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig holds the token signing material and lifetimes.
type AuthConfig struct {
	Access  TokenConfig `koanf:"access"`
	Refresh TokenConfig `koanf:"refresh"`
}

// TokenConfig is the signing secret and lifetime for one token kind.
type TokenConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

// GoogleConfig holds the OAuth client settings. Sign-in with Google is
// disabled when the client ID is empty.
type GoogleConfig struct {
	Client   ClientConfig   `koanf:"client"`
	Redirect RedirectConfig `koanf:"redirect"`
}

// ClientConfig is the OAuth client credential pair.
type ClientConfig struct {
	ID     string `koanf:"id"`
	Secret string `koanf:"secret"`
}

// RedirectConfig is the OAuth callback location.
type RedirectConfig struct {
	URL string `koanf:"url"`
}

// LogConfig selects the log output format and level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

func defaults() map[string]any {
	return map[string]any{
		"http.addr":        ":8080",
		"metrics.addr":     "127.0.0.1:9100",
		"auth.access.ttl":  15 * time.Minute,
		"auth.refresh.ttl": 7 * 24 * time.Hour,
		"log.format":       "json",
		"log.level":        "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when path is empty), the environment, and flags (skipped
// when nil).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	// QUILLSTASH_AUTH_ACCESS_SECRET -> auth.access.secret
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}
	return &cfg, nil
}

// Validate checks the loaded configuration for required values.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Auth.Access.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.access.secret is required")
	}
	if c.Auth.Access.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.access.ttl must be positive")
	}
	if c.Auth.Refresh.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.refresh.ttl must be positive")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.GoogleEnabled() {
		if c.Google.Client.Secret == "" {
			return oops.Code("CONFIG_INVALID").Errorf("google.client.secret is required when google.client.id is set")
		}
		if c.Google.Redirect.URL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("google.redirect.url is required when google.client.id is set")
		}
	}
	return nil
}

// Normalize fills derivable values and returns warnings worth logging.
// A missing refresh secret is derived from the access secret so the
// service still starts, but operators should set a distinct one.
func (c *Config) Normalize() []string {
	var warnings []string
	if c.Auth.Refresh.Secret == "" && c.Auth.Access.Secret != "" {
		c.Auth.Refresh.Secret = c.Auth.Access.Secret + "_refresh"
		warnings = append(warnings,
			"auth.refresh.secret not set, deriving from access secret; set a distinct secret in production")
	}
	return warnings
}

// GoogleEnabled reports whether sign-in with Google is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Google.Client.ID != ""
}
