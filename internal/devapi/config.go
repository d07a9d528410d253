// Package devapi is an in-memory stand-in for the accounting backend. It
// serves the authentication and financial endpoints finboard consumes, with
// demo users and fixture data, for local runs and integration tests.
package devapi

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the stub's runtime configuration.
type Config struct {
	Addr       string        `envconfig:"DEVAPI_ADDR" default:":8000"`
	SigningKey string        `envconfig:"DEVAPI_SIGNING_KEY" default:"finboard-dev-signing-key"`
	AccessTTL  time.Duration `envconfig:"DEVAPI_ACCESS_TTL" default:"1h"`
	RefreshTTL time.Duration `envconfig:"DEVAPI_REFRESH_TTL" default:"168h"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SigningKey == "" {
		return nil, errors.New("devapi signing key must be provided")
	}
	return &cfg, nil
}
