// Package config loads process configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	minSecretLength = 32
	minBcryptCost   = 10
	maxBcryptCost   = 14
)

// Server is the configuration of the HTTP API process.
type Server struct {
	Port        string        `env:"PORT"           envDefault:"8080"`
	DatabaseURL string        `env:"DATABASE_URL"   envDefault:"stoxai.db"`
	JWTSecret   string        `env:"JWT_SECRET_KEY"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"      envDefault:"168h"`
	BcryptCost  int           `env:"BCRYPT_COST"    envDefault:"12"`
	CORSOrigin  string        `env:"CORS_ORIGIN"    envDefault:"*"`

	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	ChatModel    string        `env:"CHAT_MODEL"   envDefault:"gemini-2.5-flash"`
	ChatTimeout  time.Duration `env:"CHAT_TIMEOUT" envDefault:"30s"`

	RedisAddr         string  `env:"REDIS_ADDR"`
	AuthRatePerSecond float64 `env:"AUTH_RATE_PER_SECOND" envDefault:"1"`
	AuthRateBurst     int     `env:"AUTH_RATE_BURST"      envDefault:"10"`
}

// LoadServer parses and validates the server configuration.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks the values LoadServer cannot express as defaults.
func (c Server) Validate() error {
	var errs []error
	switch {
	case c.JWTSecret == "":
		errs = append(errs, errors.New("JWT_SECRET_KEY environment variable is required"))
	case len(c.JWTSecret) < minSecretLength:
		errs = append(errs, fmt.Errorf("JWT_SECRET_KEY must be at least %d characters for HMAC-SHA256 security", minSecretLength))
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, c.BcryptCost))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.ChatTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_TIMEOUT must be positive, got %s", c.ChatTimeout))
	}
	if c.AuthRatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_PER_SECOND must be positive, got %v", c.AuthRatePerSecond))
	}
	if c.AuthRateBurst < 1 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_BURST must be at least 1, got %d", c.AuthRateBurst))
	}
	return errors.Join(errs...)
}

// UsesPostgres reports whether DatabaseURL names a PostgreSQL server rather
// than a SQLite file.
func (c Server) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}
