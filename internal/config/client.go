package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Client is the configuration of the stoxctl command-line client.
type Client struct {
	BaseURL     string        `env:"STOXAI_URL"          envDefault:"http://localhost:8080"`
	Timeout     time.Duration `env:"STOXAI_TIMEOUT"      envDefault:"10s"`
	SessionFile string        `env:"STOXAI_SESSION_FILE"`
}

// LoadClient parses the client configuration. SessionFile defaults to
// ~/.stoxai/session.json.
func LoadClient() (Client, error) {
	var cfg Client
	if err := env.Parse(&cfg); err != nil {
		return Client{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Client{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SessionFile = filepath.Join(home, ".stoxai", "session.json")
	}
	if err := cfg.Validate(); err != nil {
		return Client{}, err
	}
	return cfg, nil
}

func (c Client) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("STOXAI_URL must be an absolute URL, got %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("STOXAI_TIMEOUT must be positive, got %s", c.Timeout)
	}
	return nil
}
