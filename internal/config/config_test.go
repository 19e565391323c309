package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", validSecret)

	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "stoxai.db", cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 30*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 1.0, cfg.AuthRatePerSecond)
	assert.Equal(t, 10, cfg.AuthRateBurst)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoadServer_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", validSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/stoxai?sslmode=disable")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadServer_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET_KEY environment variable is required"},
		{"short secret", map[string]string{"JWT_SECRET_KEY": "short"}, "at least 32 characters"},
		{"cost too low", map[string]string{"JWT_SECRET_KEY": validSecret, "BCRYPT_COST": "4"}, "BCRYPT_COST must be between 10 and 14"},
		{"cost too high", map[string]string{"JWT_SECRET_KEY": validSecret, "BCRYPT_COST": "15"}, "BCRYPT_COST"},
		{"cost not a number", map[string]string{"JWT_SECRET_KEY": validSecret, "BCRYPT_COST": "abc"}, "parse env"},
		{"zero burst", map[string]string{"JWT_SECRET_KEY": validSecret, "AUTH_RATE_BURST": "0"}, "AUTH_RATE_BURST"},
		{"bad ttl", map[string]string{"JWT_SECRET_KEY": validSecret, "TOKEN_TTL": "forever"}, "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadServer()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServer_UsesPostgres(t *testing.T) {
	for dsn, want := range map[string]bool{
		"postgres://localhost/db":   true,
		"postgresql://localhost/db": true,
		"stoxai.db":                 false,
		"/var/lib/stoxai/data.db":   false,
	} {
		assert.Equal(t, want, Server{DatabaseURL: dsn}.UsesPostgres(), dsn)
	}
}

func TestLoadClient_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STOXAI_SESSION_FILE", "")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, filepath.Join(home, ".stoxai", "session.json"), cfg.SessionFile)
}

func TestLoadClient_Overrides(t *testing.T) {
	t.Setenv("STOXAI_URL", "https://api.example.com")
	t.Setenv("STOXAI_TIMEOUT", "3s")
	t.Setenv("STOXAI_SESSION_FILE", "/tmp/s.json")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/s.json", cfg.SessionFile)
}

func TestLoadClient_Invalid(t *testing.T) {
	t.Setenv("STOXAI_SESSION_FILE", "/tmp/s.json")
	t.Setenv("STOXAI_URL", "not a url")

	_, err := LoadClient()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "STOXAI_URL"))
}
