package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN_PRIMARY", "user:pass@tcp(127.0.0.1:3306)/shop?parseTime=true")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, []byte("test-secret"), cfg.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 1, cfg.PasswordMinLength)
	assert.Equal(t, "./media", cfg.MediaDir)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("REFRESH_TOKEN_TTL", "168h")
	t.Setenv("PASSWORD_MIN_LENGTH", "10")
	t.Setenv("GIN_MODE", "release")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.PasswordMinLength)
	assert.Equal(t, "release", cfg.GinMode)
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":    {"JWT_SECRET": ""},
		"missing dsn":       {"DB_DSN_PRIMARY": ""},
		"bad driver":        {"DB_DRIVER": "postgres"},
		"bad ttl":           {"ACCESS_TOKEN_TTL": "soon"},
		"negative ttl":      {"REFRESH_TOKEN_TTL": "-1h"},
		"bad password min":  {"PASSWORD_MIN_LENGTH": "abc"},
		"zero password min": {"PASSWORD_MIN_LENGTH": "0"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
