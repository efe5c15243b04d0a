package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("ENCRYPTION_SALT", "")
	t.Setenv("DASHBOARD_CACHE_TTL", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "camarpe-salt", cfg.EncryptionSalt)
	assert.Equal(t, 60, cfg.DashboardCacheTTL)
	assert.Equal(t, 168, cfg.JWTExpiry)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("SMTP_USE_TLS", "yes")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("ALERT_EMAILS", " gestao@camarpe.com.br, ,admin@camarpe.com.br ")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.SMTPUseTLS)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, []string{"gestao@camarpe.com.br", "admin@camarpe.com.br"}, cfg.AlertEmails)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Environment: "production", JWTSecret: "short", DatabaseURL: "postgres://x"}
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, cfg.Validate())

	cfg.DatabaseURL = ""
	require.Error(t, cfg.Validate())
}
