package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "HTTP_TIMEOUT_SECONDS", "LOG_LEVEL", "DATABASE_URL", "REDIS_ADDR",
		"DEFAULT_OWNER_ID", "WEBHOOK_OWNER_ID", "WEBHOOK_RATE_PER_MIN", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 15*time.Second, c.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
	assert.Empty(t, c.DatabaseURL)
	assert.Equal(t, "local", c.DefaultOwnerID)
	assert.Equal(t, "local", c.WebhookOwnerID)
	assert.Equal(t, 600, c.WebhookRatePerMin)
	assert.Equal(t, 0, c.RedisDB)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEFAULT_OWNER_ID", "owner-1")
	t.Setenv("WEBHOOK_OWNER_ID", "")
	t.Setenv("REDIS_DB", "2")

	c := FromEnv()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 3*time.Second, c.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, "owner-1", c.WebhookOwnerID)
	assert.Equal(t, 2, c.RedisDB)
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	assert.NoError(t, os.WriteFile(path, []byte("WEBHOOK_VERIFY_TOKEN=from-file\n"), 0o600))
	t.Setenv("WEBHOOK_VERIFY_TOKEN", "")
	os.Unsetenv("WEBHOOK_VERIFY_TOKEN")

	c := Load(path)
	assert.Equal(t, "from-file", c.WebhookVerifyToken)
	os.Unsetenv("WEBHOOK_VERIFY_TOKEN")

	// un .env inexistente no es error
	assert.NotPanics(t, func() { Load(filepath.Join(t.TempDir(), "missing.env")) })
}
