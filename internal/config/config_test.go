package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "USERS_API_URL", "REDIS_ADDR", "SESSION_TTL", "CATALOG_DB_PATH", "UPSTREAM_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3001/api", cfg.UsersAPIURL)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "", cfg.CatalogDBPath)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("USERS_API_URL", "http://users:3001")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("UPSTREAM_TIMEOUT", "not-a-duration")
	t.Setenv("LOG_FORMAT", "json")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "http://users:3001", cfg.UsersAPIURL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParseDuration_RejectsNonPositive(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("-5s", time.Second))
	assert.Equal(t, time.Second, parseDuration("0s", time.Second))
	assert.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}
