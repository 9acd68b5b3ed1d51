package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Users REST API the action creators call.
	UsersAPIURL     string
	UpstreamTimeout time.Duration

	// Redis keeps session carts; empty RedisAddr keeps them in memory only.
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	// CatalogDBPath points at a SQLite file; empty uses the built-in catalog.
	CatalogDBPath string

	LogLevel  string
	LogFormat string
}

func Load() Config {
	return Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  parseDuration(getEnv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),

		UsersAPIURL:     getEnv("USERS_API_URL", "http://localhost:3001/api"),
		UpstreamTimeout: parseDuration(getEnv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    parseDuration(getEnv("SESSION_TTL", "15m"), 15*time.Minute),

		CatalogDBPath: getEnv("CATALOG_DB_PATH", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
