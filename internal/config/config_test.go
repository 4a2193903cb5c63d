package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func requiredEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV": "testing", "APP_PORT": "8080", "DB_USER": "root", "DB_HOST": "127.0.0.1",
		"DB_PORT": "3306", "DB_NAME": "movies", "JWT_SECRET": "secret",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	requiredEnv(t)
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.Debug)
	assert.True(t, cfg.EventsEnabled)
	assert.False(t, cfg.EventsConsumer)
	assert.Equal(t, "logs/movie-events.log", cfg.EventsLogPath)
}

func TestLoadOverrides(t *testing.T) {
	requiredEnv(t)
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("JWT_TTL_MIN", "15")
	t.Setenv("EVENTS_ENABLED", "off")
	cfg := Load()
	assert.True(t, cfg.Debug)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.False(t, cfg.EventsEnabled)
}

func TestRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}
