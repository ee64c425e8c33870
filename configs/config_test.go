package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN_TTL_HOURS", "")

	cfg := LoadConfig()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "10501")
	t.Setenv("DB_USER", "taskapi")
	t.Setenv("JWT_SECRET", "very-secret")
	t.Setenv("TOKEN_TTL_HOURS", "1")

	cfg := LoadConfig()

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 10501, cfg.DBPort)
	assert.Equal(t, "taskapi", cfg.DBUser)
	assert.Equal(t, "very-secret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}
