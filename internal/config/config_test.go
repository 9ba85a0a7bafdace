package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  name: renteazy-test
api:
  host: 127.0.0.1
  port: 9090
database:
  dsn: postgres://localhost/renteazy_test
jwt:
  secret: test-secret
  access_token_ttl: 30m
chat:
  empty_room_ttl: 1h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "renteazy-test", cfg.Server.Name)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "postgres://localhost/renteazy_test", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.Chat.EmptyRoomTTL)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "renteazy-server", cfg.Server.Name)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Chat.EmptyRoomTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 9090
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 9090
jwt:
  secret: file-secret
`)

	t.Setenv("PORT", "7777")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.API.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
}
