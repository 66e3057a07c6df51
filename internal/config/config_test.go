package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 600*time.Millisecond, cfg.Game.ComputerMoveDelay)
	assert.Equal(t, "two_player", cfg.Game.DefaultMode)
	assert.Equal(t, 24*time.Hour, cfg.Session.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Session.PongWait)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("COMPUTER_MOVE_DELAY", "50ms")
	t.Setenv("REDIS_CONNSTRING", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 50*time.Millisecond, cfg.Game.ComputerMoveDelay)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("SESSION_SECRET"))

	path := filepath.Join(t.TempDir(), "config.yml")
	content := []byte(`
log-level: debug
game:
  computer-move-delay: 1s
  default-mode: vs_computer
sqlite:
  dsn: file:history.db
session:
  secret: from-file
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.Game.ComputerMoveDelay)
	assert.Equal(t, "vs_computer", cfg.Game.DefaultMode)
	assert.Equal(t, "file:history.db", cfg.SQLite.DSN)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "from-file", cfg.Session.Secret)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("SESSION_SECRET"))

	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
