package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/setup/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))
	t.Chdir(dir)
}

func TestLoadConfigDefaults(t *testing.T) {
	// An empty file falls back to defaults for everything.
	writeConfig(t, "")

	cfg, dir, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ".", dir)

	assert.Equal(t, "info", cfg.Debug.LogLevel)
	assert.Equal(t, "localhost", cfg.PostgreSQL.Host)
	assert.Equal(t, ":8080", cfg.API.ListenAddr)
	assert.Equal(t, 30, cfg.Scheduler.IntervalMinutes)
	assert.Equal(t, 3, cfg.Escalation.MuteCount)
	assert.Equal(t, 60, cfg.Escalation.MuteDurationMinutes)
	assert.Equal(t, 5, cfg.Escalation.BanCount)
}

func TestLoadConfigOverrides(t *testing.T) {
	writeConfig(t, `
[bot]
token = "abc123"
jailed_role_id = 900
moderator_role_ids = [1, 2]

[postgresql]
host = "db.internal"
port = 5433

[escalation]
mute_count = 2
ban_count = 4
`)

	cfg, _, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Bot.Token)
	assert.Equal(t, uint64(900), cfg.Bot.JailedRoleID)
	assert.Equal(t, []uint64{1, 2}, cfg.Bot.ModeratorRoleIDs)
	assert.Equal(t, "db.internal", cfg.PostgreSQL.Host)
	assert.Equal(t, 5433, cfg.PostgreSQL.Port)
	assert.Equal(t, 2, cfg.Escalation.MuteCount)
	assert.Equal(t, 4, cfg.Escalation.BanCount)

	// Untouched sections keep their defaults.
	assert.Equal(t, "warden", cfg.PostgreSQL.DBName)
	assert.Equal(t, 30, cfg.API.RateLimit)
}

func TestLoadConfigTokenFromEnv(t *testing.T) {
	writeConfig(t, `
[bot]
token = "from-file"
`)
	t.Setenv("WARDEN_BOT_TOKEN", "from-env")

	cfg, _, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bot.Token)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, _, err := config.LoadConfig()
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}
