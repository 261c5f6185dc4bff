package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
  mode: release
database:
  host: db.internal
  port: 3306
  username: dotori
  database: dotori
usage:
  timezone: UTC
  retention_days: 30
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 30, cfg.Usage.RetentionDays)

	// 默认值
	assert.Equal(t, 7, cfg.Usage.HistoryDays)
	assert.Equal(t, "10 0 * * *", cfg.Usage.SweepSchedule)
	assert.Equal(t, "dotori_membership_events", cfg.Events.Channel)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, 168, cfg.JWT.ExpireHours)
}

func TestLoad_PrefersLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", sampleYAML)
	writeConfig(t, dir, "config.local.yaml", "server:\n  port: 7070\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestUsageConfig_Location(t *testing.T) {
	loc := UsageConfig{Timezone: "UTC"}.Location()
	assert.Equal(t, "UTC", loc.String())

	fallback := UsageConfig{Timezone: "Not/AZone"}.Location()
	assert.Equal(t, "KST", fallback.String())

	def := UsageConfig{}.Location()
	assert.NotNil(t, def)
}
