package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/shelfwatch/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8085", cfg.Server.Listen)
	assert.Equal(t, "10s", cfg.Server.ReadTimeout)
	assert.Equal(t, "30s", cfg.Server.WriteTimeout)
	assert.Equal(t, 8, cfg.Schedule.Hour)
	assert.Equal(t, 0, cfg.Schedule.Minute)
	assert.Equal(t, 0, cfg.Schedule.Second)
	assert.Equal(t, "Europe/Istanbul", cfg.Schedule.Timezone)
	assert.Equal(t, 5, cfg.Alert.Threshold)
	assert.Equal(t, "low-stock", cfg.Alert.Stream)
	assert.Equal(t, "default", cfg.Session.Key)
	assert.Equal(t, "10m", cfg.Session.BackupInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := []byte(`
storage:
  path: /tmp/test.db
server:
  listen: ":9090"
  trigger_token: hunter2
schedule:
  hour: 6
  minute: 30
  timezone: America/Sao_Paulo
alert:
  threshold: 3
  recipient: warehouse-ops
transport:
  gateway:
    url: https://gateway.example
    api_key: key-123
logging:
  level: debug
`)
	err := os.WriteFile(cfgPath, data, 0o644)
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "hunter2", cfg.Server.TriggerToken)
	assert.Equal(t, 6, cfg.Schedule.Hour)
	assert.Equal(t, 30, cfg.Schedule.Minute)
	assert.Equal(t, "America/Sao_Paulo", cfg.Schedule.Timezone)
	assert.Equal(t, 3, cfg.Alert.Threshold)
	assert.Equal(t, "warehouse-ops", cfg.Alert.Recipient)
	assert.Equal(t, "https://gateway.example", cfg.Transport.Gateway.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHELFWATCH_LOGGING_LEVEL", "error")
	t.Setenv("SHELFWATCH_SERVER_LISTEN", ":7070")
	t.Setenv("SHELFWATCH_SCHEDULE_TIMEZONE", "UTC")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	err := os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644)
	require.NoError(t, err)

	_, err = config.Load(cfgPath)
	assert.Error(t, err)
}

func TestBackupInterval(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.BackupInterval = "5m"
	assert.Equal(t, 5*time.Minute, cfg.BackupInterval())
}

func TestLoad_InvalidBackupInterval(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"malformed", "garbage"},
		{"zero", "0s"},
		{"negative", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "config.yaml")
			data := []byte("session:\n  backup_interval: \"" + tt.value + "\"\n")
			require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

			_, err := config.Load(cfgPath)
			assert.ErrorContains(t, err, "backup_interval")
		})
	}
}
