package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulse/internal/platform/config"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0o644))
}

func TestNewDefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "pulse.db"), cfg.DBPath)
	require.Equal(t, filepath.Join(dir, "grants.yaml"), cfg.GrantsPath)
	require.Equal(t, filepath.Join(dir, "pulse.log"), cfg.LogPath)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, time.Local, cfg.Location)
	require.Equal(t, config.HistoryWindowHours, cfg.WindowHours)
	require.Equal(t, config.BrokerModeEmbedded, cfg.Broker.Mode)
	require.Equal(t, config.ConsentAllow, cfg.Broker.Consent)
}

func TestNewEmptyFileIsDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, "")
	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.Equal(t, config.BrokerModeEmbedded, cfg.Broker.Mode)
}

func TestNewAppliesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, `timezone: UTC
log_level: debug
broker:
  mode: plugin
  binary: /usr/local/bin/healthbroker
  consent: deny
settings:
  command: [code, --wait]
`)
	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.Equal(t, "UTC", cfg.Location.String())
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, config.BrokerConfig{Mode: config.BrokerModePlugin, Binary: "/usr/local/bin/healthbroker", Consent: config.ConsentDeny}, cfg.Broker)
	require.Equal(t, []string{"code", "--wait"}, cfg.SettingsCommand)
}

func TestNewRejectsInvalidFiles(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"unknown key":        "colour: blue\n",
		"bad timezone":       "timezone: Mars/Olympus\n",
		"window override":    "window_hours: 48\n",
		"bad mode":           "broker:\n  mode: cloud\n",
		"plugin sans binary": "broker:\n  mode: plugin\n",
		"bad consent":        "broker:\n  consent: maybe\n",
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, body)
			_, err := config.New(dir)
			require.Error(t, err)
		})
	}
}

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()
	_, err := config.New("")
	require.Error(t, err)
}

func TestDefaultDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	require.Equal(t, filepath.Join("/tmp/xdg", "pulse"), config.DefaultDataDir())
}
