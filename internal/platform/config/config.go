package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	FileName = "pulse.yaml"

	BrokerModeEmbedded = "embedded"
	BrokerModePlugin   = "plugin"

	ConsentAllow = "allow"
	ConsentDeny  = "deny"

	HistoryWindowHours = 24
)

type BrokerConfig struct {
	Mode    string
	Binary  string
	Consent string
}

type Config struct {
	DataDir         string
	DBPath          string
	GrantsPath      string
	LogPath         string
	LogLevel        string
	Location        *time.Location
	WindowHours     int
	Broker          BrokerConfig
	SettingsCommand []string
}

type fileConfig struct {
	Timezone    string `yaml:"timezone"`
	LogLevel    string `yaml:"log_level"`
	WindowHours int    `yaml:"window_hours"`
	Broker      struct {
		Mode    string `yaml:"mode"`
		Binary  string `yaml:"binary"`
		Consent string `yaml:"consent"`
	} `yaml:"broker"`
	Settings struct {
		Command []string `yaml:"command"`
	} `yaml:"settings"`
}

// DefaultDataDir follows the XDG base directory layout.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pulse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pulse"
	}
	return filepath.Join(home, ".local", "share", "pulse")
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, "pulse.db"),
		GrantsPath:  filepath.Join(dataDir, "grants.yaml"),
		LogPath:     filepath.Join(dataDir, "pulse.log"),
		LogLevel:    "info",
		Location:    time.Local,
		WindowHours: HistoryWindowHours,
		Broker: BrokerConfig{
			Mode:    BrokerModeEmbedded,
			Consent: ConsentAllow,
		},
	}

	raw, err := load(filepath.Join(dataDir, FileName))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load(path string) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	raw := fileConfig{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("decode %s: %w", FileName, err)
	}
	return raw, nil
}

func (c *Config) apply(raw fileConfig) error {
	if raw.Timezone != "" {
		loc, err := time.LoadLocation(raw.Timezone)
		if err != nil {
			return fmt.Errorf("timezone %q: %w", raw.Timezone, err)
		}
		c.Location = loc
	}
	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}
	if raw.WindowHours != 0 && raw.WindowHours != HistoryWindowHours {
		return fmt.Errorf("window_hours is fixed at %d, got %d", HistoryWindowHours, raw.WindowHours)
	}
	switch raw.Broker.Mode {
	case "":
	case BrokerModeEmbedded, BrokerModePlugin:
		c.Broker.Mode = raw.Broker.Mode
	default:
		return fmt.Errorf("unsupported broker mode %q", raw.Broker.Mode)
	}
	c.Broker.Binary = raw.Broker.Binary
	if c.Broker.Mode == BrokerModePlugin && c.Broker.Binary == "" {
		return fmt.Errorf("broker.binary is required in plugin mode")
	}
	switch raw.Broker.Consent {
	case "":
	case ConsentAllow, ConsentDeny:
		c.Broker.Consent = raw.Broker.Consent
	default:
		return fmt.Errorf("unsupported broker consent %q", raw.Broker.Consent)
	}
	c.SettingsCommand = raw.Settings.Command
	return nil
}
