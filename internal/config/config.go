package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Timer   TimerConfig   `yaml:"timer"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	// APIKey guards the preset authoring endpoints. Empty leaves them
	// open, which is fine for a loopback-only deployment.
	APIKey string `yaml:"api_key"`
}

type StorageConfig struct {
	// Dir holds the SQLite state database. Empty selects the in-memory
	// store: nothing survives the process, but everything works.
	Dir string `yaml:"dir"`
}

type TimerConfig struct {
	// TickIntervalMs is the tick cadence while running; 0 means the
	// engine default (250 ms).
	TickIntervalMs int `yaml:"tick_interval_ms"`
	// PresetsPath optionally seeds the preset collection from a YAML
	// file on first run.
	PresetsPath string `yaml:"presets_path"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix PACER_ and underscore-separated paths:
//
//	PACER_SERVER_HOST, PACER_SERVER_PORT, PACER_AUTH_API_KEY,
//	PACER_STORAGE_DIR, PACER_TIMER_TICK_INTERVAL_MS, PACER_TIMER_PRESETS_PATH
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PACER_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PACER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PACER_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("PACER_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("PACER_TIMER_TICK_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Timer.TickIntervalMs = ms
		}
	}
	if v := os.Getenv("PACER_TIMER_PRESETS_PATH"); v != "" {
		cfg.Timer.PresetsPath = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Timer.TickIntervalMs < 0 {
		return fmt.Errorf("timer.tick_interval_ms must not be negative")
	}
	return nil
}
