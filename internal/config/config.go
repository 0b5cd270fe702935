// Package config loads the client configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the FinPulse client.
type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Server points at the FinPulse API.
type Server struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (s Server) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Storage holds paths for client-side persistence.
type Storage struct {
	SessionPath string `yaml:"session_path"`
}

// Logging configures the application logger. File is where TUI binaries
// write logs, since the terminal belongs to the renderer.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".finpulse")
	return &Config{
		Server: Server{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Storage: Storage{
			SessionPath: filepath.Join(dir, "session.db"),
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(dir, "finpulse.log"),
		},
	}
}

// Load reads the YAML configuration at path, falling back to defaults when
// path is empty or the file does not exist, then applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Server.TimeoutSeconds <= 0 {
		cfg.Server.TimeoutSeconds = 30
	}
	return cfg, nil
}

// applyEnvOverrides lets environment variables beat file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINPULSE_API_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("FINPULSE_SESSION_PATH"); v != "" {
		cfg.Storage.SessionPath = v
	}
	if v := os.Getenv("FINPULSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FINPULSE_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}
