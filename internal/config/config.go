// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Port        int    `yaml:"port"`
	DBPath      string `yaml:"db_path"`
	CompanyName string `yaml:"company_name"`

	// APIKeyHash is the bcrypt hash of the single API key required for
	// mutating requests. Empty disables the check.
	APIKeyHash string `yaml:"api_key_hash"`

	// NCRRepeatWindowDays is the look-back window for repeat root-cause
	// detection. Values <= 0 fall back to 90.
	NCRRepeatWindowDays int `yaml:"ncr_repeat_window_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                9000,
		DBPath:              "wotrack.db",
		CompanyName:         "Your Company",
		NCRRepeatWindowDays: 90,
	}
}

// Load reads the config file at path (missing file is fine, defaults apply)
// and then applies WOTRACK_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("WOTRACK_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("WOTRACK_PORT: %w", err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("WOTRACK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WOTRACK_COMPANY_NAME"); v != "" {
		cfg.CompanyName = v
	}
	if v := os.Getenv("WOTRACK_API_KEY_HASH"); v != "" {
		cfg.APIKeyHash = v
	}
	if v := os.Getenv("WOTRACK_NCR_REPEAT_WINDOW_DAYS"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("WOTRACK_NCR_REPEAT_WINDOW_DAYS: %w", err)
		}
		cfg.NCRRepeatWindowDays = d
	}

	if cfg.NCRRepeatWindowDays <= 0 {
		cfg.NCRRepeatWindowDays = 90
	}
	return cfg, nil
}
