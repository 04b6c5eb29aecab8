package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the standard locations.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Decompose.Strategy {
	case StrategyRaw, StrategyDecompose:
	default:
		return fmt.Errorf("unknown strategy %q (want %q or %q)",
			c.Decompose.Strategy, StrategyRaw, StrategyDecompose)
	}
	if c.Decompose.Resolution < 2 {
		return fmt.Errorf("resolution must be at least 2, got %d", c.Decompose.Resolution)
	}
	if c.Decompose.Concavity <= 0 {
		return fmt.Errorf("concavity must be positive, got %g", c.Decompose.Concavity)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ColliderUploader")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ColliderUploader")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "collider-uploader")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "collider-uploader")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
