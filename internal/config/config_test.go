package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Document defaults
	if cfg.Document.Path != "" {
		t.Errorf("expected empty document path, got %s", cfg.Document.Path)
	}
	if cfg.Document.Scale != 4.0 {
		t.Errorf("expected scale 4.0, got %f", cfg.Document.Scale)
	}

	// Decomposition defaults
	if cfg.Decompose.Strategy != StrategyDecompose {
		t.Errorf("expected strategy %q, got %q", StrategyDecompose, cfg.Decompose.Strategy)
	}
	if cfg.Decompose.Resolution != 256 {
		t.Errorf("expected resolution 256, got %d", cfg.Decompose.Resolution)
	}
	if cfg.Decompose.Concavity != 0.0001 {
		t.Errorf("expected concavity 0.0001, got %g", cfg.Decompose.Concavity)
	}
	if !cfg.Decompose.PreferFast {
		t.Error("expected prefer_fast to be true by default")
	}

	// Upload defaults
	if cfg.Upload.Endpoint != "ws://localhost:3000" {
		t.Errorf("expected endpoint ws://localhost:3000, got %s", cfg.Upload.Endpoint)
	}
	if cfg.Upload.ConnectTimeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Upload.ConnectTimeout)
	}
	if cfg.Upload.Retries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Upload.Retries)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
document:
  path: "models/stadium/scene.gltf"
  scale: 2.5

decompose:
  strategy: "raw"
  resolution: 128
  concavity: 0.001
  prefer_fast: false
  workers: 4

upload:
  endpoint: "ws://game.server.com:3000"
  connect_timeout: 5s
  retries: 5
  retry_delay: 250ms

logging:
  level: "debug"
  log_file: "uploader.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Document.Path != "models/stadium/scene.gltf" {
		t.Errorf("expected document path from file, got %s", cfg.Document.Path)
	}
	if cfg.Document.Scale != 2.5 {
		t.Errorf("expected scale 2.5, got %f", cfg.Document.Scale)
	}

	if cfg.Decompose.Strategy != StrategyRaw {
		t.Errorf("expected strategy raw, got %s", cfg.Decompose.Strategy)
	}
	if cfg.Decompose.Resolution != 128 {
		t.Errorf("expected resolution 128, got %d", cfg.Decompose.Resolution)
	}
	if cfg.Decompose.Concavity != 0.001 {
		t.Errorf("expected concavity 0.001, got %g", cfg.Decompose.Concavity)
	}
	if cfg.Decompose.PreferFast {
		t.Error("expected prefer_fast false")
	}
	if cfg.Decompose.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Decompose.Workers)
	}

	if cfg.Upload.Endpoint != "ws://game.server.com:3000" {
		t.Errorf("expected endpoint from file, got %s", cfg.Upload.Endpoint)
	}
	if cfg.Upload.ConnectTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Upload.ConnectTimeout)
	}
	if cfg.Upload.Retries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.Upload.Retries)
	}
	if cfg.Upload.RetryDelay != 250*time.Millisecond {
		t.Errorf("expected retry delay 250ms, got %v", cfg.Upload.RetryDelay)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "uploader.log" {
		t.Errorf("expected log file 'uploader.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
document:
  scale: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	bad := Default()
	bad.Decompose.Strategy = "approximate"
	if err := bad.validate(); err == nil {
		t.Error("expected error for unknown strategy")
	}

	bad = Default()
	bad.Decompose.Resolution = 1
	if err := bad.validate(); err == nil {
		t.Error("expected error for resolution below 2")
	}

	bad = Default()
	bad.Decompose.Concavity = 0
	if err := bad.validate(); err == nil {
		t.Error("expected error for non-positive concavity")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := Default()
	cfg.Document.Path = "scene.glb"
	cfg.Decompose.Resolution = 64

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Document.Path != "scene.glb" {
		t.Errorf("expected document path scene.glb, got %s", loaded.Document.Path)
	}
	if loaded.Decompose.Resolution != 64 {
		t.Errorf("expected resolution 64, got %d", loaded.Decompose.Resolution)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}
