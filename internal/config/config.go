// Package config handles uploader configuration loading and management.
package config

import "time"

// Strategy names for geometry processing.
const (
	StrategyRaw       = "raw"
	StrategyDecompose = "decompose"
)

// Config holds all uploader settings.
type Config struct {
	Document  DocumentConfig  `yaml:"document"`
	Decompose DecomposeConfig `yaml:"decompose"`
	Upload    UploadConfig    `yaml:"upload"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DocumentConfig holds scene document settings.
type DocumentConfig struct {
	Path  string  `yaml:"path"`  // Path to a .gltf or .glb scene document
	Scale float32 `yaml:"scale"` // Uniform scale applied above the root nodes
}

// DecomposeConfig holds geometry processing settings.
type DecomposeConfig struct {
	Strategy   string  `yaml:"strategy"`   // "raw" or "decompose"
	Resolution int     `yaml:"resolution"` // Voxels along the longest axis
	Concavity  float64 `yaml:"concavity"`  // Relative volume tolerance
	PreferFast bool    `yaml:"prefer_fast"`
	Workers    int     `yaml:"workers"` // Parallel component decompositions; 0 = NumCPU
}

// UploadConfig holds delivery settings.
type UploadConfig struct {
	Endpoint       string        `yaml:"endpoint"` // Websocket URL of the body sink
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Retries        int           `yaml:"retries"`     // Attempts per body beyond the first
	RetryDelay     time.Duration `yaml:"retry_delay"` // Base backoff delay, doubled per retry
	DryRun         bool          `yaml:"dry_run"`     // Log bodies instead of delivering them
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Document: DocumentConfig{
			Scale: 4.0,
		},
		Decompose: DecomposeConfig{
			Strategy:   StrategyDecompose,
			Resolution: 256,
			Concavity:  0.0001,
			PreferFast: true,
			Workers:    0,
		},
		Upload: UploadConfig{
			Endpoint:       "ws://localhost:3000",
			ConnectTimeout: 10 * time.Second,
			Retries:        3,
			RetryDelay:     500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
