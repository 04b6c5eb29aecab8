package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagDocument   = flag.String("document", "", "Path to the scene document (.gltf or .glb)")
	flagScale      = flag.Float64("scale", 0, "Uniform scale applied above the scene roots")
	flagStrategy   = flag.String("strategy", "", "Geometry strategy: raw or decompose")
	flagResolution = flag.Int("resolution", 0, "Decomposition voxel resolution")
	flagConcavity  = flag.Float64("concavity", 0, "Decomposition concavity tolerance")
	flagEndpoint   = flag.String("endpoint", "", "Websocket endpoint of the body sink")
	flagWorkers    = flag.Int("workers", 0, "Parallel component decompositions")
	flagDryRun     = flag.Bool("dry-run", false, "Log bodies instead of uploading them")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDocument != "" {
		cfg.Document.Path = *flagDocument
	}
	if *flagScale > 0 {
		cfg.Document.Scale = float32(*flagScale)
	}
	if *flagStrategy != "" {
		cfg.Decompose.Strategy = *flagStrategy
	}
	if *flagResolution > 0 {
		cfg.Decompose.Resolution = *flagResolution
	}
	if *flagConcavity > 0 {
		cfg.Decompose.Concavity = *flagConcavity
	}
	if *flagEndpoint != "" {
		cfg.Upload.Endpoint = *flagEndpoint
	}
	if *flagWorkers > 0 {
		cfg.Decompose.Workers = *flagWorkers
	}
	if *flagDryRun {
		cfg.Upload.DryRun = true
	}
}
