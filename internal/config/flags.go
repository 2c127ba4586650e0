package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagCacheRoot = flag.String("cache-root", "", "Directory holding saved mesh data")
	flagFormat    = flag.String("format", "", "Cache file format: text or binary")
	flagMaterials = flag.String("materials", "", "Path to the material-name table (.yaml or .toml)")
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
	if *flagCacheRoot != "" {
		cfg.Cache.Root = *flagCacheRoot
	}
	if *flagFormat != "" {
		cfg.Cache.Format = *flagFormat
	}
	if *flagMaterials != "" {
		cfg.Materials.TablePath = *flagMaterials
	}
}
