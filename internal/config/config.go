// Package config handles meshbake configuration loading and management.
package config

import (
	"os"
	"path/filepath"
)

// Config holds all meshbake settings.
type Config struct {
	Cache     CacheConfig     `yaml:"cache"`
	Materials MaterialsConfig `yaml:"materials"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CacheConfig holds the on-disk section cache settings.
type CacheConfig struct {
	Root   string `yaml:"root"`   // Directory holding <template>.<ext> files
	Format string `yaml:"format"` // "text" or "binary"
}

// MaterialsConfig holds the material-name table location.
type MaterialsConfig struct {
	TablePath string `yaml:"table_path"` // .yaml, .yml or .toml
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultCacheRoot returns the cache directory used when none is configured.
func DefaultCacheRoot() string {
	return filepath.Join(os.TempDir(), "EDGE", "SavedMeshData")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Root:   DefaultCacheRoot(),
			Format: "text",
		},
		Materials: MaterialsConfig{
			TablePath: filepath.Join(ConfigDir(), "materials.yaml"),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
