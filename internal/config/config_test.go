package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Cache.Root != filepath.Join(os.TempDir(), "EDGE", "SavedMeshData") {
		t.Errorf("unexpected default cache root %s", cfg.Cache.Root)
	}
	if cfg.Cache.Format != "text" {
		t.Errorf("expected format 'text', got %s", cfg.Cache.Format)
	}
	if filepath.Base(cfg.Materials.TablePath) != "materials.yaml" {
		t.Errorf("expected materials.yaml table, got %s", cfg.Materials.TablePath)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)

	yamlContent := `
cache:
  root: /var/cache/meshbake
  format: binary

materials:
  table_path: /etc/meshbake/materials.toml

logging:
  level: "debug"
  log_file: "meshbake.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Cache.Root != "/var/cache/meshbake" {
		t.Errorf("expected cache root /var/cache/meshbake, got %s", cfg.Cache.Root)
	}
	if cfg.Cache.Format != "binary" {
		t.Errorf("expected format 'binary', got %s", cfg.Cache.Format)
	}
	if cfg.Materials.TablePath != "/etc/meshbake/materials.toml" {
		t.Errorf("unexpected table path %s", cfg.Materials.TablePath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshbake.log" {
		t.Errorf("expected log file 'meshbake.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile_Partial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, []byte("cache:\n  format: binary\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Cache.Root != DefaultCacheRoot() {
		t.Errorf("cache root changed to %s", cfg.Cache.Root)
	}
	if cfg.Cache.Format != "binary" {
		t.Errorf("expected format 'binary', got %s", cfg.Cache.Format)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
cache:
  root: [unterminated
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
	if err := loadFromFile(cfg, "/nonexistent/path/meshbake.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
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

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("cache:\n  format: text\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "cache root flag",
			setup: func() { *flagCacheRoot = "/srv/meshes" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Cache.Root != "/srv/meshes" {
					t.Errorf("expected cache root /srv/meshes, got %s", cfg.Cache.Root)
				}
			},
			teardown: func() { *flagCacheRoot = "" },
		},
		{
			name:  "format flag",
			setup: func() { *flagFormat = "binary" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Cache.Format != "binary" {
					t.Errorf("expected format binary, got %s", cfg.Cache.Format)
				}
			},
			teardown: func() { *flagFormat = "" },
		},
		{
			name:  "materials flag",
			setup: func() { *flagMaterials = "table.toml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Materials.TablePath != "table.toml" {
					t.Errorf("expected table.toml, got %s", cfg.Materials.TablePath)
				}
			},
			teardown: func() { *flagMaterials = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)

	yamlContent := `
cache:
  root: /from/file
  format: binary
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagCacheRoot = "/from/flag"
	defer func() {
		*flagConfig = ""
		*flagCacheRoot = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Cache.Root != "/from/flag" {
		t.Errorf("expected cache root from flag, got %s", cfg.Cache.Root)
	}
	if cfg.Cache.Format != "binary" {
		t.Errorf("expected format from file, got %s", cfg.Cache.Format)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Cache.Format = "binary"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Cache.Format != "binary" {
		t.Errorf("expected format binary after reload, got %s", loaded.Cache.Format)
	}
}
