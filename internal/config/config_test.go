// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
storage:
  driver: "sqlite"
  path: "./test.db"
  prefix: "test_"

logging:
  level: "debug"
  format: "json"

map:
  center_lat: 48.8566
  center_lng: 2.3522
  zoom: 12
  geolocation_timeout: "3s"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, "sqlite")
	}
	if cfg.Storage.Path != "./test.db" {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, "./test.db")
	}
	if cfg.Storage.Prefix != "test_" {
		t.Errorf("Storage.Prefix = %q, want %q", cfg.Storage.Prefix, "test_")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Map.CenterLat != 48.8566 || cfg.Map.CenterLng != 2.3522 {
		t.Errorf("Map center = %v,%v, want 48.8566,2.3522", cfg.Map.CenterLat, cfg.Map.CenterLng)
	}
	if cfg.Map.Zoom != 12 {
		t.Errorf("Map.Zoom = %d, want 12", cfg.Map.Zoom)
	}
	if cfg.Map.GeolocationTimeout != 3*time.Second {
		t.Errorf("Map.GeolocationTimeout = %v, want 3s", cfg.Map.GeolocationTimeout)
	}
}

func TestLoad_TOMLMatchesYAML(t *testing.T) {
	yamlPath := writeConfig(t, "config.yaml", `
storage:
  driver: memory
logging:
  level: warn
map:
  center_lat: 10.5
  center_lng: -20.25
  zoom: 5
  geolocation_timeout: 1m
`)
	tomlPath := writeConfig(t, "config.toml", `
[storage]
driver = "memory"

[logging]
level = "warn"

[map]
center_lat = 10.5
center_lng = -20.25
zoom = 5
geolocation_timeout = "1m"
`)

	fromYAML, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load(yaml) error = %v", err)
	}
	fromTOML, err := Load(tomlPath)
	if err != nil {
		t.Fatalf("Load(toml) error = %v", err)
	}

	if *fromYAML != *fromTOML {
		t.Errorf("YAML and TOML configs differ:\n yaml=%+v\n toml=%+v", *fromYAML, *fromTOML)
	}
	if fromTOML.Map.GeolocationTimeout != time.Minute {
		t.Errorf("GeolocationTimeout = %v, want 1m", fromTOML.Map.GeolocationTimeout)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "error"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if cfg.Storage != def.Storage {
		t.Errorf("Storage = %+v, want defaults %+v", cfg.Storage, def.Storage)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want default %q", cfg.Logging.Format, "text")
	}
	if cfg.Map.GeolocationTimeout != 7*time.Second {
		t.Errorf("GeolocationTimeout = %v, want 7s", cfg.Map.GeolocationTimeout)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_MAPSAPP_DB", "/tmp/from-env.db")
	t.Setenv("TEST_MAPSAPP_PREFIX", "env_")

	configPath := writeConfig(t, "config.yaml", `
storage:
  driver: sqlite
  path: "${TEST_MAPSAPP_DB}"
  prefix: "${TEST_MAPSAPP_PREFIX}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Path != "/tmp/from-env.db" {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, "/tmp/from-env.db")
	}
	if cfg.Storage.Prefix != "env_" {
		t.Errorf("Storage.Prefix = %q, want %q", cfg.Storage.Prefix, "env_")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "storage: [unclosed")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
map:
  geolocation_timeout: "soon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "geolocation_timeout") {
		t.Errorf("error %q should name the field", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"memory needs no path", func(c *Config) { c.Storage.Driver = DriverMemory; c.Storage.Path = "" }, ""},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "redis" }, "storage.driver"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"lat out of range", func(c *Config) { c.Map.CenterLat = 91 }, "map.center_lat"},
		{"lng out of range", func(c *Config) { c.Map.CenterLng = -181 }, "map.center_lng"},
		{"zoom out of range", func(c *Config) { c.Map.Zoom = 30 }, "map.zoom"},
		{"zero timeout", func(c *Config) { c.Map.GeolocationTimeout = 0 }, "geolocation_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	if got := DefaultPath(); got != filepath.Join("/xdg", "mapsapp", "config.yaml") {
		t.Errorf("DefaultPath() = %q", got)
	}

	t.Setenv(EnvConfigPath, "/etc/mapsapp.toml")
	if got := DefaultPath(); got != "/etc/mapsapp.toml" {
		t.Errorf("DefaultPath() = %q, want override", got)
	}
}

func TestLoadDefault(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v, want defaults for a missing file", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}

	// An explicit path must exist
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadDefault(); err == nil {
		t.Error("LoadDefault() expected error for a missing explicit path")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_A", "alpha")

	tests := []struct {
		in   string
		want string
	}{
		{"no vars", "no vars"},
		{"${TEST_EXPAND_A}", "alpha"},
		{"x-${TEST_EXPAND_A}-y", "x-alpha-y"},
		{"${TEST_EXPAND_UNSET_VAR}", ""},
		{"$TEST_EXPAND_A", "$TEST_EXPAND_A"},
	}

	for _, tt := range tests {
		if got := expandEnvVars(tt.in); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
