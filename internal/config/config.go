// ABOUTME: Configuration loading and parsing for mapsapp
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config path.
const EnvConfigPath = "MAPSAPP_CONFIG"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config represents the complete mapsapp configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Map     MapConfig     `yaml:"map" toml:"map"`
}

// StorageConfig selects and configures the persistent store
type StorageConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // sqlite or memory
	Path   string `yaml:"path" toml:"path"`
	Prefix string `yaml:"prefix" toml:"prefix"` // key namespace
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MapConfig holds the initial viewport and geolocation settings
type MapConfig struct {
	CenterLat          float64       `yaml:"center_lat" toml:"center_lat"`
	CenterLng          float64       `yaml:"center_lng" toml:"center_lng"`
	Zoom               int           `yaml:"zoom" toml:"zoom"`
	GeolocationTimeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	GeolocationTimeoutRaw string `yaml:"geolocation_timeout" toml:"geolocation_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dataDir(), "mapsapp.db"),
			Prefix: "mapsapp_v1_",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Map: MapConfig{
			CenterLat:          55.7558,
			CenterLng:          37.6176,
			Zoom:               13,
			GeolocationTimeout: 7 * time.Second,
		},
	}
}

// DefaultPath returns the config file path: $MAPSAPP_CONFIG if set, else
// $XDG_CONFIG_HOME/mapsapp/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(configDir(), "mapsapp", "config.yaml")
}

// LoadDefault loads the file at DefaultPath. A missing file yields Default();
// an explicitly configured path must exist.
func LoadDefault() (*Config, error) {
	path := DefaultPath()
	cfg, err := Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) && os.Getenv(EnvConfigPath) == "" {
		return Default(), nil
	}
	return cfg, err
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Unset fields keep their Default() values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expandedData := expandEnvVars(string(data))

	cfg := Default()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expandedData, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverSQLite, DriverMemory, c.Storage.Driver)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return fmt.Errorf("map.center_lat %v out of range", c.Map.CenterLat)
	}
	if c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		return fmt.Errorf("map.center_lng %v out of range", c.Map.CenterLng)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		return fmt.Errorf("map.zoom %d out of range 0..22", c.Map.Zoom)
	}
	if c.Map.GeolocationTimeout <= 0 {
		return fmt.Errorf("map.geolocation_timeout must be positive")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Map.GeolocationTimeoutRaw == "" {
		cfg.Map.GeolocationTimeout = Default().Map.GeolocationTimeout
		return nil
	}

	d, err := time.ParseDuration(cfg.Map.GeolocationTimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing geolocation_timeout %q: %w", cfg.Map.GeolocationTimeoutRaw, err)
	}
	cfg.Map.GeolocationTimeout = d
	return nil
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return "."
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "mapsapp")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "mapsapp")
	}
	return "."
}
