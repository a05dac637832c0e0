package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the Helios clients.
type Config struct {
	Server  Server  `yaml:"server"`
	Chart   Chart   `yaml:"chart"`
	Synth   Synth   `yaml:"synth"`
	Ticket  Ticket  `yaml:"ticket"`
	Logging Logging `yaml:"logging"`
	Storage Storage `yaml:"storage"`
}

// Server holds the backend endpoint and request behaviour.
type Server struct {
	BaseURL       string   `yaml:"base_url"`
	Timeout       Duration `yaml:"timeout"`
	RetryAttempts int      `yaml:"retry_attempts"`
	RetryDelay    Duration `yaml:"retry_delay"`
}

// Chart controls chart projection and terminal plot size.
type Chart struct {
	Height float64 `yaml:"height"`
	Width  int     `yaml:"width"`
	Rows   int     `yaml:"rows"`
}

// Synth controls the synthetic price window.
type Synth struct {
	Lookback Duration `yaml:"lookback"`
	Interval Duration `yaml:"interval"`
}

// Ticket holds quantities used when a recommendation is loaded to the ticket.
type Ticket struct {
	DefaultQuantity int `yaml:"default_quantity"`
	WatchQuantity   int `yaml:"watch_quantity"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Storage holds paths for exported data.
type Storage struct {
	ExportDir string `yaml:"export_dir"`
}

// Duration is a time.Duration that unmarshals from Go duration strings such
// as "30m" or "48h".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a Config with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, fills unset fields with defaults, and then applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults (plus
// environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	if cfg.Server.RetryAttempts <= 0 {
		cfg.Server.RetryAttempts = 1
	}
	if cfg.Server.RetryDelay <= 0 {
		cfg.Server.RetryDelay = Duration(500 * time.Millisecond)
	}

	if cfg.Chart.Height <= 0 {
		cfg.Chart.Height = 24
	}
	if cfg.Chart.Width <= 0 {
		cfg.Chart.Width = 72
	}
	if cfg.Chart.Rows <= 0 {
		cfg.Chart.Rows = 12
	}

	if cfg.Synth.Lookback <= 0 {
		cfg.Synth.Lookback = Duration(48 * time.Hour)
	}
	if cfg.Synth.Interval <= 0 {
		cfg.Synth.Interval = Duration(30 * time.Minute)
	}

	if cfg.Ticket.DefaultQuantity <= 0 {
		cfg.Ticket.DefaultQuantity = 100
	}
	if cfg.Ticket.WatchQuantity <= 0 {
		cfg.Ticket.WatchQuantity = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = "helios-client.log"
	}

	if cfg.Storage.ExportDir == "" {
		cfg.Storage.ExportDir = "data"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HELIOS_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}

	if v := os.Getenv("HELIOS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("HELIOS_EXPORT_DIR"); v != "" {
		cfg.Storage.ExportDir = v
	}
}
