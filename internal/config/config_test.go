package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helios.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: "http://helios.local:9000"
  timeout: "15s"
  retry_attempts: 3
  retry_delay: "250ms"
chart:
  height: 30
  width: 80
  rows: 16
synth:
  lookback: "24h"
  interval: "15m"
ticket:
  default_quantity: 200
  watch_quantity: 25
logging:
  level: "debug"
  format: "text"
  file: "/tmp/helios.log"
storage:
  export_dir: "/tmp/helios/data"
`)

	// Clear any environment overrides that might interfere.
	t.Setenv("HELIOS_BASE_URL", "")
	t.Setenv("HELIOS_LOG_LEVEL", "")
	t.Setenv("HELIOS_EXPORT_DIR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Server --
	if cfg.Server.BaseURL != "http://helios.local:9000" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "http://helios.local:9000")
	}
	if cfg.Server.Timeout.Std() != 15*time.Second {
		t.Errorf("Server.Timeout = %v, want %v", cfg.Server.Timeout.Std(), 15*time.Second)
	}
	if cfg.Server.RetryAttempts != 3 {
		t.Errorf("Server.RetryAttempts = %d, want %d", cfg.Server.RetryAttempts, 3)
	}
	if cfg.Server.RetryDelay.Std() != 250*time.Millisecond {
		t.Errorf("Server.RetryDelay = %v, want %v", cfg.Server.RetryDelay.Std(), 250*time.Millisecond)
	}

	// -- Chart --
	if cfg.Chart.Height != 30 || cfg.Chart.Width != 80 || cfg.Chart.Rows != 16 {
		t.Errorf("Chart = %+v, want height 30 width 80 rows 16", cfg.Chart)
	}

	// -- Synth --
	if cfg.Synth.Lookback.Std() != 24*time.Hour {
		t.Errorf("Synth.Lookback = %v, want %v", cfg.Synth.Lookback.Std(), 24*time.Hour)
	}
	if cfg.Synth.Interval.Std() != 15*time.Minute {
		t.Errorf("Synth.Interval = %v, want %v", cfg.Synth.Interval.Std(), 15*time.Minute)
	}

	// -- Ticket --
	if cfg.Ticket.DefaultQuantity != 200 || cfg.Ticket.WatchQuantity != 25 {
		t.Errorf("Ticket = %+v, want 200/25", cfg.Ticket)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}

	// -- Storage --
	if cfg.Storage.ExportDir != "/tmp/helios/data" {
		t.Errorf("Storage.ExportDir = %q, want %q", cfg.Storage.ExportDir, "/tmp/helios/data")
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  base_url: \"\"\n")
	t.Setenv("HELIOS_BASE_URL", "")
	t.Setenv("HELIOS_LOG_LEVEL", "")
	t.Setenv("HELIOS_EXPORT_DIR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("Server.BaseURL = %q, want default", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 0 {
		t.Errorf("Server.Timeout = %v, want 0 (no timeout)", cfg.Server.Timeout.Std())
	}
	if cfg.Server.RetryAttempts != 1 {
		t.Errorf("Server.RetryAttempts = %d, want 1", cfg.Server.RetryAttempts)
	}
	if cfg.Chart.Height != 24 {
		t.Errorf("Chart.Height = %v, want 24", cfg.Chart.Height)
	}
	if cfg.Synth.Lookback.Std() != 48*time.Hour || cfg.Synth.Interval.Std() != 30*time.Minute {
		t.Errorf("Synth = %v/%v, want 48h/30m", cfg.Synth.Lookback.Std(), cfg.Synth.Interval.Std())
	}
	if cfg.Ticket.DefaultQuantity != 100 || cfg.Ticket.WatchQuantity != 50 {
		t.Errorf("Ticket = %+v, want 100/50", cfg.Ticket)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: "http://yaml-host:8080"
logging:
  level: "warn"
`)

	t.Setenv("HELIOS_BASE_URL", "http://env-host:7070")
	t.Setenv("HELIOS_LOG_LEVEL", "")
	t.Setenv("HELIOS_EXPORT_DIR", "/env/data")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://env-host:7070" {
		t.Errorf("Server.BaseURL = %q, want %q (env override)", cfg.Server.BaseURL, "http://env-host:7070")
	}
	// level should remain from YAML since no env override was set.
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q (from YAML)", cfg.Logging.Level, "warn")
	}
	if cfg.Storage.ExportDir != "/env/data" {
		t.Errorf("Storage.ExportDir = %q, want %q (env override)", cfg.Storage.ExportDir, "/env/data")
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "synth:\n  lookback: \"two days\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on an unparsable duration")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	t.Setenv("HELIOS_BASE_URL", "")
	t.Setenv("HELIOS_LOG_LEVEL", "error")
	t.Setenv("HELIOS_EXPORT_DIR", "")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() returned error: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("Server.BaseURL = %q, want default", cfg.Server.BaseURL)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "error")
	}
}
