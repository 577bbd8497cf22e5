// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8420 {
		t.Errorf("Server.Port = %d, want 8420", cfg.Server.Port)
	}
	if cfg.Database.Path != "/data/lectern.duckdb" {
		t.Errorf("Database.Path = %q, want /data/lectern.duckdb", cfg.Database.Path)
	}
	if cfg.Events.Backend != "memory" {
		t.Errorf("Events.Backend = %q, want memory", cfg.Events.Backend)
	}
	if cfg.Engine.PatternWindow != 90*24*time.Hour {
		t.Errorf("Engine.PatternWindow = %v, want 90d", cfg.Engine.PatternWindow)
	}
	if cfg.Engine.InterestWindow != 14*24*time.Hour {
		t.Errorf("Engine.InterestWindow = %v, want 14d", cfg.Engine.InterestWindow)
	}
	if cfg.Engine.SpeedAveraging != "blend" {
		t.Errorf("Engine.SpeedAveraging = %q, want blend", cfg.Engine.SpeedAveraging)
	}
	if cfg.Engine.CommitRetries != 3 {
		t.Errorf("Engine.CommitRetries = %d, want 3", cfg.Engine.CommitRetries)
	}
	if cfg.Recommend.DefaultK != 10 || cfg.Recommend.MaxK != 50 {
		t.Errorf("Recommend K = %d/%d, want 10/50", cfg.Recommend.DefaultK, cfg.Recommend.MaxK)
	}
	if cfg.Recommend.MinScore != 0.30 {
		t.Errorf("Recommend.MinScore = %v, want 0.30", cfg.Recommend.MinScore)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "*" {
		t.Errorf("API.CORSOrigins = %v, want [*]", cfg.API.CORSOrigins)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"SERVER_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"DUCKDB_BREAKER_THRESHOLD", "database.breaker_failure_threshold"},
		{"STATE_IN_MEMORY", "state.in_memory"},
		{"NATS_URL", "events.nats_url"},
		{"EVENTS_BACKEND", "events.backend"},
		{"NATS_EMBEDDED", "events.nats_embedded"},
		{"ENGINE_TIMEZONE", "engine.timezone"},
		{"ENGINE_SPEED_AVERAGING", "engine.speed_averaging"},
		{"RECOMMEND_CACHE_TTL", "recommend.cache_ttl"},
		{"BATCH_INTERVAL", "batch.interval"},
		{"LOG_LEVEL", "logging.level"},
		{"API_CORS_ORIGINS", "api.cors_origins"},

		// Unmapped variables are ignored
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFindConfigFile tests config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	t.Run("CONFIG_PATH takes priority", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, configPath)
		if got := findConfigFile(); got != configPath {
			t.Errorf("findConfigFile() = %q, want %q", got, configPath)
		}
	})

	t.Run("missing CONFIG_PATH falls through", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(tmpDir, "missing.yaml"))
		oldPaths := DefaultConfigPaths
		DefaultConfigPaths = []string{filepath.Join(tmpDir, "nope.yaml")}
		defer func() { DefaultConfigPaths = oldPaths }()

		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENGINE_TIMEZONE", "Europe/Berlin")
	t.Setenv("RECOMMEND_CACHE_TTL", "90s")
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STATE_IN_MEMORY", "true")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Engine.Timezone != "Europe/Berlin" {
		t.Errorf("Engine.Timezone = %q, want Europe/Berlin", cfg.Engine.Timezone)
	}
	if cfg.Recommend.CacheTTL != 90*time.Second {
		t.Errorf("Recommend.CacheTTL = %v, want 90s", cfg.Recommend.CacheTTL)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("API.CORSOrigins = %v, want two trimmed origins", cfg.API.CORSOrigins)
	}
	if !cfg.State.InMemory {
		t.Error("State.InMemory = false, want true")
	}

	// Defaults are still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

// TestLoadWithKoanfConfigFile tests file loading and env precedence over the file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"
engine:
  speed_averaging: "mean"
  commit_retries: 5
events:
  backend: "nats"
  nats_url: "nats://broker:4222"
logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %+v, want 127.0.0.1:8888", cfg.Server)
	}
	if cfg.Engine.SpeedAveraging != "mean" || cfg.Engine.CommitRetries != 5 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Events.Backend != "nats" || cfg.Events.NATSURL != "nats://broker:4222" {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env overrides file)", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/data/lectern.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

// TestLoadWithKoanfValidation tests that invalid values are rejected
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid port", map[string]string{"SERVER_PORT": "70000"}},
		{"invalid log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"invalid timezone", map[string]string{"ENGINE_TIMEZONE": "Mars/Olympus"}},
		{"invalid speed averaging", map[string]string{"ENGINE_SPEED_AVERAGING": "median"}},
		{"invalid backend", map[string]string{"EVENTS_BACKEND": "kafka"}},
		{"nats without scheme", map[string]string{"EVENTS_BACKEND": "nats", "NATS_URL": "broker:4222"}},
		{"embedded nats without store", map[string]string{"EVENTS_BACKEND": "nats", "NATS_EMBEDDED": "true", "NATS_STORE_DIR": ""}},
		{"min score out of range", map[string]string{"RECOMMEND_MIN_SCORE": "1.5"}},
		{"zero commit retries", map[string]string{"ENGINE_COMMIT_RETRIES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadWithKoanf(); err == nil {
				t.Error("LoadWithKoanf() error = nil, want validation error")
			}
		})
	}
}

func TestValidate_EmbeddedNATSIgnoresURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Events.Backend = "nats"
	cfg.Events.NATSURL = ""
	cfg.Events.NATSEmbedded = true
	cfg.Events.NATSStoreDir = t.TempDir()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_DisabledSectionsSkipChecks(t *testing.T) {
	cfg := defaultConfig()
	cfg.Events.Enabled = false
	cfg.Events.Backend = "unknown"
	cfg.Batch.Enabled = false
	cfg.Batch.Concurrency = 0
	cfg.API.RateLimitDisabled = true
	cfg.API.RateLimitRequests = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEngineConfig_Location(t *testing.T) {
	e := EngineConfig{}
	loc, err := e.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v; want UTC", loc, err)
	}

	e.Timezone = "America/New_York"
	loc, err = e.Location()
	if err != nil || loc.String() != "America/New_York" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}
