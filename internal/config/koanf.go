// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lectern/config.yaml",
	"/etc/lectern/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

const day = 24 * time.Hour

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8420,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			RequestTimeout:    20 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                    "/data/lectern.duckdb",
			MaxMemory:               "1GB",
			Threads:                 0,
			QueryTimeout:            10 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
		},
		State: StateConfig{
			Path:       "/data/state",
			SyncWrites: true,
		},
		Events: EventsConfig{
			Enabled:              true,
			Backend:              "memory",
			NATSURL:              "nats://127.0.0.1:4222",
			Topic:                "reading.progress",
			PoisonTopic:          "reading.progress.poison",
			QueueGroup:           "lectern-progress",
			Subscribers:          4,
			RetryCount:           5,
			RetryInitialInterval: 100 * time.Millisecond,
			ThrottlePerSecond:    0,
			CloseTimeout:         30 * time.Second,
			StreamName:           "LECTERN_PROGRESS",
			DedupWindow:          10 * time.Minute,
			NATSStoreDir:         "/data/nats",
		},
		Engine: EngineConfig{
			PatternWindow:         90 * day,
			InterestWindow:        14 * day,
			LevelWindow:           30 * day,
			ConsistencyWindow:     30 * day,
			EngagementTrendWindow: 60 * day,
			SpeedAveraging:        "blend",
			Timezone:              "UTC",
			CommitRetries:         3,
			StoreTimeout:          10 * time.Second,
		},
		Recommend: RecommendConfig{
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			CacheMaxEntries: 10000,
			DefaultK:        10,
			MaxK:            50,
			MinScore:        0.30,
			DefaultWPM:      200,
		},
		Batch: BatchConfig{
			Enabled:        true,
			Interval:       6 * time.Hour,
			RunOnStartup:   false,
			Concurrency:    4,
			ActiveWindow:   90 * day,
			Timeout:        30 * time.Minute,
			UsersPerSecond: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file or defaults), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_timeout":          "server.timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",

	// API
	"api_cors_origins":    "api.cors_origins",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"api_request_timeout": "api.request_timeout",

	// Database
	"duckdb_path":              "database.path",
	"duckdb_max_memory":        "database.max_memory",
	"duckdb_threads":           "database.threads",
	"duckdb_query_timeout":     "database.query_timeout",
	"duckdb_breaker_threshold": "database.breaker_failure_threshold",
	"duckdb_breaker_timeout":   "database.breaker_timeout",

	// State store
	"state_path":        "state.path",
	"state_in_memory":   "state.in_memory",
	"state_sync_writes": "state.sync_writes",

	// Events
	"events_enabled":                "events.enabled",
	"events_backend":                "events.backend",
	"nats_url":                      "events.nats_url",
	"events_topic":                  "events.topic",
	"events_poison_topic":           "events.poison_topic",
	"events_queue_group":            "events.queue_group",
	"events_subscribers":            "events.subscribers",
	"events_retry_count":            "events.retry_count",
	"events_retry_initial_interval": "events.retry_initial_interval",
	"events_throttle_per_second":    "events.throttle_per_second",
	"events_close_timeout":          "events.close_timeout",
	"events_stream_name":            "events.stream_name",
	"events_dedup_window":           "events.dedup_window",
	"nats_embedded":                 "events.nats_embedded",
	"nats_store_dir":                "events.nats_store_dir",

	// Engine
	"engine_pattern_window":          "engine.pattern_window",
	"engine_interest_window":         "engine.interest_window",
	"engine_level_window":            "engine.level_window",
	"engine_consistency_window":      "engine.consistency_window",
	"engine_engagement_trend_window": "engine.engagement_trend_window",
	"engine_speed_averaging":         "engine.speed_averaging",
	"engine_timezone":                "engine.timezone",
	"engine_commit_retries":          "engine.commit_retries",
	"engine_store_timeout":           "engine.store_timeout",

	// Recommend
	"recommend_cache_enabled":     "recommend.cache_enabled",
	"recommend_cache_ttl":         "recommend.cache_ttl",
	"recommend_cache_max_entries": "recommend.cache_max_entries",
	"recommend_default_k":         "recommend.default_k",
	"recommend_max_k":             "recommend.max_k",
	"recommend_min_score":         "recommend.min_score",
	"recommend_default_wpm":       "recommend.default_wpm",

	// Batch
	"batch_enabled":          "batch.enabled",
	"batch_interval":         "batch.interval",
	"batch_run_on_startup":   "batch.run_on_startup",
	"batch_concurrency":      "batch.concurrency",
	"batch_active_window":    "batch.active_window",
	"batch_timeout":          "batch.timeout",
	"batch_users_per_second": "batch.users_per_second",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - SERVER_PORT -> server.port
//   - NATS_URL -> events.nats_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
