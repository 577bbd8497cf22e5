// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Database  DatabaseConfig  `koanf:"database"`
	State     StateConfig     `koanf:"state"`
	Events    EventsConfig    `koanf:"events"`
	Engine    EngineConfig    `koanf:"engine"`
	Recommend RecommendConfig `koanf:"recommend"`
	Batch     BatchConfig     `koanf:"batch"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)

	// QueryTimeout bounds every repository call that has no earlier deadline.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// BreakerFailureThreshold is the number of consecutive failures that opens
	// the circuit breaker around the connection.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// StateConfig holds Badger state store settings
type StateConfig struct {
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// EventsConfig holds asynchronous ingestion settings.
//
// Backend "memory" uses an in-process Watermill gochannel. Backend "nats"
// connects to NATS JetStream at NATSURL, or to an in-process server when
// NATSEmbedded is set.
type EventsConfig struct {
	Enabled              bool          `koanf:"enabled"`
	Backend              string        `koanf:"backend"`
	NATSURL              string        `koanf:"nats_url"`
	Topic                string        `koanf:"topic"`
	PoisonTopic          string        `koanf:"poison_topic"`
	QueueGroup           string        `koanf:"queue_group"`
	Subscribers          int           `koanf:"subscribers"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	ThrottlePerSecond    int64         `koanf:"throttle_per_second"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	// StreamName is the JetStream stream holding Topic. PoisonTopic is kept
	// in StreamName + "_POISON".
	StreamName string `koanf:"stream_name"`

	// DedupWindow is how long applied event ids are remembered. Zero disables.
	DedupWindow time.Duration `koanf:"dedup_window"`

	// NATSEmbedded starts a JetStream server inside the process and ignores NATSURL.
	NATSEmbedded bool   `koanf:"nats_embedded"`
	NATSStoreDir string `koanf:"nats_store_dir"`
}

// EngineConfig holds the analytics windows and learning commit settings.
type EngineConfig struct {
	PatternWindow         time.Duration `koanf:"pattern_window"`
	InterestWindow        time.Duration `koanf:"interest_window"`
	LevelWindow           time.Duration `koanf:"level_window"`
	ConsistencyWindow     time.Duration `koanf:"consistency_window"`
	EngagementTrendWindow time.Duration `koanf:"engagement_trend_window"`

	// SpeedAveraging is "blend" (average with the previous value) or "mean"
	// (true running mean over samples).
	SpeedAveraging string `koanf:"speed_averaging"`

	// Timezone is the IANA zone used for calendar dates and hours of day.
	Timezone string `koanf:"timezone"`

	// CommitRetries bounds recomputation after an optimistic commit conflict.
	CommitRetries int `koanf:"commit_retries"`

	// StoreTimeout is applied to every store call made by the coordinator.
	StoreTimeout time.Duration `koanf:"store_timeout"`
}

// Location resolves Timezone. An empty zone means UTC.
func (e *EngineConfig) Location() (*time.Location, error) {
	if e.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(e.Timezone)
}

// RecommendConfig holds recommendation engine settings
type RecommendConfig struct {
	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`
	DefaultK        int           `koanf:"default_k"`
	MaxK            int           `koanf:"max_k"`
	MinScore        float64       `koanf:"min_score"`
	DefaultWPM      float64       `koanf:"default_wpm"`
}

// BatchConfig holds periodic learning cycle settings
type BatchConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Interval     time.Duration `koanf:"interval"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	Concurrency  int           `koanf:"concurrency"`

	// ActiveWindow selects users with at least one session inside it.
	ActiveWindow time.Duration `koanf:"active_window"`

	// Timeout bounds one full batch run.
	Timeout time.Duration `koanf:"timeout"`

	// UsersPerSecond paces per-user cycles. Zero disables pacing.
	UsersPerSecond float64 `koanf:"users_per_second"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from all layers and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Defaults returns the built-in configuration without reading the
// environment or any file.
func Defaults() *Config {
	return defaultConfig()
}
