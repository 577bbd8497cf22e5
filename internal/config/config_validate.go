// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateState(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateEngine(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateBatch(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitDisabled {
		return nil
	}
	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.API.RateLimitRequests)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.API.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be positive, got %v", c.Database.QueryTimeout)
	}
	if c.Database.BreakerFailureThreshold == 0 {
		return fmt.Errorf("DUCKDB_BREAKER_THRESHOLD must be positive")
	}
	return nil
}

func (c *Config) validateState() error {
	if !c.State.InMemory && c.State.Path == "" {
		return fmt.Errorf("STATE_PATH is required unless STATE_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}

	switch c.Events.Backend {
	case "memory":
	case "nats":
		if c.Events.NATSEmbedded {
			if c.Events.NATSStoreDir == "" {
				return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
			}
		} else if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
		if c.Events.StreamName == "" || strings.ContainsAny(c.Events.StreamName, ".*> ") {
			return fmt.Errorf("EVENTS_STREAM_NAME must be set and contain no '.', '*', '>' or spaces (got %q)", c.Events.StreamName)
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of: memory, nats (got %q)", c.Events.Backend)
	}

	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_ENABLED=true")
	}
	if c.Events.PoisonTopic == "" || c.Events.PoisonTopic == c.Events.Topic {
		return fmt.Errorf("EVENTS_POISON_TOPIC must be set and differ from EVENTS_TOPIC")
	}
	if c.Events.Subscribers < 1 {
		return fmt.Errorf("EVENTS_SUBSCRIBERS must be positive, got %d", c.Events.Subscribers)
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must be non-negative, got %d", c.Events.RetryCount)
	}
	if c.Events.DedupWindow < 0 {
		return fmt.Errorf("EVENTS_DEDUP_WINDOW must be non-negative, got %v", c.Events.DedupWindow)
	}
	return nil
}

func (c *Config) validateEngine() error {
	e := &c.Engine
	windows := map[string]int64{
		"ENGINE_PATTERN_WINDOW":          int64(e.PatternWindow),
		"ENGINE_INTEREST_WINDOW":         int64(e.InterestWindow),
		"ENGINE_LEVEL_WINDOW":            int64(e.LevelWindow),
		"ENGINE_CONSISTENCY_WINDOW":      int64(e.ConsistencyWindow),
		"ENGINE_ENGAGEMENT_TREND_WINDOW": int64(e.EngagementTrendWindow),
	}
	for name, w := range windows {
		if w <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	switch e.SpeedAveraging {
	case "blend", "mean":
	default:
		return fmt.Errorf("ENGINE_SPEED_AVERAGING must be one of: blend, mean (got %q)", e.SpeedAveraging)
	}

	if _, err := e.Location(); err != nil {
		return fmt.Errorf("ENGINE_TIMEZONE is invalid: %w", err)
	}
	if e.CommitRetries < 1 {
		return fmt.Errorf("ENGINE_COMMIT_RETRIES must be positive, got %d", e.CommitRetries)
	}
	if e.StoreTimeout <= 0 {
		return fmt.Errorf("ENGINE_STORE_TIMEOUT must be positive, got %v", e.StoreTimeout)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.DefaultK < 1 || r.MaxK < r.DefaultK {
		return fmt.Errorf("RECOMMEND_DEFAULT_K must be positive and not exceed RECOMMEND_MAX_K (got %d, %d)", r.DefaultK, r.MaxK)
	}
	if r.MinScore < 0 || r.MinScore >= 1 {
		return fmt.Errorf("RECOMMEND_MIN_SCORE must be in [0, 1), got %f", r.MinScore)
	}
	if r.DefaultWPM <= 0 {
		return fmt.Errorf("RECOMMEND_DEFAULT_WPM must be positive, got %f", r.DefaultWPM)
	}
	if r.CacheEnabled && (r.CacheTTL <= 0 || r.CacheMaxEntries < 1) {
		return fmt.Errorf("RECOMMEND_CACHE_TTL and RECOMMEND_CACHE_MAX_ENTRIES must be positive when caching is enabled")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if !c.Batch.Enabled {
		return nil
	}
	if c.Batch.Interval <= 0 {
		return fmt.Errorf("BATCH_INTERVAL must be positive, got %v", c.Batch.Interval)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive, got %d", c.Batch.Concurrency)
	}
	if c.Batch.ActiveWindow <= 0 {
		return fmt.Errorf("BATCH_ACTIVE_WINDOW must be positive, got %v", c.Batch.ActiveWindow)
	}
	if c.Batch.UsersPerSecond < 0 {
		return fmt.Errorf("BATCH_USERS_PER_SECOND must be non-negative, got %f", c.Batch.UsersPerSecond)
	}
	return nil
}

func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, panic (got %q)", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}

// validateNATSURL validates a nats:// or tls:// URL.
func validateNATSURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("scheme must be nats or tls, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
