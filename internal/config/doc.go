// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package config provides centralized configuration management for Lectern.

Configuration is layered with Koanf v2. Each layer overrides the previous one:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/lectern/config.yaml)
 3. Environment variables listed in the mapping table in koanf.go

Unmapped environment variables are ignored. Comma-separated values are split
for slice fields such as api.cors_origins.

# Sections

  - server: HTTP listener (SERVER_HOST, SERVER_PORT, SERVER_TIMEOUT)
  - api: CORS and rate limiting (API_CORS_ORIGINS, RATE_LIMIT_REQUESTS)
  - database: DuckDB file and circuit breaker (DUCKDB_PATH, DUCKDB_MAX_MEMORY)
  - state: Badger profile/pattern store (STATE_PATH, STATE_IN_MEMORY)
  - events: Watermill transport (EVENTS_ENABLED, EVENTS_BACKEND, NATS_URL)
  - engine: analytics windows and commit behavior (ENGINE_TIMEZONE)
  - recommend: recommendation cache and limits (RECOMMEND_CACHE_TTL)
  - batch: periodic learning cycles (BATCH_ENABLED, BATCH_INTERVAL)
  - logging: zerolog level and format (LOG_LEVEL, LOG_FORMAT)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    return err
	}
	db, err := database.New(&cfg.Database)
*/
package config
