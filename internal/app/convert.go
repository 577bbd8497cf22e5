// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package app

import (
	"fmt"

	"github.com/tomtom215/lectern/internal/api"
	"github.com/tomtom215/lectern/internal/behavior"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/eventprocessor"
	"github.com/tomtom215/lectern/internal/learning"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/recommend"
	"github.com/tomtom215/lectern/internal/supervisor/services"
)

// BehaviorConfig converts the engine section into the core configuration.
func BehaviorConfig(cfg *config.EngineConfig) (*behavior.Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	bc := behavior.DefaultConfig()
	bc.PatternWindow = cfg.PatternWindow
	bc.InterestWindow = cfg.InterestWindow
	bc.LevelWindow = cfg.LevelWindow
	bc.ConsistencyWindow = cfg.ConsistencyWindow
	bc.EngagementTrendWindow = cfg.EngagementTrendWindow
	bc.SpeedAveraging = behavior.SpeedAveraging(cfg.SpeedAveraging)
	bc.Location = loc
	return bc, bc.Validate()
}

// LearningConfig converts the engine and batch sections into coordinator settings.
func LearningConfig(cfg *config.Config) (learning.Config, error) {
	bc, err := BehaviorConfig(&cfg.Engine)
	if err != nil {
		return learning.Config{}, err
	}
	lc := learning.DefaultConfig()
	lc.Behavior = bc
	lc.CommitRetries = cfg.Engine.CommitRetries
	lc.StoreTimeout = cfg.Engine.StoreTimeout
	lc.BatchConcurrency = cfg.Batch.Concurrency
	lc.BatchUsersPerSecond = cfg.Batch.UsersPerSecond
	lc.ActiveWindow = cfg.Batch.ActiveWindow
	return lc, nil
}

// RecommendConfig overlays the recommend section on the engine defaults.
func RecommendConfig(cfg *config.RecommendConfig) *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.MinScore = cfg.MinScore
	rc.TimeBudget.DefaultWPM = cfg.DefaultWPM
	rc.Limits.DefaultK = cfg.DefaultK
	rc.Limits.MaxK = cfg.MaxK
	rc.Cache.Enabled = cfg.CacheEnabled
	rc.Cache.TTL = cfg.CacheTTL
	rc.Cache.MaxEntries = cfg.CacheMaxEntries
	return rc
}

// EventsConfig converts the events section into pipeline settings.
func EventsConfig(cfg *config.EventsConfig) eventprocessor.Config {
	ec := eventprocessor.DefaultConfig()
	ec.Backend = eventprocessor.Backend(cfg.Backend)
	ec.Topic = cfg.Topic
	ec.PoisonTopic = cfg.PoisonTopic
	ec.Subscribers = cfg.Subscribers

	ec.Router.CloseTimeout = cfg.CloseTimeout
	ec.Router.RetryMaxRetries = cfg.RetryCount
	ec.Router.RetryInitialInterval = cfg.RetryInitialInterval
	ec.Router.ThrottlePerSecond = cfg.ThrottlePerSecond
	ec.Router.PoisonQueueTopic = cfg.PoisonTopic
	ec.Router.DedupWindow = cfg.DedupWindow

	ec.NATS.URL = cfg.NATSURL
	ec.NATS.QueueGroup = cfg.QueueGroup
	ec.NATS.StreamName = cfg.StreamName
	if cfg.NATSEmbedded {
		server := eventprocessor.DefaultServerConfig()
		server.StoreDir = cfg.NATSStoreDir
		ec.NATS.Embedded = &server
	}
	return ec
}

// MiddlewareConfig converts the api section into chi middleware settings.
func MiddlewareConfig(cfg *config.APIConfig) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.CORSOrigins
	mc.RateLimitRequests = cfg.RateLimitRequests
	mc.RateLimitWindow = cfg.RateLimitWindow
	mc.RateLimitDisabled = cfg.RateLimitDisabled
	return mc
}

// BatchServiceConfig converts the batch section into service settings.
func BatchServiceConfig(cfg *config.BatchConfig) services.BatchServiceConfig {
	return services.BatchServiceConfig{
		RunOnStartup: cfg.RunOnStartup,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
	}
}

// LoggingConfig converts the logging section.
func LoggingConfig(cfg *config.LoggingConfig) logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Level
	lc.Format = cfg.Format
	lc.Caller = cfg.Caller
	return lc
}
