// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the contribution of each signal to the composite score.
	Weights ScoreWeights `json:"weights"`

	// MinScore is the exclusive inclusion threshold for ranked documents.
	// Default: 0.30.
	MinScore float64 `json:"min_score"`

	// Trending contains parameters for the popularity signal.
	Trending TrendingConfig `json:"trending"`

	// TimeBudget contains parameters for time-budgeted recommendations.
	TimeBudget TimeBudgetConfig `json:"time_budget"`

	// Limits contains result size limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`
}

// ScoreWeights defines the relative contribution of each signal.
type ScoreWeights struct {
	Interest   float64 `json:"interest"`
	Pattern    float64 `json:"pattern"`
	Similarity float64 `json:"similarity"`
	Trending   float64 `json:"trending"`
	Level      float64 `json:"level"`
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.Interest + w.Pattern + w.Similarity + w.Trending + w.Level
}

// TrendingConfig contains parameters for the trending signal.
type TrendingConfig struct {
	// Window is how far back reads are counted.
	// Default: 30 days.
	Window time.Duration `json:"window"`

	// SaturationReads is the read count at which popularity saturates.
	// Default: 10.
	SaturationReads int `json:"saturation_reads"`

	// MaxAgeDays is the age at which the age factor bottoms out.
	// Default: 365.
	MaxAgeDays int `json:"max_age_days"`

	// MinAgeFactor is the floor of the age factor.
	// Default: 0.1.
	MinAgeFactor float64 `json:"min_age_factor"`
}

// TimeBudgetConfig contains parameters for time-budgeted recommendations.
type TimeBudgetConfig struct {
	// DefaultWPM is used when the reader has no recent analytics.
	// Default: 200.
	DefaultWPM float64 `json:"default_wpm"`

	// Tolerance is the accepted relative deviation from the target word count.
	// Default: 0.2.
	Tolerance float64 `json:"tolerance"`

	// SpeedSamples is the number of most recent analytics averaged for speed.
	// Default: 5.
	SpeedSamples int `json:"speed_samples"`
}

// LimitsConfig contains result size limits.
type LimitsConfig struct {
	// DefaultK is the default number of personalized recommendations.
	DefaultK int `json:"default_k"`

	// MaxK caps the requested K.
	MaxK int `json:"max_k"`

	// DiscoveryK is the default number of discovery recommendations.
	DiscoveryK int `json:"discovery_k"`

	// TimeBudgetK caps time-budgeted recommendations.
	TimeBudgetK int `json:"time_budget_k"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled enables response caching.
	Enabled bool `json:"enabled"`

	// TTL is how long responses stay cached.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns the default recommendation configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: ScoreWeights{
			Interest:   0.40,
			Pattern:    0.25,
			Similarity: 0.20,
			Trending:   0.10,
			Level:      0.05,
		},
		MinScore: 0.30,
		Trending: TrendingConfig{
			Window:          30 * 24 * time.Hour,
			SaturationReads: 10,
			MaxAgeDays:      365,
			MinAgeFactor:    0.1,
		},
		TimeBudget: TimeBudgetConfig{
			DefaultWPM:   200,
			Tolerance:    0.2,
			SpeedSamples: 5,
		},
		Limits: LimitsConfig{
			DefaultK:    10,
			MaxK:        50,
			DiscoveryK:  5,
			TimeBudgetK: 5,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Interest < 0 || w.Pattern < 0 || w.Similarity < 0 || w.Trending < 0 || w.Level < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if sum := w.Sum(); sum > 1.0+1e-9 {
		return fmt.Errorf("weights must sum to at most 1, got %f", sum)
	}
	if c.MinScore < 0 || c.MinScore >= 1 {
		return fmt.Errorf("min_score must be in [0, 1), got %f", c.MinScore)
	}

	if c.Trending.Window <= 0 {
		return fmt.Errorf("trending.window must be positive, got %v", c.Trending.Window)
	}
	if c.Trending.SaturationReads < 1 {
		return fmt.Errorf("trending.saturation_reads must be positive, got %d", c.Trending.SaturationReads)
	}
	if c.Trending.MaxAgeDays < 1 {
		return fmt.Errorf("trending.max_age_days must be positive, got %d", c.Trending.MaxAgeDays)
	}
	if c.Trending.MinAgeFactor < 0 || c.Trending.MinAgeFactor > 1 {
		return fmt.Errorf("trending.min_age_factor must be in [0, 1], got %f", c.Trending.MinAgeFactor)
	}

	if c.TimeBudget.DefaultWPM <= 0 {
		return fmt.Errorf("time_budget.default_wpm must be positive, got %f", c.TimeBudget.DefaultWPM)
	}
	if c.TimeBudget.Tolerance < 0 || c.TimeBudget.Tolerance >= 1 {
		return fmt.Errorf("time_budget.tolerance must be in [0, 1), got %f", c.TimeBudget.Tolerance)
	}
	if c.TimeBudget.SpeedSamples < 1 {
		return fmt.Errorf("time_budget.speed_samples must be positive, got %d", c.TimeBudget.SpeedSamples)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.DiscoveryK < 1 || c.Limits.TimeBudgetK < 1 {
		return fmt.Errorf("limits.discovery_k and limits.time_budget_k must be positive")
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when enabled, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when enabled, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	cp := *c
	return &cp
}
