// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"fmt"
	"time"
)

// Day is the length of one calendar day used for window arithmetic.
const Day = 24 * time.Hour

// SpeedAveraging selects how Analytics.AvgSpeed absorbs a new sample.
type SpeedAveraging string

const (
	// SpeedBlend averages the stored value with the new sample: (avg + new) / 2.
	SpeedBlend SpeedAveraging = "blend"

	// SpeedMean keeps a true running mean weighted by Analytics.SampleCount.
	SpeedMean SpeedAveraging = "mean"
)

// Config contains the tunables of the behavioral core.
type Config struct {
	// PatternWindow is the trailing session window for pattern analysis.
	// Default: 90 days.
	PatternWindow time.Duration `json:"pattern_window"`

	// InterestWindow is the trailing session window that contributes
	// weight 1 signals to interest evolution.
	// Default: 14 days.
	InterestWindow time.Duration `json:"interest_window"`

	// LevelWindow is the trailing analytics window for reading level adaptation.
	// Default: 30 days.
	LevelWindow time.Duration `json:"level_window"`

	// ConsistencyWindow is the trailing session window for reading consistency.
	// Default: 30 days.
	ConsistencyWindow time.Duration `json:"consistency_window"`

	// EngagementTrendWindow is the trailing analytics window for the engagement trend.
	// Default: 60 days.
	EngagementTrendWindow time.Duration `json:"engagement_trend_window"`

	// SpeedAveraging selects the reading speed update rule.
	// Default: blend.
	SpeedAveraging SpeedAveraging `json:"speed_averaging"`

	// Location is the time zone used for calendar dates and hours.
	// Default: UTC.
	Location *time.Location `json:"-"`
}

// DefaultConfig returns the default core configuration.
func DefaultConfig() *Config {
	return &Config{
		PatternWindow:         90 * Day,
		InterestWindow:        14 * Day,
		LevelWindow:           30 * Day,
		ConsistencyWindow:     30 * Day,
		EngagementTrendWindow: 60 * Day,
		SpeedAveraging:        SpeedBlend,
		Location:              time.UTC,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	windows := []struct {
		name string
		d    time.Duration
	}{
		{"pattern_window", c.PatternWindow},
		{"interest_window", c.InterestWindow},
		{"level_window", c.LevelWindow},
		{"consistency_window", c.ConsistencyWindow},
		{"engagement_trend_window", c.EngagementTrendWindow},
	}
	for _, w := range windows {
		if w.d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", w.name, w.d)
		}
	}
	if c.SpeedAveraging != SpeedBlend && c.SpeedAveraging != SpeedMean {
		return fmt.Errorf("speed_averaging must be %q or %q, got %q", SpeedBlend, SpeedMean, c.SpeedAveraging)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Date truncates t to midnight of its calendar date in the configured location.
func (c *Config) Date(t time.Time) time.Time {
	t = t.In(c.location())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.location())
}

// Hour returns the hour of day of t in the configured location.
func (c *Config) Hour(t time.Time) int {
	return t.In(c.location()).Hour()
}
