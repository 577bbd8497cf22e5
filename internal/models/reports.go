// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import (
	"time"
)

// Classification values shared by the pattern and insight reports.
const (
	NoData           = "no_data"
	InsufficientData = "insufficient_data"
	TrendImproving   = "improving"
	TrendDeclining   = "declining"
	TrendStable      = "stable"
)

// Reading frequency categories.
const (
	FrequencyHeavy    = "heavy"
	FrequencyRegular  = "regular"
	FrequencyModerate = "moderate"
	FrequencyLight    = "light"
)

// Reading speed categories.
const (
	SpeedFast    = "fast"
	SpeedAverage = "average"
	SpeedSlow    = "slow"
)

// AnalyticsSnapshot is the result of recording one session update.
type AnalyticsSnapshot struct {
	Session   Session   `json:"session"`
	Analytics Analytics `json:"analytics"`

	// FirstContact is true when this update created the analytics record.
	FirstContact bool `json:"first_contact"`

	ReadingStreak int      `json:"reading_streak"`
	Interests     []string `json:"interests"`

	// LearnedInterest is the theme adopted by real-time learning, if any.
	LearnedInterest string `json:"learned_interest,omitempty"`
}

// TagCount is a theme or category with its number of occurrences.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagScore is a theme or category with its mean engagement score.
type TagScore struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"`
}

// ModeCount is a reading mode with its number of sessions.
type ModeCount struct {
	Mode  ReadingMode `json:"mode"`
	Count int         `json:"count"`
}

// DayCount is a weekday with its number of sessions.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// FrequencyReport classifies how often a reader reads.
type FrequencyReport struct {
	Frequency        string  `json:"frequency"`
	AvgDailySessions float64 `json:"avg_daily_sessions"`
	MaxDailySessions int     `json:"max_daily_sessions"`
	ActiveDays       int     `json:"active_days"`
}

// ContentPreferenceReport tallies the metadata of documents read in the window.
// PreferredMode is nil when there were no sessions.
type ContentPreferenceReport struct {
	TopThemes        []TagCount `json:"top_themes"`
	TopCategories    []TagCount `json:"top_categories"`
	PreferredMode    *ModeCount `json:"preferred_mode"`
	ContentDiversity float64    `json:"content_diversity"`
}

// TimeDistribution is the fraction of sessions started in each part of the day.
type TimeDistribution struct {
	Morning   float64 `json:"morning"`
	Afternoon float64 `json:"afternoon"`
	Evening   float64 `json:"evening"`
	Night     float64 `json:"night"`
}

// ReadingTimeReport describes when a reader reads.
type ReadingTimeReport struct {
	PeakHours        []HourCount      `json:"peak_hours"`
	PeakDays         []DayCount       `json:"peak_days"`
	TimeDistribution TimeDistribution `json:"time_distribution"`
	ConsistencyScore float64          `json:"consistency_score"`
}

// EngagementReport ranks themes and categories by mean engagement.
type EngagementReport struct {
	HighEngagementThemes     []TagScore `json:"high_engagement_themes"`
	HighEngagementCategories []TagScore `json:"high_engagement_categories"`
	OverallEngagement        float64    `json:"overall_engagement"`
}

// CompletionTrendReport compares completion between the early and recent halves of the window.
type CompletionTrendReport struct {
	Trend                string  `json:"trend"`
	EarlyAvgCompletion   float64 `json:"early_avg_completion"`
	RecentAvgCompletion  float64 `json:"recent_avg_completion"`
	CompletionRateChange float64 `json:"completion_rate_change"`
}

// SpeedReport profiles reading speed across the window.
type SpeedReport struct {
	Profile          string  `json:"profile"`
	AvgWPM           float64 `json:"avg_wpm"`
	MinWPM           float64 `json:"min_wpm"`
	MaxWPM           float64 `json:"max_wpm"`
	ConsistencyScore float64 `json:"consistency_score"`
	SpeedTrend       string  `json:"speed_trend"`
}

// PatternReport is the full behavioral analysis for one reader.
type PatternReport struct {
	UserID             int64                   `json:"user_id"`
	WindowDays         int                     `json:"window_days"`
	SessionCount       int                     `json:"session_count"`
	Frequency          FrequencyReport         `json:"reading_frequency"`
	ContentPreferences ContentPreferenceReport `json:"content_preferences"`
	ReadingTimes       ReadingTimeReport       `json:"reading_times"`
	Engagement         EngagementReport        `json:"engagement_patterns"`
	CompletionTrend    CompletionTrendReport   `json:"completion_trends"`
	ReadingSpeed       SpeedReport             `json:"reading_speed_profile"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// BehavioralInsights is the result of a full learning cycle.
type BehavioralInsights struct {
	UserID             int64        `json:"user_id"`
	ReadingStreak      int          `json:"reading_streak"`
	PreferredTimes     map[int]int  `json:"preferred_times"`
	AvgSessionMinutes  int          `json:"avg_session_minutes"`
	TopContentTypes    []string     `json:"top_content_types"`
	ReadingConsistency float64      `json:"reading_consistency"`
	EngagementTrend    string       `json:"engagement_trend"`
	ReadingLevel       ReadingLevel `json:"reading_level"`
	Interests          []string     `json:"interests"`
	GeneratedAt        time.Time    `json:"generated_at"`
}

// DashboardStats is the per-reader summary shown on the dashboard.
type DashboardStats struct {
	UserID             int64       `json:"user_id"`
	TotalDocuments     int         `json:"total_documents"`
	CompletedDocuments int         `json:"completed_documents"`
	CompletionRate     float64     `json:"completion_rate"`
	RecentSessions     int         `json:"recent_sessions"`
	ReadingStreak      int         `json:"reading_streak"`
	WeeklyMinutes      int64       `json:"weekly_reading_minutes"`
	PreferredTimes     []HourCount `json:"preferred_times"`
}

// BatchResult summarizes one batch learning pass.
type BatchResult struct {
	Users      int       `json:"users"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}
