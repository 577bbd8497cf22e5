// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

// ErrNoDataProvider is returned by Recommend before SetDataProvider is called.
var ErrNoDataProvider = errors.New("data provider not set")

// RecommendMode specifies the type of recommendations to generate.
type RecommendMode int

const (
	// ModePersonalized ranks candidates by composite score.
	ModePersonalized RecommendMode = iota
	// ModeDiscovery surfaces documents carrying themes the reader rarely meets.
	ModeDiscovery
	// ModeTimeBudgeted restricts the personalized ranking to documents that fit the available time.
	ModeTimeBudgeted
)

// String returns a human-readable mode name.
func (m RecommendMode) String() string {
	switch m {
	case ModePersonalized:
		return "personalized"
	case ModeDiscovery:
		return "discovery"
	case ModeTimeBudgeted:
		return "time_budgeted"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name. The empty string means personalized.
func ParseMode(s string) (RecommendMode, error) {
	switch s {
	case "", "personalized":
		return ModePersonalized, nil
	case "discovery":
		return ModeDiscovery, nil
	case "time_budgeted", "time":
		return ModeTimeBudgeted, nil
	}
	return ModePersonalized, fmt.Errorf("unknown recommendation mode %q", s)
}

// Request represents a recommendation request.
type Request struct {
	// UserID is the reader to generate recommendations for.
	UserID int64 `json:"user_id"`

	// Mode selects the recommendation variant.
	Mode RecommendMode `json:"mode"`

	// K is the number of recommendations to return. Zero uses the mode default.
	K int `json:"k"`

	// AvailableMinutes is the reading time budget for ModeTimeBudgeted.
	AvailableMinutes float64 `json:"available_minutes,omitempty"`

	// RequestID is an optional request identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// ScoreBreakdown holds the individual signals behind a composite score.
type ScoreBreakdown struct {
	InterestAlignment float64 `json:"interest_alignment"`
	PatternMatch      float64 `json:"pattern_match"`
	ContentSimilarity float64 `json:"content_similarity"`
	Trending          float64 `json:"trending"`
	LevelMatch        float64 `json:"level_match"`
}

// ScoredDocument is a candidate with its composite score.
type ScoredDocument struct {
	Document  models.Document `json:"document"`
	Score     float64         `json:"score"`
	Breakdown ScoreBreakdown  `json:"breakdown"`
}

// Response represents a recommendation response.
type Response struct {
	// Items is the ordered list of recommended documents.
	Items []ScoredDocument `json:"items"`

	// TotalCandidates is the number of candidate documents considered.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`
	UserID    int64  `json:"user_id"`
	Mode      string `json:"mode"`

	// ReadingSpeedWPM and TargetWords are set for time-budgeted requests.
	ReadingSpeedWPM float64 `json:"reading_speed_wpm,omitempty"`
	TargetWords     float64 `json:"target_words,omitempty"`

	LatencyMS int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}

// SnapshotQuery tells the provider which signal windows to read.
type SnapshotQuery struct {
	UserID int64

	// TrendingSince bounds the reads counted per candidate.
	TrendingSince time.Time

	// HighEngagement is the engagement score a document needs to count as a
	// high-engagement document for the reader.
	HighEngagement float64

	// SpeedSamples is the number of most recent analytics speeds to return.
	SpeedSamples int
}

// Snapshot is everything the scorer reads for one reader.
type Snapshot struct {
	Profile models.Profile

	// Pattern is nil when the reader has no stored pattern.
	Pattern *models.Pattern

	// Candidates are completed documents the reader has not read.
	Candidates []models.Document

	// HighEngagementDocs are ids of documents the reader engaged with strongly.
	HighEngagementDocs []int64

	// Similarities are the stored pairs linking a candidate to a high-engagement document.
	Similarities []models.DocumentSimilarity

	// RecentReads maps document id to reads inside the trending window.
	RecentReads map[int64]int

	// ReadThemes lists the themes of every document the reader has read,
	// one entry per (document, theme).
	ReadThemes []string

	// RecentSpeeds are the average speeds of the reader's most recent analytics.
	RecentSpeeds []float64

	// Now is the reference time for age computations.
	Now time.Time
}

// DataProvider fetches the scoring snapshot for a reader.
// This is typically implemented by the storage layer.
type DataProvider interface {
	Snapshot(ctx context.Context, q SnapshotQuery) (*Snapshot, error)
}

// Metrics contains engine counters.
type Metrics struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	ErrorCount   int64 `json:"error_count"`
	CacheSize    int   `json:"cache_size"`
}
