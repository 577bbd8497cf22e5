// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

const (
	levelCompletion = 85.0
	levelEngagement = 0.8
	levelSpeed      = 250.0
)

// LevelMetrics are the rolling means behind a level decision.
type LevelMetrics struct {
	Samples       int     `json:"samples"`
	AvgCompletion float64 `json:"avg_completion"`
	AvgEngagement float64 `json:"avg_engagement"`
	AvgSpeed      float64 `json:"avg_speed"`
	LevelScore    int     `json:"level_score"`
}

// LevelAdapter promotes and demotes the reading level tier.
type LevelAdapter struct {
	cfg *Config
}

// NewLevelAdapter creates a level adapter.
func NewLevelAdapter(cfg *Config) *LevelAdapter {
	return &LevelAdapter{cfg: cfg}
}

// Metrics computes the level metrics over analytics created inside the level window.
func (l *LevelAdapter) Metrics(analytics []models.Analytics, now time.Time) LevelMetrics {
	since := now.Add(-l.cfg.LevelWindow)
	var completion, engagement, speed []float64
	for i := range analytics {
		a := &analytics[i]
		if a.CreatedAt.Before(since) {
			continue
		}
		completion = append(completion, a.CompletionRate)
		engagement = append(engagement, a.EngagementScore)
		speed = append(speed, a.AvgSpeed)
	}

	m := LevelMetrics{
		Samples:       len(completion),
		AvgCompletion: mean(completion),
		AvgEngagement: mean(engagement),
		AvgSpeed:      mean(speed),
	}
	if m.AvgCompletion > levelCompletion {
		m.LevelScore++
	}
	if m.AvgEngagement > levelEngagement {
		m.LevelScore++
	}
	if m.AvgSpeed > levelSpeed {
		m.LevelScore++
	}
	return m
}

// Adapt applies at most one transition to current. No analytics in the
// window leaves the level unchanged.
func (l *LevelAdapter) Adapt(current models.ReadingLevel, analytics []models.Analytics, now time.Time) models.ReadingLevel {
	m := l.Metrics(analytics, now)
	if m.Samples == 0 {
		return current
	}
	return Transition(current, m.LevelScore)
}

// Transition maps a level and a level score to the next level.
func Transition(current models.ReadingLevel, score int) models.ReadingLevel {
	switch {
	case score >= 2 && current == models.LevelCasual:
		return models.LevelDetailed
	case score >= 3 && current == models.LevelDetailed:
		return models.LevelAcademic
	case score <= 1 && (current == models.LevelDetailed || current == models.LevelAcademic):
		return models.LevelCasual
	}
	return current
}
