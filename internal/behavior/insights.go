// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

const (
	preferredTimes         = 3
	preferredContentTypes  = 5
	insightContentTypes    = 3
	minConsistencySessions = 5
	consistencyDays        = 30.0
	minTrendAnalytics      = 4
	engagementTrendDelta   = 0.1
	completedThreshold     = 90.0
	dashboardWindow        = 7 * Day
)

// Summarize recomputes the stored pattern summary from the pattern window.
// It returns false and prev unchanged when the window has no sessions.
func Summarize(prev models.Pattern, window []models.SessionRecord, cfg *Config, now time.Time) (models.Pattern, bool) {
	if len(window) == 0 {
		return prev, false
	}

	hours := newCounter[int]()
	types := newCounter[string]()
	seconds := make([]float64, 0, len(window))
	for i := range window {
		rec := &window[i]
		hours.add(cfg.Hour(rec.Session.LastReadAt))
		seconds = append(seconds, float64(rec.Session.TimeSpent))
		for _, c := range rec.Document.Metadata.Categories {
			types.add(c)
		}
		for _, t := range rec.Document.Metadata.Themes {
			types.add(t)
		}
	}

	next := prev.Clone()
	next.PreferredTimes = make([]models.HourCount, 0, preferredTimes)
	for _, e := range hours.mostCommon(preferredTimes) {
		next.PreferredTimes = append(next.PreferredTimes, models.HourCount{Hour: e.key, Count: e.count})
	}
	next.AvgSessionMinutes = int(mean(seconds) / 60)
	next.PreferredContentTypes = make([]string, 0, preferredContentTypes)
	for _, e := range types.mostCommon(preferredContentTypes) {
		next.PreferredContentTypes = append(next.PreferredContentTypes, e.key)
	}
	next.UpdatedAt = now
	return next, true
}

// ReadingConsistency is the share of the trailing consistency window with
// reading activity, capped at 1. Fewer than five sessions score 0.
func ReadingConsistency(sessions []models.Session, cfg *Config, now time.Time) float64 {
	since := now.Add(-cfg.ConsistencyWindow)
	days := make(map[time.Time]struct{})
	n := 0
	for i := range sessions {
		if sessions[i].LastReadAt.Before(since) {
			continue
		}
		n++
		days[cfg.Date(sessions[i].LastReadAt)] = struct{}{}
	}
	if n < minConsistencySessions {
		return 0
	}
	return math.Min(float64(len(days))/consistencyDays, 1)
}

// EngagementTrend compares mean engagement of the early and recent halves
// of analytics created inside the trend window.
func EngagementTrend(analytics []models.Analytics, cfg *Config, now time.Time) string {
	since := now.Add(-cfg.EngagementTrendWindow)
	window := make([]models.Analytics, 0, len(analytics))
	for i := range analytics {
		if !analytics[i].CreatedAt.Before(since) {
			window = append(window, analytics[i])
		}
	}
	if len(window) < minTrendAnalytics {
		return models.InsufficientData
	}
	sort.SliceStable(window, func(i, j int) bool { return window[i].CreatedAt.Before(window[j].CreatedAt) })

	mid := len(window) / 2
	engagement := func(xs []models.Analytics) float64 {
		vals := make([]float64, len(xs))
		for i := range xs {
			vals[i] = xs[i].EngagementScore
		}
		return mean(vals)
	}
	return classifyTrend(engagement(window[mid:]), engagement(window[:mid]), engagementTrendDelta)
}

// Insights assembles the learning cycle report from the committed state.
func Insights(profile models.Profile, pattern models.Pattern, sessions []models.Session, analytics []models.Analytics, cfg *Config, now time.Time) models.BehavioralInsights {
	times := make(map[int]int, len(pattern.PreferredTimes))
	for _, hc := range pattern.PreferredTimes {
		times[hc.Hour] = hc.Count
	}
	return models.BehavioralInsights{
		UserID:             profile.UserID,
		ReadingStreak:      pattern.ReadingStreak,
		PreferredTimes:     times,
		AvgSessionMinutes:  pattern.AvgSessionMinutes,
		TopContentTypes:    append([]string{}, firstN(pattern.PreferredContentTypes, insightContentTypes)...),
		ReadingConsistency: ReadingConsistency(sessions, cfg, now),
		EngagementTrend:    EngagementTrend(analytics, cfg, now),
		ReadingLevel:       profile.ReadingLevel,
		Interests:          append([]string{}, profile.Interests...),
		GeneratedAt:        now,
	}
}

// Dashboard builds the reader summary. ownedDocuments is the number of
// documents the reader has uploaded.
func Dashboard(userID int64, ownedDocuments int, sessions []models.Session, analytics []models.Analytics, pattern models.Pattern, now time.Time) models.DashboardStats {
	since := now.Add(-dashboardWindow)
	stats := models.DashboardStats{
		UserID:         userID,
		TotalDocuments: ownedDocuments,
		ReadingStreak:  pattern.ReadingStreak,
		PreferredTimes: append([]models.HourCount{}, pattern.PreferredTimes...),
	}
	if len(stats.PreferredTimes) > preferredTimes {
		stats.PreferredTimes = stats.PreferredTimes[:preferredTimes]
	}

	var weekSeconds int64
	for i := range analytics {
		a := &analytics[i]
		if a.CompletionRate >= completedThreshold {
			stats.CompletedDocuments++
		}
		if !a.UpdatedAt.Before(since) {
			weekSeconds += a.TotalTimeSpent
		}
	}
	stats.WeeklyMinutes = weekSeconds / 60

	for i := range sessions {
		if !sessions[i].LastReadAt.Before(since) {
			stats.RecentSessions++
		}
	}

	if ownedDocuments > 0 {
		stats.CompletionRate = float64(stats.CompletedDocuments) / float64(ownedDocuments) * 100
	}
	return stats
}
