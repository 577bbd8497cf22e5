// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

// Interest signal weights and the number of leading themes each signal reads.
const (
	engagedWeight     = 3
	engagedThemes     = 3
	bookmarkWeight    = 2
	bookmarkThemes    = 2
	recentWeight      = 1
	recentThemes      = 1
	minInterestWeight = 3

	highEngagementScore      = 0.7
	highEngagementCompletion = 60.0

	fastPathProgress  = 75.0
	fastPathTimeSpent = 300
)

// InterestSignals are the behavioral sources for interest evolution.
// Analytics and Sessions may be supersets; Evolve applies its own filters.
type InterestSignals struct {
	Analytics  []models.AnalyticsRecord
	Bookmarked []models.Document
	Sessions   []models.SessionRecord
}

// InterestEngine evolves a profile's interest set from behavior.
type InterestEngine struct {
	cfg *Config
}

// NewInterestEngine creates an interest engine.
func NewInterestEngine(cfg *Config) *InterestEngine {
	return &InterestEngine{cfg: cfg}
}

// IsHighEngagement reports whether an analytics record counts as a strong signal.
func IsHighEngagement(a *models.Analytics) bool {
	return a.EngagementScore >= highEngagementScore && a.CompletionRate >= highEngagementCompletion
}

// Weights accumulates theme weights from the three signal sources.
func (e *InterestEngine) Weights(sig InterestSignals, now time.Time) []ThemeWeight {
	weights := newCounter[string]()

	for i := range sig.Analytics {
		rec := &sig.Analytics[i]
		if !IsHighEngagement(&rec.Analytics) {
			continue
		}
		for _, t := range firstN(rec.Document.Metadata.Themes, engagedThemes) {
			weights.addN(t, engagedWeight)
		}
	}

	for i := range sig.Bookmarked {
		for _, t := range firstN(sig.Bookmarked[i].Metadata.Themes, bookmarkThemes) {
			weights.addN(t, bookmarkWeight)
		}
	}

	since := now.Add(-e.cfg.InterestWindow)
	for i := range sig.Sessions {
		rec := &sig.Sessions[i]
		if rec.Session.LastReadAt.Before(since) {
			continue
		}
		for _, t := range firstN(rec.Document.Metadata.Themes, recentThemes) {
			weights.addN(t, recentWeight)
		}
	}

	out := make([]ThemeWeight, 0, weights.len())
	for _, en := range weights.mostCommon(-1) {
		out = append(out, ThemeWeight{Tag: en.key, Weight: en.count})
	}
	return out
}

// ThemeWeight is a theme with its accumulated interest weight.
type ThemeWeight struct {
	Tag    string
	Weight int
}

// Evolve returns the new interest set. Themes with weight at least 3 from
// the eight heaviest come first in weight order, followed by the current
// interests that are not among them, truncated to eight.
func (e *InterestEngine) Evolve(current []string, sig InterestSignals, now time.Time) []string {
	weighted := e.Weights(sig, now)
	if len(weighted) > models.MaxInterests {
		weighted = weighted[:models.MaxInterests]
	}

	out := make([]string, 0, models.MaxInterests)
	seen := make(map[string]struct{}, models.MaxInterests*2)
	push := func(tag string) {
		if _, ok := seen[tag]; ok || tag == "" {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	for _, w := range weighted {
		if w.Weight >= minInterestWeight {
			push(w.Tag)
		}
	}
	for _, tag := range current {
		push(tag)
	}

	if len(out) > models.MaxInterests {
		out = out[:models.MaxInterests]
	}
	return out
}

// LearnFromSession applies real-time learning for one session: the streak
// and recent hours always update, and a long, nearly-finished session adopts
// the document's primary theme when the profile has room. It returns the
// adopted theme, or "" when none was added.
func (e *InterestEngine) LearnFromSession(profile models.Profile, pattern models.Pattern, s models.Session, doc models.Document, now time.Time) (models.Profile, models.Pattern, string) {
	profile = profile.Clone()
	pattern = e.UpdateStreak(pattern, now)
	pattern.RecentHours = appendBounded(pattern.RecentHours, e.cfg.Hour(s.LastReadAt), models.MaxRecentHours)

	if s.Progress <= fastPathProgress || s.TimeSpent <= fastPathTimeSpent {
		return profile, pattern, ""
	}
	for _, theme := range firstN(doc.Metadata.Themes, 1) {
		if !profile.HasInterest(theme) && len(profile.Interests) < models.MaxInterests {
			profile.Interests = append(profile.Interests, theme)
			return profile, pattern, theme
		}
	}
	return profile, pattern, ""
}

// UpdateStreak advances the reading streak for activity at now.
// Same-day activity leaves it unchanged, next-day activity increments it
// and any longer gap resets it to 1.
func (e *InterestEngine) UpdateStreak(pattern models.Pattern, now time.Time) models.Pattern {
	pattern = pattern.Clone()
	today := e.cfg.Date(now)

	if pattern.LastReadDate != nil {
		last := e.cfg.Date(*pattern.LastReadDate)
		if last.Equal(today) {
			return pattern
		}
		if last.AddDate(0, 0, 1).Equal(today) {
			pattern.ReadingStreak++
			pattern.LastReadDate = &today
			return pattern
		}
	}

	pattern.ReadingStreak = 1
	pattern.LastReadDate = &today
	return pattern
}
