// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"math"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

// Engagement score components.
const (
	progressWeight     = 0.4
	timeWeight         = 0.3
	baselineSeconds    = 300.0
	steadySpeedFactor  = 0.2
	erraticSpeedFactor = 0.1
	minSteadyWPM       = 150.0
	maxSteadyWPM       = 300.0
	completionBonus    = 0.1
	completionBonusMin = 90.0
)

// EngagementScore scores a single session in [0, 1].
func EngagementScore(progress float64, timeSpent int64, wpm float64) float64 {
	score := math.Min(progress/100.0, 1.0) * progressWeight
	score += math.Min(float64(timeSpent)/baselineSeconds, 1.0) * timeWeight

	if wpm >= minSteadyWPM && wpm <= maxSteadyWPM {
		score += steadySpeedFactor
	} else {
		score += erraticSpeedFactor
	}

	if progress > completionBonusMin {
		score += completionBonus
	}
	return clamp01(score)
}

// Tracker folds session updates into Session and Analytics records.
type Tracker struct {
	cfg *Config
}

// NewTracker creates a tracker.
func NewTracker(cfg *Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// ApplySession merges u into prev and returns the upserted session.
// prev is nil on first contact.
func (t *Tracker) ApplySession(prev *models.Session, u models.SessionUpdate, now time.Time) models.Session {
	readAt := u.ReadAt
	if readAt.IsZero() {
		readAt = now
	}

	var s models.Session
	if prev != nil {
		s = *prev
	} else {
		s = models.Session{
			UserID:     u.UserID,
			DocumentID: u.DocumentID,
			CreatedAt:  now,
		}
	}

	s.Position = u.Position
	s.Progress = u.Progress
	s.SpeedWPM = u.SpeedWPM
	s.TimeSpent += u.TimeDelta
	s.LastReadAt = readAt
	s.Device = u.Device
	s.UpdatedAt = now
	return s
}

// Track derives the new analytics record from the previous one and the
// session ApplySession just produced. prev is nil on first contact, in which
// case the record is seeded from the session. delta is the time read since
// the previous update, in seconds.
func (t *Tracker) Track(prev *models.Analytics, s models.Session, delta int64, now time.Time) models.Analytics {
	hour := t.cfg.Hour(s.LastReadAt)
	engagement := EngagementScore(s.Progress, s.TimeSpent, s.SpeedWPM)

	if prev == nil {
		return models.Analytics{
			UserID:          s.UserID,
			DocumentID:      s.DocumentID,
			TotalTimeSpent:  s.TimeSpent,
			CompletionRate:  s.Progress,
			AvgSpeed:        s.SpeedWPM,
			EngagementScore: engagement,
			ReadingHours:    []int{hour},
			SampleCount:     1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	a := prev.Clone()
	a.TotalTimeSpent += delta
	a.CompletionRate = math.Max(a.CompletionRate, s.Progress)
	a.AvgSpeed = t.blendSpeed(a.AvgSpeed, a.SampleCount, s.SpeedWPM)
	a.EngagementScore = engagement
	a.ReadingHours = appendBounded(a.ReadingHours, hour, models.MaxRecentHours)
	a.SampleCount++
	a.UpdatedAt = now
	return a
}

func (t *Tracker) blendSpeed(avg float64, samples int, wpm float64) float64 {
	if t.cfg.SpeedAveraging == SpeedMean && samples > 0 {
		return (avg*float64(samples) + wpm) / float64(samples+1)
	}
	return (avg + wpm) / 2
}
