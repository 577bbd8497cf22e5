// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import (
	"strings"
	"time"
)

// MaxInterests bounds the size of Profile.Interests.
const MaxInterests = 8

// MaxRecentHours bounds Pattern.RecentHours and Analytics.ReadingHours.
const MaxRecentHours = 20

// ReadingLevel is the difficulty tier a reader is matched against.
type ReadingLevel string

const (
	LevelCasual   ReadingLevel = "casual"
	LevelDetailed ReadingLevel = "detailed"
	LevelAcademic ReadingLevel = "academic"
)

// Valid reports whether l is one of the known tiers.
func (l ReadingLevel) Valid() bool {
	switch l {
	case LevelCasual, LevelDetailed, LevelAcademic:
		return true
	}
	return false
}

// ReadingMode is how a document is presented to the reader.
type ReadingMode string

const (
	ModeDirect ReadingMode = "direct"
	ModeStory  ReadingMode = "story"
)

// Valid reports whether m is a known reading mode.
func (m ReadingMode) Valid() bool {
	return m == ModeDirect || m == ModeStory
}

// Profile is the versioned reader profile.
//
// Interests is an ordered set of at most MaxInterests tags. Trimming always
// drops from the end.
type Profile struct {
	UserID        int64        `json:"user_id"`
	Interests     []string     `json:"interests"`
	PreferredMode ReadingMode  `json:"preferred_mode"`
	ReadingLevel  ReadingLevel `json:"reading_level"`
	Version       uint64       `json:"version"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// DefaultProfile returns the profile used for a reader that has none stored.
func DefaultProfile(userID int64) Profile {
	return Profile{
		UserID:        userID,
		Interests:     []string{},
		PreferredMode: ModeDirect,
		ReadingLevel:  LevelCasual,
	}
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	c := p
	c.Interests = append([]string{}, p.Interests...)
	return c
}

// HasInterest reports whether tag is in the interest set.
func (p Profile) HasInterest(tag string) bool {
	for _, t := range p.Interests {
		if t == tag {
			return true
		}
	}
	return false
}

// ProfileUpdate is an explicit profile edit, typically captured at registration.
type ProfileUpdate struct {
	Interests     []string    `json:"interests" validate:"dive,required,max=64"`
	PreferredMode ReadingMode `json:"preferred_mode" validate:"omitempty,oneof=direct story"`
}

// Apply returns p with the update applied. Interests are trimmed of
// whitespace, deduplicated in order and cut to MaxInterests. An empty
// PreferredMode keeps the current mode.
func (u ProfileUpdate) Apply(p Profile) Profile {
	out := p.Clone()
	out.Interests = NormalizeInterests(u.Interests)
	if u.PreferredMode != "" {
		out.PreferredMode = u.PreferredMode
	}
	return out
}

// NormalizeInterests trims, deduplicates and bounds a list of interest tags.
func NormalizeInterests(tags []string) []string {
	out := make([]string, 0, MaxInterests)
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == MaxInterests {
			break
		}
	}
	return out
}

// HourCount pairs an hour of day (0-23) with the number of sessions seen in it.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Pattern is the versioned summary of when and what a reader reads.
type Pattern struct {
	UserID int64 `json:"user_id"`

	// PreferredTimes holds the three most frequent hours in the pattern window.
	PreferredTimes []HourCount `json:"preferred_times"`

	// RecentHours holds the hour of each recorded session, newest last.
	RecentHours []int `json:"recent_hours"`

	AvgSessionMinutes     int        `json:"avg_session_duration"`
	PreferredContentTypes []string   `json:"preferred_content_types"`
	ReadingStreak         int        `json:"reading_streak"`
	LastReadDate          *time.Time `json:"last_read_date,omitempty"`

	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPattern returns the pattern used for a reader that has none stored.
func DefaultPattern(userID int64) Pattern {
	return Pattern{
		UserID:                userID,
		PreferredTimes:        []HourCount{},
		RecentHours:           []int{},
		PreferredContentTypes: []string{},
	}
}

// Clone returns a deep copy of the pattern.
func (p Pattern) Clone() Pattern {
	c := p
	c.PreferredTimes = append([]HourCount{}, p.PreferredTimes...)
	c.RecentHours = append([]int{}, p.RecentHours...)
	c.PreferredContentTypes = append([]string{}, p.PreferredContentTypes...)
	if p.LastReadDate != nil {
		d := *p.LastReadDate
		c.LastReadDate = &d
	}
	return c
}

// DeviceInfo is free-form client metadata attached to a session.
type DeviceInfo struct {
	Type      string `json:"type,omitempty"`
	Platform  string `json:"platform,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Session is the latest reading position for one (user, document) pair.
// TimeSpent is cumulative seconds across all updates.
type Session struct {
	UserID     int64      `json:"user_id"`
	DocumentID int64      `json:"document_id"`
	Position   int        `json:"position"`
	Progress   float64    `json:"progress"`
	SpeedWPM   float64    `json:"speed_wpm"`
	TimeSpent  int64      `json:"time_spent"`
	LastReadAt time.Time  `json:"last_read_at"`
	Device     DeviceInfo `json:"device"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SessionUpdate is one progress report from a reader client.
// TimeDelta is the number of seconds read since the previous report.
//
// ReadAt is optional; the zero value means "now" at the time the update is applied.
type SessionUpdate struct {
	UserID     int64      `json:"user_id" validate:"gt=0"`
	DocumentID int64      `json:"document_id" validate:"gt=0"`
	Position   int        `json:"position" validate:"gte=0"`
	Progress   float64    `json:"progress" validate:"gte=0,lte=100"`
	TimeDelta  int64      `json:"time_delta" validate:"gte=0"`
	SpeedWPM   float64    `json:"speed_wpm" validate:"gt=0"`
	ReadAt     time.Time  `json:"read_at,omitempty"`
	Device     DeviceInfo `json:"device"`
}

// Analytics is the cumulative engagement record for one (user, document) pair.
//
// CompletionRate is the highest progress ever observed and never decreases.
// ReadingHours keeps the hour of the most recent MaxRecentHours updates.
type Analytics struct {
	UserID          int64     `json:"user_id"`
	DocumentID      int64     `json:"document_id"`
	TotalTimeSpent  int64     `json:"total_time_spent"`
	CompletionRate  float64   `json:"completion_rate"`
	AvgSpeed        float64   `json:"avg_reading_speed"`
	EngagementScore float64   `json:"engagement_score"`
	ReadingHours    []int     `json:"preferred_reading_times"`
	SampleCount     int       `json:"sample_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the analytics record.
func (a Analytics) Clone() Analytics {
	c := a
	c.ReadingHours = append([]int{}, a.ReadingHours...)
	return c
}
