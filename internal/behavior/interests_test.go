// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

func TestInterestEngine_Weights(t *testing.T) {
	t.Parallel()

	e := NewInterestEngine(DefaultConfig())
	sig := InterestSignals{
		Analytics: []models.AnalyticsRecord{
			analyticsFor(doc(1, []string{"ai", "robots", "ethics", "law"}, nil), 0.8, 70, testNow),
			// Engaged but not completed enough.
			analyticsFor(doc(2, []string{"gardening"}, nil), 0.9, 50, testNow),
		},
		Bookmarked: []models.Document{doc(3, []string{"robots", "space", "ai"}, nil)},
		Sessions: []models.SessionRecord{
			sessionAt(doc(4, []string{"space", "ai"}, nil), testNow.Add(-2*Day), 10, 200, 60),
			// Outside the 14 day window.
			sessionAt(doc(5, []string{"cooking"}, nil), testNow.Add(-20*Day), 10, 200, 60),
		},
	}

	got := e.Weights(sig, testNow)
	want := []ThemeWeight{
		{Tag: "robots", Weight: 5},
		{Tag: "ai", Weight: 3},
		{Tag: "ethics", Weight: 3},
		{Tag: "space", Weight: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Weights() = %+v, want %+v", got, want)
	}
}

func TestInterestEngine_Evolve(t *testing.T) {
	t.Parallel()

	e := NewInterestEngine(DefaultConfig())
	engaged := func(id int64, themes ...string) models.AnalyticsRecord {
		return analyticsFor(doc(id, themes, nil), 0.9, 100, testNow)
	}

	tests := []struct {
		name    string
		current []string
		sig     InterestSignals
		want    []string
	}{
		{
			name:    "no signals keeps current",
			current: []string{"history"},
			want:    []string{"history"},
		},
		{
			name:    "weak signals are ignored",
			current: []string{"history"},
			sig: InterestSignals{
				Bookmarked: []models.Document{doc(1, []string{"art"}, nil)},
			},
			want: []string{"history"},
		},
		{
			name:    "bookmark plus recent session crosses the threshold",
			current: []string{"history"},
			sig: InterestSignals{
				Bookmarked: []models.Document{doc(1, []string{"art"}, nil)},
				Sessions:   []models.SessionRecord{sessionAt(doc(1, []string{"art"}, nil), testNow, 10, 200, 60)},
			},
			want: []string{"art", "history"},
		},
		{
			name:    "existing interest is not duplicated",
			current: []string{"ai", "history"},
			sig:     InterestSignals{Analytics: []models.AnalyticsRecord{engaged(1, "ai")}},
			want:    []string{"ai", "history"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.Evolve(tt.current, tt.sig, testNow)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Evolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterestEngine_EvolveNeverExceedsEight(t *testing.T) {
	t.Parallel()

	e := NewInterestEngine(DefaultConfig())
	current := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		current = append(current, fmt.Sprintf("old-%d", i))
	}
	var analytics []models.AnalyticsRecord
	for i := 0; i < 12; i++ {
		analytics = append(analytics, analyticsFor(doc(int64(i+1), []string{fmt.Sprintf("new-%d", i)}, nil), 0.9, 100, testNow))
	}
	// new-0 gains extra weight and must rank first.
	analytics = append(analytics, analyticsFor(doc(99, []string{"new-0"}, nil), 0.9, 100, testNow))

	got := e.Evolve(current, InterestSignals{Analytics: analytics}, testNow)

	if len(got) != models.MaxInterests {
		t.Fatalf("len(Evolve()) = %d, want %d", len(got), models.MaxInterests)
	}
	if got[0] != "new-0" {
		t.Errorf("first interest = %q, want new-0", got[0])
	}
	if got[7] != "new-7" {
		t.Errorf("last interest = %q, want new-7", got[7])
	}
}

func TestInterestEngine_UpdateStreak(t *testing.T) {
	t.Parallel()

	e := NewInterestEngine(DefaultConfig())
	day := func(d int) time.Time { return time.Date(2026, 3, d, 20, 0, 0, 0, time.UTC) }

	p := models.DefaultPattern(1)
	steps := []struct {
		at   time.Time
		want int
	}{
		{day(1), 1},
		{day(1).Add(2 * time.Hour), 1},
		{day(2), 2},
		{day(3), 3},
		{day(3).Add(-10 * time.Hour), 3},
		{day(6), 1},
		{day(7), 2},
	}

	for i, step := range steps {
		p = e.UpdateStreak(p, step.at)
		if p.ReadingStreak != step.want {
			t.Fatalf("step %d: streak = %d, want %d", i, p.ReadingStreak, step.want)
		}
		if p.LastReadDate == nil {
			t.Fatalf("step %d: LastReadDate not set", i)
		}
	}
}

func TestInterestEngine_UpdateStreakDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	e := NewInterestEngine(DefaultConfig())
	yesterday := testNow.AddDate(0, 0, -1)
	in := models.DefaultPattern(1)
	in.ReadingStreak = 4
	in.LastReadDate = &yesterday

	out := e.UpdateStreak(in, testNow)
	if out.ReadingStreak != 5 {
		t.Errorf("streak = %d, want 5", out.ReadingStreak)
	}
	if in.ReadingStreak != 4 || !in.LastReadDate.Equal(yesterday) {
		t.Errorf("input pattern mutated: %+v", in)
	}
}

func TestInterestEngine_LearnFromSession(t *testing.T) {
	t.Parallel()

	e := NewInterestEngine(DefaultConfig())
	d := doc(1, []string{"volcanoes", "geology"}, nil)

	full := models.DefaultProfile(1)
	for i := 0; i < 8; i++ {
		full.Interests = append(full.Interests, fmt.Sprintf("t%d", i))
	}

	tests := []struct {
		name        string
		profile     models.Profile
		progress    float64
		timeSpent   int64
		wantLearned string
		wantCount   int
	}{
		{"fast path adopts primary theme", models.DefaultProfile(1), 80, 301, "volcanoes", 1},
		{"progress must exceed 75", models.DefaultProfile(1), 75, 600, "", 0},
		{"time must exceed 300", models.DefaultProfile(1), 90, 300, "", 0},
		{"full profile has no room", full, 90, 600, "", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := models.Session{UserID: 1, DocumentID: 1, Progress: tt.progress, TimeSpent: tt.timeSpent, LastReadAt: testNow}
			profile, pattern, learned := e.LearnFromSession(tt.profile, models.DefaultPattern(1), s, d, testNow)

			if learned != tt.wantLearned {
				t.Errorf("learned = %q, want %q", learned, tt.wantLearned)
			}
			if len(profile.Interests) != tt.wantCount {
				t.Errorf("len(Interests) = %d, want %d", len(profile.Interests), tt.wantCount)
			}
			if pattern.ReadingStreak != 1 {
				t.Errorf("streak = %d, want 1", pattern.ReadingStreak)
			}
			if len(pattern.RecentHours) != 1 || pattern.RecentHours[0] != 15 {
				t.Errorf("RecentHours = %v, want [15]", pattern.RecentHours)
			}
		})
	}
}

func TestInterestEngine_LearnFromSessionKnownTheme(t *testing.T) {
	t.Parallel()

	e := NewInterestEngine(DefaultConfig())
	profile := models.DefaultProfile(1)
	profile.Interests = []string{"volcanoes"}
	s := models.Session{Progress: 100, TimeSpent: 900, LastReadAt: testNow}

	got, _, learned := e.LearnFromSession(profile, models.DefaultPattern(1), s, doc(1, []string{"volcanoes", "geology"}, nil), testNow)
	if learned != "" || len(got.Interests) != 1 {
		t.Errorf("learned %q, interests %v; only the primary theme is considered", learned, got.Interests)
	}
}
