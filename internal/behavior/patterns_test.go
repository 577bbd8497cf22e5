// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

func TestPatternAnalyzer_EmptyWindowIsNeutral(t *testing.T) {
	t.Parallel()

	p := NewPatternAnalyzer(DefaultConfig())
	r := p.Analyze(1, nil, []models.AnalyticsRecord{analyticsFor(doc(1, []string{"a"}, nil), 0.9, 100, testNow)}, testNow)

	if r.Frequency.Frequency != models.NoData {
		t.Errorf("Frequency = %q, want %q", r.Frequency.Frequency, models.NoData)
	}
	if r.CompletionTrend.Trend != models.InsufficientData {
		t.Errorf("CompletionTrend = %q, want %q", r.CompletionTrend.Trend, models.InsufficientData)
	}
	if r.ReadingSpeed.Profile != models.NoData || r.ReadingSpeed.SpeedTrend != models.InsufficientData {
		t.Errorf("ReadingSpeed = %+v", r.ReadingSpeed)
	}
	if r.ContentPreferences.PreferredMode != nil || len(r.ContentPreferences.TopThemes) != 0 {
		t.Errorf("ContentPreferences = %+v", r.ContentPreferences)
	}
	if r.ReadingTimes.ConsistencyScore != 0 || len(r.ReadingTimes.PeakHours) != 0 {
		t.Errorf("ReadingTimes = %+v", r.ReadingTimes)
	}
	if r.Engagement.OverallEngagement != 0 || r.Engagement.HighEngagementThemes == nil {
		t.Errorf("Engagement = %+v", r.Engagement)
	}
	if r.WindowDays != 90 {
		t.Errorf("WindowDays = %d, want 90", r.WindowDays)
	}
}

func TestPatternAnalyzer_Frequency(t *testing.T) {
	t.Parallel()

	d := doc(1, nil, nil)
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sessions []models.SessionRecord
		want     models.FrequencyReport
	}{
		{
			name: "regular reader",
			sessions: []models.SessionRecord{
				sessionAt(d, day1, 10, 200, 60),
				sessionAt(d, day1.Add(time.Hour), 10, 200, 60),
				sessionAt(d, day1.Add(2*time.Hour), 10, 200, 60),
				sessionAt(d, day2, 10, 200, 60),
			},
			want: models.FrequencyReport{Frequency: models.FrequencyRegular, AvgDailySessions: 2, MaxDailySessions: 3, ActiveDays: 2},
		},
		{
			name: "heavy reader",
			sessions: []models.SessionRecord{
				sessionAt(d, day1, 10, 200, 60),
				sessionAt(d, day1.Add(time.Hour), 10, 200, 60),
				sessionAt(d, day1.Add(2*time.Hour), 10, 200, 60),
			},
			want: models.FrequencyReport{Frequency: models.FrequencyHeavy, AvgDailySessions: 3, MaxDailySessions: 3, ActiveDays: 1},
		},
	}

	p := NewPatternAnalyzer(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.Frequency(tt.sessions); got != tt.want {
				t.Errorf("Frequency() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPatternAnalyzer_FrequencyDatesUseLocation(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Location = time.FixedZone("UTC-5", -5*60*60)
	p := NewPatternAnalyzer(cfg)
	d := doc(1, nil, nil)

	// 02:00 UTC and 22:00 UTC on the same UTC date fall on two local dates.
	got := p.Frequency([]models.SessionRecord{
		sessionAt(d, time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC), 10, 200, 60),
		sessionAt(d, time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC), 10, 200, 60),
	})
	if got.ActiveDays != 2 {
		t.Errorf("ActiveDays = %d, want 2", got.ActiveDays)
	}
}

func TestContentPreferences(t *testing.T) {
	t.Parallel()

	story := doc(2, []string{"space", "history"}, []string{"science"})
	story.ReadingMode = models.ModeStory
	sessions := []models.SessionRecord{
		sessionAt(doc(1, []string{"space", "physics"}, []string{"science", "education"}), testNow, 10, 200, 60),
		sessionAt(story, testNow, 10, 200, 60),
		sessionAt(doc(3, []string{"space"}, nil), testNow, 10, 200, 60),
	}

	got := ContentPreferences(sessions)

	if len(got.TopThemes) != 3 || got.TopThemes[0] != (models.TagCount{Tag: "space", Count: 3}) {
		t.Errorf("TopThemes = %+v", got.TopThemes)
	}
	// physics and history tie at 1 and keep first-seen order.
	if got.TopThemes[1].Tag != "physics" || got.TopThemes[2].Tag != "history" {
		t.Errorf("tie order = %+v", got.TopThemes)
	}
	if got.TopCategories[0] != (models.TagCount{Tag: "science", Count: 2}) {
		t.Errorf("TopCategories = %+v", got.TopCategories)
	}
	if got.PreferredMode == nil || got.PreferredMode.Mode != models.ModeDirect || got.PreferredMode.Count != 2 {
		t.Errorf("PreferredMode = %+v", got.PreferredMode)
	}
	if !approxEqual(got.ContentDiversity, 3.0/5.0) {
		t.Errorf("ContentDiversity = %v, want 0.6", got.ContentDiversity)
	}
}

func TestContentPreferences_NoThemes(t *testing.T) {
	t.Parallel()

	got := ContentPreferences([]models.SessionRecord{sessionAt(doc(1, nil, nil), testNow, 10, 200, 60)})
	if got.ContentDiversity != 0 {
		t.Errorf("ContentDiversity = %v, want 0", got.ContentDiversity)
	}
}

func TestTimeConsistency(t *testing.T) {
	t.Parallel()

	uniform := make([]int, 24)
	for h := range uniform {
		uniform[h] = h
	}

	tests := []struct {
		name  string
		hours []int
		want  float64
	}{
		{"single repeated hour", []int{21, 21, 21, 21}, 1.0},
		{"uniform spread over the day", uniform, 0},
		{"too few samples", []int{8, 8}, 0},
		{"two hours evenly split", []int{8, 8, 20, 20}, 0.78},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TimeConsistency(tt.hours); !approxEqual(got, tt.want) {
				t.Errorf("TimeConsistency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatternAnalyzer_ReadingTimes(t *testing.T) {
	t.Parallel()

	d := doc(1, nil, nil)
	sessions := []models.SessionRecord{
		sessionAt(d, time.Date(2026, 3, 12, 7, 0, 0, 0, time.UTC), 10, 200, 60),
		sessionAt(d, time.Date(2026, 3, 12, 13, 0, 0, 0, time.UTC), 10, 200, 60),
		sessionAt(d, time.Date(2026, 3, 12, 21, 0, 0, 0, time.UTC), 10, 200, 60),
		sessionAt(d, time.Date(2026, 3, 13, 21, 0, 0, 0, time.UTC), 10, 200, 60),
	}

	got := NewPatternAnalyzer(DefaultConfig()).ReadingTimes(sessions)

	want := models.TimeDistribution{Morning: 0.25, Afternoon: 0.25, Evening: 0.5, Night: 0}
	if got.TimeDistribution != want {
		t.Errorf("TimeDistribution = %+v, want %+v", got.TimeDistribution, want)
	}
	if got.PeakHours[0] != (models.HourCount{Hour: 21, Count: 2}) {
		t.Errorf("PeakHours = %+v", got.PeakHours)
	}
	if got.PeakDays[0] != (models.DayCount{Day: "Thursday", Count: 3}) {
		t.Errorf("PeakDays = %+v", got.PeakDays)
	}
}

func TestEngagementByContent(t *testing.T) {
	t.Parallel()

	analytics := []models.AnalyticsRecord{
		analyticsFor(doc(1, []string{"ai", "ethics"}, []string{"tech"}), 0.9, 100, testNow),
		analyticsFor(doc(2, []string{"ai"}, []string{"tech"}), 0.5, 50, testNow),
		analyticsFor(doc(3, []string{"cooking", "ethics"}, nil), 0.4, 20, testNow),
	}

	got := EngagementByContent(analytics)

	if len(got.HighEngagementThemes) != 2 {
		t.Fatalf("HighEngagementThemes = %+v, want ai and ethics", got.HighEngagementThemes)
	}
	if got.HighEngagementThemes[0].Tag != "ai" || !approxEqual(got.HighEngagementThemes[0].Score, 0.7) {
		t.Errorf("top theme = %+v, want ai at 0.7", got.HighEngagementThemes[0])
	}
	if got.HighEngagementThemes[1].Tag != "ethics" || !approxEqual(got.HighEngagementThemes[1].Score, 0.65) {
		t.Errorf("second theme = %+v, want ethics at 0.65", got.HighEngagementThemes[1])
	}
	if len(got.HighEngagementCategories) != 1 || got.HighEngagementCategories[0].Tag != "tech" {
		t.Errorf("HighEngagementCategories = %+v", got.HighEngagementCategories)
	}
	if !approxEqual(got.OverallEngagement, 0.6) {
		t.Errorf("OverallEngagement = %v, want 0.6", got.OverallEngagement)
	}
}

func TestCompletionTrend(t *testing.T) {
	t.Parallel()

	build := func(progress ...float64) []models.SessionRecord {
		out := make([]models.SessionRecord, len(progress))
		for i, p := range progress {
			out[i] = sessionAt(doc(int64(i+1), nil, nil), testNow.Add(time.Duration(i)*time.Hour), p, 200, 60)
		}
		return out
	}

	tests := []struct {
		name       string
		sessions   []models.SessionRecord
		wantTrend  string
		wantChange float64
	}{
		{"insufficient under five", build(10, 90, 10, 90), models.InsufficientData, 0},
		{"improving", build(10, 20, 30, 50, 60, 70), models.TrendImproving, 40},
		{"declining", build(90, 80, 70, 20, 20, 20), models.TrendDeclining, -60},
		// Five sessions split 2/3: early 50, recent 55.
		{"stable within ten points", build(40, 60, 50, 55, 60), models.TrendStable, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CompletionTrend(tt.sessions)
			if got.Trend != tt.wantTrend {
				t.Errorf("Trend = %q, want %q", got.Trend, tt.wantTrend)
			}
			if !approxEqual(got.CompletionRateChange, tt.wantChange) {
				t.Errorf("CompletionRateChange = %v, want %v", got.CompletionRateChange, tt.wantChange)
			}
		})
	}
}

func TestSpeedProfile(t *testing.T) {
	t.Parallel()

	var sessions []models.SessionRecord
	for i, wpm := range []float64{200, 210, 220, 230, 0} {
		sessions = append(sessions, sessionAt(doc(int64(i+1), nil, nil), testNow.Add(time.Duration(i)*time.Hour), 10, wpm, 60))
	}

	got := SpeedProfile(sessions)

	if got.Profile != models.SpeedAverage {
		t.Errorf("Profile = %q, want %q", got.Profile, models.SpeedAverage)
	}
	if got.AvgWPM != 215 || got.MinWPM != 200 || got.MaxWPM != 230 {
		t.Errorf("speed stats = %+v", got)
	}
	// population std dev of 200..230 step 10 is sqrt(125).
	if !approxEqual(got.ConsistencyScore, 0.95) {
		t.Errorf("ConsistencyScore = %v, want 0.95", got.ConsistencyScore)
	}
	if got.SpeedTrend != models.TrendImproving {
		t.Errorf("SpeedTrend = %q, want improving", got.SpeedTrend)
	}
}

func TestSpeedTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		speeds []float64
		want   string
	}{
		{"three samples", []float64{100, 200, 300}, models.InsufficientData},
		{"improving", []float64{100, 110, 120, 130}, models.TrendImproving},
		{"declining", []float64{300, 280, 260, 240}, models.TrendDeclining},
		{"stable at slope five", []float64{100, 105, 110, 115}, models.TrendStable},
		{"flat", []float64{250, 250, 250, 250}, models.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SpeedTrend(tt.speeds); got != tt.want {
				t.Errorf("SpeedTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpeedProfile_Categories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wpm  float64
		want string
	}{
		{350, models.SpeedFast},
		{300, models.SpeedFast},
		{200, models.SpeedAverage},
		{199, models.SpeedSlow},
	}

	for _, tt := range tests {
		got := SpeedProfile([]models.SessionRecord{sessionAt(doc(1, nil, nil), testNow, 10, tt.wpm, 60)})
		if got.Profile != tt.want {
			t.Errorf("SpeedProfile(%v).Profile = %q, want %q", tt.wpm, got.Profile, tt.want)
		}
	}
}

func TestPatternAnalyzer_SortsSessionsChronologically(t *testing.T) {
	t.Parallel()

	// Supplied newest first; trend must still read oldest to newest.
	var sessions []models.SessionRecord
	for i, wpm := range []float64{260, 240, 220, 200} {
		sessions = append(sessions, sessionAt(doc(int64(i+1), nil, nil), testNow.Add(-time.Duration(i)*time.Hour), 10, wpm, 60))
	}

	r := NewPatternAnalyzer(DefaultConfig()).Analyze(1, sessions, nil, testNow)
	if r.ReadingSpeed.SpeedTrend != models.TrendImproving {
		t.Errorf("SpeedTrend = %q, want improving", r.ReadingSpeed.SpeedTrend)
	}
	if r.SessionCount != 4 {
		t.Errorf("SessionCount = %d, want 4", r.SessionCount)
	}
}
