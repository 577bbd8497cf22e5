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
	topThemes             = 5
	topCategories         = 3
	topHours              = 3
	topDays               = 3
	minConsistencySamples = 3
	minEngagementSamples  = 2
	minCompletionSessions = 5
	completionTrendDelta  = 10.0
	minSpeedSamples       = 4
	speedTrendSlope       = 5.0
)

// PatternAnalyzer derives the six-part PatternReport from a session window.
type PatternAnalyzer struct {
	cfg *Config
}

// NewPatternAnalyzer creates a pattern analyzer.
func NewPatternAnalyzer(cfg *Config) *PatternAnalyzer {
	return &PatternAnalyzer{cfg: cfg}
}

// Analyze builds the report. sessions is the caller's pattern window;
// analytics is every analytics record of the user. With no sessions every
// sub-report is neutral.
func (p *PatternAnalyzer) Analyze(userID int64, sessions []models.SessionRecord, analytics []models.AnalyticsRecord, now time.Time) models.PatternReport {
	report := models.PatternReport{
		UserID:       userID,
		WindowDays:   int(p.cfg.PatternWindow / Day),
		SessionCount: len(sessions),
		GeneratedAt:  now,
	}
	if len(sessions) == 0 {
		report.Frequency = models.FrequencyReport{Frequency: models.NoData}
		report.ContentPreferences = models.ContentPreferenceReport{
			TopThemes:     []models.TagCount{},
			TopCategories: []models.TagCount{},
		}
		report.ReadingTimes = models.ReadingTimeReport{
			PeakHours: []models.HourCount{},
			PeakDays:  []models.DayCount{},
		}
		report.Engagement = models.EngagementReport{
			HighEngagementThemes:     []models.TagScore{},
			HighEngagementCategories: []models.TagScore{},
		}
		report.CompletionTrend = models.CompletionTrendReport{Trend: models.InsufficientData}
		report.ReadingSpeed = models.SpeedReport{Profile: models.NoData, SpeedTrend: models.InsufficientData}
		return report
	}

	sorted := sortSessions(sessions)
	report.Frequency = p.Frequency(sorted)
	report.ContentPreferences = ContentPreferences(sorted)
	report.ReadingTimes = p.ReadingTimes(sorted)
	report.Engagement = EngagementByContent(analytics)
	report.CompletionTrend = CompletionTrend(sorted)
	report.ReadingSpeed = SpeedProfile(sorted)
	return report
}

// sortSessions returns a copy ordered by last-read time, oldest first.
func sortSessions(sessions []models.SessionRecord) []models.SessionRecord {
	out := append([]models.SessionRecord{}, sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Session.LastReadAt.Before(out[j].Session.LastReadAt)
	})
	return out
}

// Frequency buckets sessions by calendar date.
func (p *PatternAnalyzer) Frequency(sessions []models.SessionRecord) models.FrequencyReport {
	daily := newCounter[time.Time]()
	for i := range sessions {
		daily.add(p.cfg.Date(sessions[i].Session.LastReadAt))
	}
	if daily.len() == 0 {
		return models.FrequencyReport{Frequency: models.NoData}
	}

	total, maxDaily := 0, 0
	for _, e := range daily.mostCommon(-1) {
		total += e.count
		if e.count > maxDaily {
			maxDaily = e.count
		}
	}
	avg := float64(total) / float64(daily.len())

	var category string
	switch {
	case avg >= 3:
		category = models.FrequencyHeavy
	case avg >= 1:
		category = models.FrequencyRegular
	case avg >= 0.3:
		category = models.FrequencyModerate
	default:
		category = models.FrequencyLight
	}

	return models.FrequencyReport{
		Frequency:        category,
		AvgDailySessions: round(avg, 2),
		MaxDailySessions: maxDaily,
		ActiveDays:       daily.len(),
	}
}

// ContentPreferences tallies themes, categories and reading modes.
func ContentPreferences(sessions []models.SessionRecord) models.ContentPreferenceReport {
	themes := newCounter[string]()
	categories := newCounter[string]()
	modes := newCounter[models.ReadingMode]()
	mentions := 0

	for i := range sessions {
		doc := &sessions[i].Document
		for _, t := range doc.Metadata.Themes {
			themes.add(t)
			mentions++
		}
		for _, c := range doc.Metadata.Categories {
			categories.add(c)
		}
		modes.add(doc.ReadingMode)
	}

	report := models.ContentPreferenceReport{
		TopThemes:     tagCounts(themes.mostCommon(topThemes)),
		TopCategories: tagCounts(categories.mostCommon(topCategories)),
	}
	if top := modes.mostCommon(1); len(top) == 1 {
		report.PreferredMode = &models.ModeCount{Mode: top[0].key, Count: top[0].count}
	}
	if mentions > 0 {
		report.ContentDiversity = float64(themes.len()) / float64(mentions)
	}
	return report
}

func tagCounts(entries []entry[string]) []models.TagCount {
	out := make([]models.TagCount, len(entries))
	for i, e := range entries {
		out[i] = models.TagCount{Tag: e.key, Count: e.count}
	}
	return out
}

// ReadingTimes builds hour and weekday histograms.
func (p *PatternAnalyzer) ReadingTimes(sessions []models.SessionRecord) models.ReadingTimeReport {
	hours := make([]int, 0, len(sessions))
	hourCounts := newCounter[int]()
	dayCounts := newCounter[time.Weekday]()
	var dist models.TimeDistribution

	for i := range sessions {
		ts := sessions[i].Session.LastReadAt.In(p.cfg.location())
		h := ts.Hour()
		hours = append(hours, h)
		hourCounts.add(h)
		dayCounts.add(ts.Weekday())

		switch {
		case h < 6:
			dist.Night++
		case h < 12:
			dist.Morning++
		case h < 18:
			dist.Afternoon++
		default:
			dist.Evening++
		}
	}

	if n := float64(len(hours)); n > 0 {
		dist.Morning /= n
		dist.Afternoon /= n
		dist.Evening /= n
		dist.Night /= n
	}

	peakHours := make([]models.HourCount, 0, topHours)
	for _, e := range hourCounts.mostCommon(topHours) {
		peakHours = append(peakHours, models.HourCount{Hour: e.key, Count: e.count})
	}
	peakDays := make([]models.DayCount, 0, topDays)
	for _, e := range dayCounts.mostCommon(topDays) {
		peakDays = append(peakDays, models.DayCount{Day: e.key.String(), Count: e.count})
	}

	return models.ReadingTimeReport{
		PeakHours:        peakHours,
		PeakDays:         peakDays,
		TimeDistribution: dist,
		ConsistencyScore: TimeConsistency(hours),
	}
}

// TimeConsistency is 1 - H/log2(24) over the hour histogram, rounded to
// two places. Fewer than three samples score 0.
func TimeConsistency(hours []int) float64 {
	if len(hours) < minConsistencySamples {
		return 0
	}
	c := newCounter[int]()
	for _, h := range hours {
		c.add(h)
	}
	counts := make([]int, 0, c.len())
	for _, e := range c.mostCommon(-1) {
		counts = append(counts, e.count)
	}
	return round(1-entropy(counts)/math.Log2(24), 2)
}

// EngagementByContent averages engagement per theme and category over the
// user's analytics. Tags need at least two records to be ranked.
func EngagementByContent(analytics []models.AnalyticsRecord) models.EngagementReport {
	report := models.EngagementReport{
		HighEngagementThemes:     []models.TagScore{},
		HighEngagementCategories: []models.TagScore{},
	}
	if len(analytics) == 0 {
		return report
	}

	themes := newScoreTally()
	categories := newScoreTally()
	scores := make([]float64, 0, len(analytics))
	for i := range analytics {
		rec := &analytics[i]
		score := rec.Analytics.EngagementScore
		scores = append(scores, score)
		for _, t := range rec.Document.Metadata.Themes {
			themes.add(t, score)
		}
		for _, c := range rec.Document.Metadata.Categories {
			categories.add(c, score)
		}
	}

	report.HighEngagementThemes = themes.ranked(topThemes)
	report.HighEngagementCategories = categories.ranked(topCategories)
	report.OverallEngagement = mean(scores)
	return report
}

type scoreTally struct {
	order  []string
	scores map[string][]float64
}

func newScoreTally() *scoreTally {
	return &scoreTally{scores: make(map[string][]float64)}
}

func (s *scoreTally) add(tag string, score float64) {
	if _, ok := s.scores[tag]; !ok {
		s.order = append(s.order, tag)
	}
	s.scores[tag] = append(s.scores[tag], score)
}

func (s *scoreTally) ranked(n int) []models.TagScore {
	out := make([]models.TagScore, 0, len(s.order))
	for _, tag := range s.order {
		if vals := s.scores[tag]; len(vals) >= minEngagementSamples {
			out = append(out, models.TagScore{Tag: tag, Score: mean(vals)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// CompletionTrend compares mean progress of the early and recent halves of
// a chronologically sorted window.
func CompletionTrend(sorted []models.SessionRecord) models.CompletionTrendReport {
	if len(sorted) < minCompletionSessions {
		return models.CompletionTrendReport{Trend: models.InsufficientData}
	}

	mid := len(sorted) / 2
	progress := func(recs []models.SessionRecord) float64 {
		xs := make([]float64, len(recs))
		for i := range recs {
			xs[i] = recs[i].Session.Progress
		}
		return mean(xs)
	}
	early := progress(sorted[:mid])
	recent := progress(sorted[mid:])

	return models.CompletionTrendReport{
		Trend:                classifyTrend(recent, early, completionTrendDelta),
		EarlyAvgCompletion:   round(early, 1),
		RecentAvgCompletion:  round(recent, 1),
		CompletionRateChange: round(recent-early, 1),
	}
}

// SpeedProfile summarizes positive reading speeds in window order.
func SpeedProfile(sorted []models.SessionRecord) models.SpeedReport {
	speeds := make([]float64, 0, len(sorted))
	for i := range sorted {
		if wpm := sorted[i].Session.SpeedWPM; wpm > 0 {
			speeds = append(speeds, wpm)
		}
	}
	if len(speeds) == 0 {
		return models.SpeedReport{Profile: models.NoData, SpeedTrend: models.InsufficientData}
	}

	avg := mean(speeds)
	lo, hi := speeds[0], speeds[0]
	for _, s := range speeds[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	var consistency float64
	if avg > 0 {
		consistency = 1 - populationStdDev(speeds, avg)/avg
	}

	var profile string
	switch {
	case avg >= 300:
		profile = models.SpeedFast
	case avg >= 200:
		profile = models.SpeedAverage
	default:
		profile = models.SpeedSlow
	}

	return models.SpeedReport{
		Profile:          profile,
		AvgWPM:           round(avg, 0),
		MinWPM:           lo,
		MaxWPM:           hi,
		ConsistencyScore: round(consistency, 2),
		SpeedTrend:       SpeedTrend(speeds),
	}
}

// SpeedTrend classifies the OLS slope of speeds against sample index.
func SpeedTrend(speeds []float64) string {
	if len(speeds) < minSpeedSamples {
		return models.InsufficientData
	}
	slope := olsSlope(speeds)
	switch {
	case slope > speedTrendSlope:
		return models.TrendImproving
	case slope < -speedTrendSlope:
		return models.TrendDeclining
	}
	return models.TrendStable
}

func classifyTrend(recent, early, delta float64) string {
	switch {
	case recent > early+delta:
		return models.TrendImproving
	case recent < early-delta:
		return models.TrendDeclining
	}
	return models.TrendStable
}
