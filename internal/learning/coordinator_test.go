// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/behavior"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
	"github.com/tomtom215/lectern/internal/statestore"
	"github.com/tomtom215/lectern/internal/validation"
)

var testNow = time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

type fixture struct {
	c     *Coordinator
	repo  *fakeRepo
	state *fakeState
	cache *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, state, cache := newFakeRepo(), newFakeState(), &fakeCache{}

	c, err := New(repo, state, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.now = func() time.Time { return testNow }
	c.SetCache(cache)

	repo.documents[1] = models.Document{
		ID: 1, OwnerID: 1, Status: models.DocumentCompleted, ReadingMode: models.ModeDirect,
		Metadata: models.DocumentMetadata{
			Themes:     []string{"science", "physics"},
			Categories: []string{"education"},
		},
		CreatedAt: testNow.AddDate(0, 0, -30),
	}
	repo.documents[2] = models.Document{
		ID: 2, OwnerID: 2, Status: models.DocumentCompleted, ReadingMode: models.ModeStory,
		Metadata: models.DocumentMetadata{
			Themes:     []string{"history"},
			Categories: []string{},
		},
		CreatedAt: testNow.AddDate(0, 0, -20),
	}
	return &fixture{c: c, repo: repo, state: state, cache: cache}
}

func validUpdate(userID, docID int64) models.SessionUpdate {
	return models.SessionUpdate{
		UserID:     userID,
		DocumentID: docID,
		Position:   120,
		Progress:   30,
		TimeDelta:  120,
		SpeedWPM:   200,
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil, newFakeState(), DefaultConfig()); err == nil {
		t.Error("New() without repository should fail")
	}
	cfg := DefaultConfig()
	cfg.Behavior = behavior.DefaultConfig()
	cfg.Behavior.PatternWindow = 0
	if _, err := New(newFakeRepo(), newFakeState(), cfg); err == nil {
		t.Error("New() with invalid behavior config should fail")
	}
	cfg = DefaultConfig()
	cfg.CommitRetries = -1
	if _, err := New(newFakeRepo(), newFakeState(), cfg); err == nil {
		t.Error("New() with negative retries should fail")
	}
}

func TestRecordSessionProgress_Invalid(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(u *models.SessionUpdate)
	}{
		{"progress above 100", func(u *models.SessionUpdate) { u.Progress = 101 }},
		{"negative progress", func(u *models.SessionUpdate) { u.Progress = -1 }},
		{"zero speed", func(u *models.SessionUpdate) { u.SpeedWPM = 0 }},
		{"negative delta", func(u *models.SessionUpdate) { u.TimeDelta = -5 }},
		{"missing user", func(u *models.SessionUpdate) { u.UserID = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUpdate(1, 1)
			tt.mutate(&u)

			_, err := f.c.RecordSessionProgress(context.Background(), u)
			if !errors.Is(err, ErrInvalidMetric) {
				t.Fatalf("error = %v, want ErrInvalidMetric", err)
			}
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error %v does not wrap *RequestValidationError", err)
			}
		})
	}
	if f.repo.updateCalls != 0 || f.state.commits != 0 {
		t.Errorf("invalid updates reached storage: %d updates, %d commits", f.repo.updateCalls, f.state.commits)
	}
}

func TestRecordSessionProgress_FirstContact(t *testing.T) {
	f := newFixture(t)

	snap, err := f.c.RecordSessionProgress(context.Background(), validUpdate(1, 1))
	if err != nil {
		t.Fatalf("RecordSessionProgress() error = %v", err)
	}
	if !snap.FirstContact {
		t.Error("FirstContact = false on first update")
	}
	if snap.Analytics.TotalTimeSpent != 120 || snap.Analytics.CompletionRate != 30 {
		t.Errorf("analytics = %+v", snap.Analytics)
	}
	if snap.ReadingStreak != 1 {
		t.Errorf("ReadingStreak = %d, want 1", snap.ReadingStreak)
	}
	if snap.LearnedInterest != "" || len(snap.Interests) != 0 {
		t.Errorf("short session learned interests: %+v", snap)
	}
	if got := f.state.pattern(1).RecentHours; !reflect.DeepEqual(got, []int{12}) {
		t.Errorf("RecentHours = %v, want [12]", got)
	}
	if f.cache.all != 1 || len(f.cache.users) != 0 {
		t.Errorf("first contact invalidated all=%d users=%v, want all=1 and no per-user calls", f.cache.all, f.cache.users)
	}

	// Second update accumulates and is no longer first contact
	u := validUpdate(1, 1)
	u.Progress = 20
	snap, err = f.c.RecordSessionProgress(context.Background(), u)
	if err != nil {
		t.Fatalf("second RecordSessionProgress() error = %v", err)
	}
	if snap.FirstContact {
		t.Error("FirstContact = true on second update")
	}
	if snap.Analytics.TotalTimeSpent != 240 {
		t.Errorf("TotalTimeSpent = %d, want 240", snap.Analytics.TotalTimeSpent)
	}
	if snap.Analytics.CompletionRate != 30 {
		t.Errorf("CompletionRate = %v, want 30 (never decreases)", snap.Analytics.CompletionRate)
	}
	if snap.ReadingStreak != 1 {
		t.Errorf("same-day ReadingStreak = %d, want 1", snap.ReadingStreak)
	}
	if f.cache.all != 1 || !reflect.DeepEqual(f.cache.users, []int64{1}) {
		t.Errorf("repeat update invalidated all=%d users=%v, want all=1 and [1]", f.cache.all, f.cache.users)
	}
}

func TestRecordSessionProgress_FastPathInterest(t *testing.T) {
	f := newFixture(t)

	u := validUpdate(1, 1)
	u.Progress = 80
	u.TimeDelta = 400
	snap, err := f.c.RecordSessionProgress(context.Background(), u)
	if err != nil {
		t.Fatalf("RecordSessionProgress() error = %v", err)
	}
	if snap.LearnedInterest != "science" {
		t.Errorf("LearnedInterest = %q, want science", snap.LearnedInterest)
	}
	if !reflect.DeepEqual(f.state.profile(1).Interests, []string{"science"}) {
		t.Errorf("stored interests = %v", f.state.profile(1).Interests)
	}
}

func TestRecordSessionProgress_MissingDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.c.RecordSessionProgress(context.Background(), validUpdate(1, 99))
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("error = %v, want database.ErrNotFound", err)
	}
	if f.repo.updateCalls != 0 {
		t.Error("missing document reached UpdateProgress")
	}
}

func TestRecordSessionProgress_RetriesConflicts(t *testing.T) {
	f := newFixture(t)
	f.state.conflicts = 2

	snap, err := f.c.RecordSessionProgress(context.Background(), validUpdate(1, 1))
	if err != nil {
		t.Fatalf("RecordSessionProgress() error = %v", err)
	}
	if snap.ReadingStreak != 1 {
		t.Errorf("ReadingStreak = %d, want 1", snap.ReadingStreak)
	}
	if f.repo.updateCalls != 1 {
		t.Errorf("UpdateProgress calls = %d, want 1 (state retries must not replay the session)", f.repo.updateCalls)
	}
}

func TestRecordSessionProgress_ConflictsExhausted(t *testing.T) {
	f := newFixture(t)
	f.state.conflicts = 10

	_, err := f.c.RecordSessionProgress(context.Background(), validUpdate(1, 1))
	if !errors.Is(err, statestore.ErrVersionConflict) {
		t.Fatalf("error = %v, want ErrVersionConflict", err)
	}
	// 1 attempt + 3 retries
	if f.state.conflicts != 6 {
		t.Errorf("remaining conflicts = %d, want 6", f.state.conflicts)
	}
}

// seedReader gives user 1 a strong history with document 1.
func seedReader(f *fixture) {
	key := pairKey{1, 1}
	readAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f.repo.sessions[key] = models.Session{
		UserID: 1, DocumentID: 1, Progress: 95, SpeedWPM: 300, TimeSpent: 1800,
		LastReadAt: readAt, CreatedAt: readAt, UpdatedAt: readAt,
	}
	f.repo.analytics[key] = models.Analytics{
		UserID: 1, DocumentID: 1, TotalTimeSpent: 1800, CompletionRate: 95,
		AvgSpeed: 300, EngagementScore: 0.9, ReadingHours: []int{readAt.Hour()},
		SampleCount: 3, CreatedAt: testNow.AddDate(0, 0, -5), UpdatedAt: readAt,
	}
}

func TestRunLearningCycle(t *testing.T) {
	f := newFixture(t)
	seedReader(f)

	insights, err := f.c.RunLearningCycle(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunLearningCycle() error = %v", err)
	}

	// science: 3 (engaged) + 1 (recent session); physics: 3 (engaged)
	if !reflect.DeepEqual(insights.Interests, []string{"science", "physics"}) {
		t.Errorf("Interests = %v, want [science physics]", insights.Interests)
	}
	if insights.ReadingLevel != models.LevelDetailed {
		t.Errorf("ReadingLevel = %s, want detailed", insights.ReadingLevel)
	}
	if insights.AvgSessionMinutes != 30 {
		t.Errorf("AvgSessionMinutes = %d, want 30", insights.AvgSessionMinutes)
	}
	if insights.PreferredTimes[9] != 1 {
		t.Errorf("PreferredTimes = %v, want hour 9", insights.PreferredTimes)
	}
	if insights.EngagementTrend != models.InsufficientData {
		t.Errorf("EngagementTrend = %s", insights.EngagementTrend)
	}
	if !reflect.DeepEqual(insights.TopContentTypes, []string{"education", "science", "physics"}) {
		t.Errorf("TopContentTypes = %v", insights.TopContentTypes)
	}

	pattern := f.state.pattern(1)
	if pattern.Version != 1 || pattern.AvgSessionMinutes != 30 {
		t.Errorf("stored pattern = %+v", pattern)
	}
	if p := f.state.profile(1); p.Version != 1 || p.ReadingLevel != models.LevelDetailed {
		t.Errorf("stored profile = %+v", p)
	}
	if len(f.cache.users) != 1 {
		t.Errorf("cache invalidations = %v", f.cache.users)
	}
}

func TestRunLearningCycle_NoSessionsLeavesPattern(t *testing.T) {
	f := newFixture(t)

	insights, err := f.c.RunLearningCycle(context.Background(), 7)
	if err != nil {
		t.Fatalf("RunLearningCycle() error = %v", err)
	}
	if insights.ReadingLevel != models.LevelCasual || len(insights.Interests) != 0 {
		t.Errorf("insights = %+v, want defaults", insights)
	}
	if insights.ReadingConsistency != 0 || insights.EngagementTrend != models.InsufficientData {
		t.Errorf("insights = %+v, want neutral values", insights)
	}
	if v := f.state.pattern(7).Version; v != 0 {
		t.Errorf("pattern version = %d, want untouched", v)
	}
}

func TestRunLearningCycle_CanceledBeforeCommit(t *testing.T) {
	f := newFixture(t)
	seedReader(f)

	ctx, cancel := context.WithCancel(context.Background())
	f.repo.onAnalytics = cancel

	_, err := f.c.RunLearningCycle(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if f.state.commits != 0 {
		t.Errorf("commits = %d, want 0", f.state.commits)
	}
	if p := f.state.profile(1); p.Version != 0 || len(p.Interests) != 0 {
		t.Errorf("profile changed: %+v", p)
	}
}

func TestRunLearningCycle_StateError(t *testing.T) {
	f := newFixture(t)
	f.state.loadErr = errors.New("badger unavailable")

	if _, err := f.c.RunLearningCycle(context.Background(), 1); err == nil {
		t.Fatal("RunLearningCycle() should surface state errors")
	}
}

func TestAnalyzePatterns(t *testing.T) {
	f := newFixture(t)

	report, err := f.c.AnalyzePatterns(context.Background(), 1)
	if err != nil {
		t.Fatalf("AnalyzePatterns() error = %v", err)
	}
	if report.Frequency.Frequency != models.NoData || report.SessionCount != 0 {
		t.Errorf("empty report = %+v", report)
	}

	seedReader(f)
	report, err = f.c.AnalyzePatterns(context.Background(), 1)
	if err != nil {
		t.Fatalf("AnalyzePatterns() error = %v", err)
	}
	if report.SessionCount != 1 || report.WindowDays != 90 {
		t.Errorf("report = %+v", report)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	seedReader(f)

	stats, err := f.c.Dashboard(context.Background(), 1)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if stats.TotalDocuments != 1 || stats.CompletedDocuments != 1 || stats.CompletionRate != 100 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.RecentSessions != 1 || stats.WeeklyMinutes != 30 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestInsights_ReadOnly(t *testing.T) {
	f := newFixture(t)
	seedReader(f)

	insights, err := f.c.Insights(context.Background(), 1)
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if insights.ReadingLevel != models.LevelCasual {
		t.Errorf("ReadingLevel = %s, want stored casual", insights.ReadingLevel)
	}
	if f.state.commits != 0 {
		t.Errorf("Insights() committed state")
	}
}

func TestRunBatch(t *testing.T) {
	f := newFixture(t)
	f.repo.failUsers[2] = errors.New("duckdb: connection lost")

	result := f.c.RunBatch(context.Background(), []int64{1, 2, 3})
	if result.Users != 3 || result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("RunBatch() = %+v, want 2 succeeded and 1 failed", result)
	}
}

func TestRunBatch_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.c.RunBatch(ctx, []int64{1, 2, 3})
	if result.Succeeded != 0 || result.Failed != 3 {
		t.Errorf("RunBatch() = %+v, want all failed", result)
	}
}

func TestRunBatch_Paced(t *testing.T) {
	repo, state := newFakeRepo(), newFakeState()
	cfg := DefaultConfig()
	cfg.BatchUsersPerSecond = 1000
	c, err := New(repo, state, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.limiter == nil {
		t.Fatal("limiter not configured")
	}

	result := c.RunBatch(context.Background(), []int64{1, 2, 3, 4})
	if result.Succeeded != 4 {
		t.Errorf("RunBatch() = %+v", result)
	}
}

func TestActiveUsers(t *testing.T) {
	f := newFixture(t)
	seedReader(f)
	old := testNow.AddDate(0, 0, -200)
	f.repo.sessions[pairKey{5, 2}] = models.Session{UserID: 5, DocumentID: 2, LastReadAt: old}

	ids, err := f.c.ActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("ActiveUsers() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{1}) {
		t.Errorf("ActiveUsers() = %v, want [1]", ids)
	}
}

func TestUpsertProfile(t *testing.T) {
	f := newFixture(t)

	profile, err := f.c.UpsertProfile(context.Background(), 1, models.ProfileUpdate{
		Interests:     []string{" art ", "music", "art"},
		PreferredMode: models.ModeStory,
	})
	if err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	if !reflect.DeepEqual(profile.Interests, []string{"art", "music"}) {
		t.Errorf("Interests = %v", profile.Interests)
	}
	if profile.PreferredMode != models.ModeStory || profile.Version != 1 {
		t.Errorf("profile = %+v", profile)
	}

	_, err = f.c.UpsertProfile(context.Background(), 1, models.ProfileUpdate{PreferredMode: "audio"})
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error = %v, want *RequestValidationError", err)
	}

	got, err := f.c.Profile(context.Background(), 1)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if got.Version != 1 {
		t.Errorf("Profile().Version = %d, want 1", got.Version)
	}
}

func TestCatalogueOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{ID: 3, Status: models.DocumentCompleted, ReadingMode: models.ModeDirect}
	if err := f.c.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}
	if doc.Metadata.Themes == nil {
		t.Error("UpsertDocument() did not normalize metadata")
	}
	if err := f.c.UpsertDocument(ctx, &models.Document{ID: 4, Status: "lost", ReadingMode: models.ModeDirect}); err == nil {
		t.Error("UpsertDocument() with bad status should fail")
	}

	if err := f.c.AddBookmark(ctx, 1, 3); err != nil {
		t.Fatalf("AddBookmark() error = %v", err)
	}
	if removed, err := f.c.RemoveBookmark(ctx, 1, 3); err != nil || !removed {
		t.Errorf("RemoveBookmark() = %v, %v", removed, err)
	}

	sim, err := f.c.UpsertSimilarity(ctx, models.DocumentSimilarity{DocumentA: 3, DocumentB: 1, Score: 0.5})
	if err != nil {
		t.Fatalf("UpsertSimilarity() error = %v", err)
	}
	if sim.DocumentA != 1 {
		t.Errorf("similarity not canonical: %+v", sim)
	}
	if _, err := f.c.UpsertSimilarity(ctx, models.DocumentSimilarity{DocumentA: 1, DocumentB: 1, Score: 0.5}); err == nil {
		t.Error("UpsertSimilarity() of a document with itself should fail")
	}
	if f.cache.all != 2 {
		t.Errorf("InvalidateAll calls = %d, want 2", f.cache.all)
	}
}

func TestSnapshotProvider(t *testing.T) {
	f := newFixture(t)
	f.repo.snapshot = &recommend.Snapshot{
		Candidates:  []models.Document{f.repo.documents[2]},
		RecentReads: map[int64]int{2: 1},
	}

	snap, err := f.c.Snapshot(context.Background(), recommend.SnapshotQuery{UserID: 1})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Pattern != nil {
		t.Error("Pattern should be nil before any commit")
	}
	if snap.Profile.UserID != 1 || len(snap.Candidates) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}

	if _, err := f.c.RecordSessionProgress(context.Background(), validUpdate(1, 1)); err != nil {
		t.Fatalf("RecordSessionProgress() error = %v", err)
	}
	snap, err = f.c.Snapshot(context.Background(), recommend.SnapshotQuery{UserID: 1})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Pattern == nil || snap.Pattern.ReadingStreak != 1 {
		t.Errorf("Pattern = %+v", snap.Pattern)
	}
}
