// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"context"
	"sync"

	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
)

type fakeLearner struct {
	mu sync.Mutex

	err         error
	updates     []models.SessionUpdate
	cycles      []int64
	documents   []models.Document
	bookmarks   map[[2]int64]bool
	profile     *models.Profile
	dashboard   *models.DashboardStats
	lastProfile models.ProfileUpdate
}

func newFakeLearner() *fakeLearner {
	return &fakeLearner{bookmarks: make(map[[2]int64]bool)}
}

func (f *fakeLearner) RecordSessionProgress(_ context.Context, u models.SessionUpdate) (*models.AnalyticsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updates = append(f.updates, u)
	return &models.AnalyticsSnapshot{
		Session:       models.Session{UserID: u.UserID, DocumentID: u.DocumentID, Progress: u.Progress},
		FirstContact:  len(f.updates) == 1,
		ReadingStreak: 1,
		Interests:     []string{},
	}, nil
}

func (f *fakeLearner) RunLearningCycle(_ context.Context, userID int64) (*models.BehavioralInsights, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.cycles = append(f.cycles, userID)
	return &models.BehavioralInsights{UserID: userID, EngagementTrend: models.InsufficientData}, nil
}

func (f *fakeLearner) Insights(_ context.Context, userID int64) (*models.BehavioralInsights, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.BehavioralInsights{UserID: userID, ReadingStreak: 4}, nil
}

func (f *fakeLearner) AnalyzePatterns(_ context.Context, userID int64) (*models.PatternReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PatternReport{UserID: userID, SessionCount: 3}, nil
}

func (f *fakeLearner) Dashboard(_ context.Context, userID int64) (*models.DashboardStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.dashboard != nil {
		return f.dashboard, nil
	}
	return &models.DashboardStats{UserID: userID, PreferredTimes: []models.HourCount{}}, nil
}

func (f *fakeLearner) Profile(_ context.Context, userID int64) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile != nil {
		return f.profile, nil
	}
	p := models.DefaultProfile(userID)
	return &p, nil
}

func (f *fakeLearner) UpsertProfile(_ context.Context, userID int64, update models.ProfileUpdate) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastProfile = update
	p := update.Apply(models.DefaultProfile(userID))
	return &p, nil
}

func (f *fakeLearner) UpsertDocument(_ context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.documents = append(f.documents, *doc)
	return nil
}

func (f *fakeLearner) AddBookmark(_ context.Context, userID, documentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.bookmarks[[2]int64{userID, documentID}] = true
	return nil
}

func (f *fakeLearner) RemoveBookmark(_ context.Context, userID, documentID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	key := [2]int64{userID, documentID}
	existed := f.bookmarks[key]
	delete(f.bookmarks, key)
	return existed, nil
}

func (f *fakeLearner) UpsertSimilarity(_ context.Context, sim models.DocumentSimilarity) (*models.DocumentSimilarity, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := sim.Canonical()
	return &c, nil
}

type fakeRecommender struct {
	mu   sync.Mutex
	err  error
	last recommend.Request
}

func (f *fakeRecommender) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.Response{
		Items: []recommend.ScoredDocument{
			{Document: models.Document{ID: 11, Title: "Optics"}, Score: 0.61},
		},
		TotalCandidates: 4,
		Metadata: recommend.ResponseMetadata{
			UserID:   req.UserID,
			Mode:     req.Mode.String(),
			CacheHit: true,
		},
	}, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	err     error
	updates []models.SessionUpdate
}

func (f *fakePublisher) PublishProgress(_ context.Context, u models.SessionUpdate) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.updates = append(f.updates, u)
	return "evt-1", nil
}
