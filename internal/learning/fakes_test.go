// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
	"github.com/tomtom215/lectern/internal/statestore"
)

type pairKey struct{ user, doc int64 }

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	mu        sync.Mutex
	documents map[int64]models.Document
	sessions  map[pairKey]models.Session
	analytics map[pairKey]models.Analytics
	bookmarks map[int64][]int64

	// failUsers makes SessionsSince fail for the listed users.
	failUsers map[int64]error
	// onAnalytics runs at the start of AnalyticsRecords.
	onAnalytics func()

	updateCalls int
	snapshot    *recommend.Snapshot
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		documents: map[int64]models.Document{},
		sessions:  map[pairKey]models.Session{},
		analytics: map[pairKey]models.Analytics{},
		bookmarks: map[int64][]int64{},
		failUsers: map[int64]error{},
	}
}

func (r *fakeRepo) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[id]
	if !ok {
		return nil, fmt.Errorf("get document %d: %w", id, database.ErrNotFound)
	}
	return &doc, nil
}

func (r *fakeRepo) UpsertDocument(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[doc.ID] = *doc
	return nil
}

func (r *fakeRepo) CountOwnedDocuments(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.documents {
		if d.OwnerID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) UpdateProgress(ctx context.Context, userID, documentID int64, fn database.ProgressFunc) (*models.Session, *models.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++

	key := pairKey{userID, documentID}
	var prev *models.Session
	var prevAn *models.Analytics
	if s, ok := r.sessions[key]; ok {
		prev = &s
	}
	if a, ok := r.analytics[key]; ok {
		prevAn = &a
	}
	s, a := fn(prev, prevAn)
	r.sessions[key] = s
	r.analytics[key] = a
	return &s, &a, nil
}

func (r *fakeRepo) SessionsSince(ctx context.Context, userID int64, since time.Time) ([]models.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failUsers[userID]; err != nil {
		return nil, err
	}
	out := []models.SessionRecord{}
	for k, s := range r.sessions {
		if k.user == userID && !s.LastReadAt.Before(since) {
			out = append(out, models.SessionRecord{Session: s, Document: r.documents[k.doc]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Session.LastReadAt.Before(out[j].Session.LastReadAt) })
	return out, nil
}

func (r *fakeRepo) AnalyticsRecords(ctx context.Context, userID int64) ([]models.AnalyticsRecord, error) {
	if r.onAnalytics != nil {
		r.onAnalytics()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.AnalyticsRecord{}
	for k, a := range r.analytics {
		if k.user == userID {
			out = append(out, models.AnalyticsRecord{Analytics: a, Document: r.documents[k.doc]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Analytics.CreatedAt.Before(out[j].Analytics.CreatedAt) })
	return out, nil
}

func (r *fakeRepo) ActiveUsers(ctx context.Context, since time.Time) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]bool{}
	out := []int64{}
	for k, s := range r.sessions {
		if !s.LastReadAt.Before(since) && !seen[k.user] {
			seen[k.user] = true
			out = append(out, k.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *fakeRepo) AddBookmark(ctx context.Context, userID, documentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[documentID]; !ok {
		return database.ErrNotFound
	}
	r.bookmarks[userID] = append(r.bookmarks[userID], documentID)
	return nil
}

func (r *fakeRepo) RemoveBookmark(ctx context.Context, userID, documentID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.bookmarks[userID]
	for i, id := range ids {
		if id == documentID {
			r.bookmarks[userID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) BookmarkedDocuments(ctx context.Context, userID int64) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Document{}
	for _, id := range r.bookmarks[userID] {
		out = append(out, r.documents[id])
	}
	return out, nil
}

func (r *fakeRepo) UpsertSimilarity(ctx context.Context, sim models.DocumentSimilarity) (models.DocumentSimilarity, error) {
	return sim.Canonical(), nil
}

func (r *fakeRepo) Snapshot(ctx context.Context, q recommend.SnapshotQuery) (*recommend.Snapshot, error) {
	if r.snapshot != nil {
		cp := *r.snapshot
		return &cp, nil
	}
	return &recommend.Snapshot{RecentReads: map[int64]int{}}, nil
}

// fakeState is an in-memory StateStore with conflict injection.
type fakeState struct {
	mu       sync.Mutex
	profiles map[int64]models.Profile
	patterns map[int64]models.Pattern

	// conflicts is the number of upcoming commits that fail with a conflict.
	conflicts int
	commits   int
	loadErr   error
}

func newFakeState() *fakeState {
	return &fakeState{profiles: map[int64]models.Profile{}, patterns: map[int64]models.Pattern{}}
}

func (s *fakeState) Load(ctx context.Context, userID int64) (statestore.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return statestore.Snapshot{}, s.loadErr
	}
	snap := statestore.Snapshot{Profile: models.DefaultProfile(userID), Pattern: models.DefaultPattern(userID)}
	if p, ok := s.profiles[userID]; ok {
		snap.Profile = p.Clone()
	}
	if p, ok := s.patterns[userID]; ok {
		snap.Pattern = p.Clone()
	}
	return snap, nil
}

func (s *fakeState) Commit(ctx context.Context, userID int64, profile *models.Profile, pattern *models.Pattern) (statestore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return statestore.Snapshot{}, err
	}
	s.mu.Lock()
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return statestore.Snapshot{}, statestore.ErrVersionConflict
	}
	s.commits++
	if profile != nil {
		next := profile.Clone()
		next.Version++
		s.profiles[userID] = next
	}
	if pattern != nil {
		next := pattern.Clone()
		next.Version++
		s.patterns[userID] = next
	}
	s.mu.Unlock()
	return s.Load(ctx, userID)
}

func (s *fakeState) profile(userID int64) models.Profile {
	snap, _ := s.Load(context.Background(), userID)
	return snap.Profile
}

func (s *fakeState) pattern(userID int64) models.Pattern {
	snap, _ := s.Load(context.Background(), userID)
	return snap.Pattern
}

// fakeCache records invalidations.
type fakeCache struct {
	mu    sync.Mutex
	users []int64
	all   int
}

func (c *fakeCache) Invalidate(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = append(c.users, userID)
}

func (c *fakeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all++
}
