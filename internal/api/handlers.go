// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
)

// Learner is the reader-facing learning surface. *learning.Coordinator satisfies it.
type Learner interface {
	RecordSessionProgress(ctx context.Context, u models.SessionUpdate) (*models.AnalyticsSnapshot, error)
	RunLearningCycle(ctx context.Context, userID int64) (*models.BehavioralInsights, error)
	Insights(ctx context.Context, userID int64) (*models.BehavioralInsights, error)
	AnalyzePatterns(ctx context.Context, userID int64) (*models.PatternReport, error)
	Dashboard(ctx context.Context, userID int64) (*models.DashboardStats, error)
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
	UpsertProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.Profile, error)
	UpsertDocument(ctx context.Context, doc *models.Document) error
	AddBookmark(ctx context.Context, userID, documentID int64) error
	RemoveBookmark(ctx context.Context, userID, documentID int64) (bool, error)
	UpsertSimilarity(ctx context.Context, sim models.DocumentSimilarity) (*models.DocumentSimilarity, error)
}

// Recommender produces recommendations. *recommend.Engine satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// ProgressPublisher queues progress reports. *eventprocessor.Publisher satisfies it.
type ProgressPublisher interface {
	PublishProgress(ctx context.Context, u models.SessionUpdate) (string, error)
}

// HealthCheck is one named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler serves the API routes.
type Handler struct {
	learner     Learner
	recommender Recommender
	publisher   ProgressPublisher
	checks      []HealthCheck
	startTime   time.Time
	version     string
}

// NewHandler creates a handler. publisher may be nil, in which case
// asynchronous progress reports are refused with 503.
func NewHandler(learner Learner, recommender Recommender) (*Handler, error) {
	if learner == nil {
		return nil, errors.New("learner required")
	}
	if recommender == nil {
		return nil, errors.New("recommender required")
	}
	return &Handler{
		learner:     learner,
		recommender: recommender,
		startTime:   time.Now(),
		version:     "dev",
	}, nil
}

// SetPublisher enables asynchronous progress reports.
func (h *Handler) SetPublisher(p ProgressPublisher) {
	h.publisher = p
}

// AddHealthCheck registers a dependency probe for the health endpoint.
func (h *Handler) AddHealthCheck(name string, check func(ctx context.Context) error) {
	h.checks = append(h.checks, HealthCheck{Name: name, Check: check})
}

// SetVersion sets the version reported by the health endpoint.
func (h *Handler) SetVersion(v string) {
	h.version = v
}

// pathID parses a positive int64 URL parameter. It writes a 400 and
// returns false when the parameter is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name, field string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondBadParam(w, field, field+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return pathID(w, r, "userID", "user_id")
}

func documentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return pathID(w, r, "documentID", "document_id")
}
