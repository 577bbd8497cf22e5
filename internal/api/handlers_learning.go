// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/lectern/internal/behavior"
	"github.com/tomtom215/lectern/internal/models"
)

// RunLearningCycle recomputes and commits the reader's profile and pattern.
func (h *Handler) RunLearningCycle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	insights, err := h.learner.RunLearningCycle(r.Context(), uid)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, insights, start)
}

// Insights computes behavioral insights without committing anything.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	insights, err := h.learner.Insights(r.Context(), uid)
	if err != nil {
		respondDegraded(w, r, "insights", neutralInsights(uid), start, err)
		return
	}
	respondSuccess(w, http.StatusOK, insights, start)
}

// Patterns returns the reader's pattern report.
func (h *Handler) Patterns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	report, err := h.learner.AnalyzePatterns(r.Context(), uid)
	if err != nil {
		respondDegraded(w, r, "patterns", neutralPatternReport(uid), start, err)
		return
	}
	respondSuccess(w, http.StatusOK, report, start)
}

// Dashboard returns the reader's dashboard summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	stats, err := h.learner.Dashboard(r.Context(), uid)
	if err != nil {
		respondDegraded(w, r, "dashboard", &models.DashboardStats{
			UserID:         uid,
			PreferredTimes: []models.HourCount{},
		}, start, err)
		return
	}
	respondSuccess(w, http.StatusOK, stats, start)
}

func neutralInsights(uid int64) *models.BehavioralInsights {
	profile := models.DefaultProfile(uid)
	return &models.BehavioralInsights{
		UserID:          uid,
		PreferredTimes:  map[int]int{},
		TopContentTypes: []string{},
		EngagementTrend: models.InsufficientData,
		ReadingLevel:    profile.ReadingLevel,
		Interests:       []string{},
		GeneratedAt:     time.Now().UTC(),
	}
}

func neutralPatternReport(uid int64) *models.PatternReport {
	report := behavior.NewPatternAnalyzer(behavior.DefaultConfig()).Analyze(uid, nil, nil, time.Now().UTC())
	return &report
}
