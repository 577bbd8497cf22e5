// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
)

// Recommendations returns ranked documents for the reader.
//
// Query parameters: mode (personalized, discovery, time_budgeted), limit
// (0 or absent uses the mode default) and minutes (time budget).
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	mode, err := recommend.ParseMode(q.Get("mode"))
	if err != nil {
		respondBadParam(w, "mode", err.Error())
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondBadParam(w, "limit", "limit must be a non-negative integer")
			return
		}
	}

	var minutes float64
	if raw := q.Get("minutes"); raw != "" {
		minutes, err = strconv.ParseFloat(raw, 64)
		if err != nil || minutes < 0 {
			respondBadParam(w, "minutes", "minutes must be a non-negative number")
			return
		}
	}

	resp, err := h.recommender.Recommend(r.Context(), recommend.Request{
		UserID:           uid,
		Mode:             mode,
		K:                limit,
		AvailableMinutes: minutes,
		RequestID:        logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondDegraded(w, r, "recommendations", &recommend.Response{
			Items: []recommend.ScoredDocument{},
			Metadata: recommend.ResponseMetadata{
				UserID: uid,
				Mode:   mode.String(),
			},
		}, start, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      resp.Metadata.CacheHit,
		},
	})
}
