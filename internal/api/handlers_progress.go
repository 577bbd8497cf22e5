// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

// RecordProgress handles a session progress report.
//
// The body is a models.SessionUpdate; user and document ids come from the
// path. With ?async=true the report is validated, queued and answered with
// 202 and the event id.
func (h *Handler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	uid, ok := userID(w, r)
	if !ok {
		return
	}
	did, ok := documentID(w, r)
	if !ok {
		return
	}

	var update models.SessionUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	update.UserID = uid
	update.DocumentID = did

	if r.URL.Query().Get("async") == "true" {
		h.publishProgress(w, r, update, start)
		return
	}

	snapshot, err := h.learner.RecordSessionProgress(r.Context(), update)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, snapshot, start)
}

func (h *Handler) publishProgress(w http.ResponseWriter, r *http.Request, update models.SessionUpdate, start time.Time) {
	if h.publisher == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Asynchronous ingestion is disabled", nil)
		return
	}

	eventID, err := h.publisher.PublishProgress(r.Context(), update)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status:   models.StatusAccepted,
		Data:     map[string]string{"event_id": eventID},
		Metadata: metadataSince(start),
	})
}
