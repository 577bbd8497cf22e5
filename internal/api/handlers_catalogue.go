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

// GetProfile returns the stored profile, or the default one for a new reader.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	profile, err := h.learner.Profile(r.Context(), uid)
	if err != nil {
		fallback := models.DefaultProfile(uid)
		respondDegraded(w, r, "profile", &fallback, start, err)
		return
	}
	respondSuccess(w, http.StatusOK, profile, start)
}

// PutProfile applies an explicit interest and mode edit.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var update models.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	profile, err := h.learner.UpsertProfile(r.Context(), uid, update)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, profile, start)
}

// PutDocument creates or replaces a catalogue entry. The id comes from the path.
func (h *Handler) PutDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	did, ok := documentID(w, r)
	if !ok {
		return
	}

	var doc models.Document
	if !decodeBody(w, r, &doc) {
		return
	}
	doc.ID = did

	if err := h.learner.UpsertDocument(r.Context(), &doc); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, &doc, start)
}

// PutSimilarity stores a similarity pair in canonical order.
func (h *Handler) PutSimilarity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var sim models.DocumentSimilarity
	if !decodeBody(w, r, &sim) {
		return
	}

	stored, err := h.learner.UpsertSimilarity(r.Context(), sim)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, stored, start)
}

// AddBookmark saves a document for the reader.
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	did, ok := documentID(w, r)
	if !ok {
		return
	}

	if err := h.learner.AddBookmark(r.Context(), uid, did); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user_id":     uid,
		"document_id": did,
		"bookmarked":  true,
	}, start)
}

// RemoveBookmark deletes a bookmark. Removing a missing bookmark is a 404.
func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	did, ok := documentID(w, r)
	if !ok {
		return
	}

	removed, err := h.learner.RemoveBookmark(r.Context(), uid, did)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !removed {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Bookmark not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user_id":     uid,
		"document_id": did,
		"bookmarked":  false,
	}, start)
}
