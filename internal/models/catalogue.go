// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import (
	"time"
)

// DocumentStatus is the ingestion state of a document.
type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// Complexity is the difficulty tier assigned to a document by ingestion.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityMedium   Complexity = "medium"
	ComplexityComplex  Complexity = "complex"
	ComplexityAdvanced Complexity = "advanced"
)

// DocumentMetadata is the structured metadata produced by document ingestion.
// Missing lists are stored and returned as empty, never nil.
type DocumentMetadata struct {
	Themes          []string   `json:"themes"`
	Categories      []string   `json:"categories"`
	ComplexityLevel Complexity `json:"complexity_level,omitempty"`
	EstimatedWords  int        `json:"estimated_words"`
}

// Document is a catalogue entry.
type Document struct {
	ID          int64            `json:"id" validate:"gt=0"`
	OwnerID     int64            `json:"owner_id" validate:"gte=0"`
	Title       string           `json:"title" validate:"max=512"`
	Status      DocumentStatus   `json:"status" validate:"oneof=uploaded processing completed failed"`
	ReadingMode ReadingMode      `json:"reading_mode" validate:"oneof=direct story"`
	Metadata    DocumentMetadata `json:"metadata"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Complexity returns the document's complexity tier, defaulting to medium.
func (d Document) Complexity() Complexity {
	if d.Metadata.ComplexityLevel == "" {
		return ComplexityMedium
	}
	return d.Metadata.ComplexityLevel
}

// Normalize replaces nil metadata lists with empty ones.
func (d *Document) Normalize() {
	if d.Metadata.Themes == nil {
		d.Metadata.Themes = []string{}
	}
	if d.Metadata.Categories == nil {
		d.Metadata.Categories = []string{}
	}
}

// DocumentSimilarity is a symmetric similarity score between two documents.
// DocumentA is always the lower id once stored.
type DocumentSimilarity struct {
	DocumentA    int64    `json:"document_a" validate:"gt=0"`
	DocumentB    int64    `json:"document_b" validate:"gt=0,nefield=DocumentA"`
	Score        float64  `json:"score" validate:"gte=0,lte=1"`
	CommonThemes []string `json:"common_themes"`
}

// Canonical returns the similarity with DocumentA < DocumentB.
func (s DocumentSimilarity) Canonical() DocumentSimilarity {
	if s.DocumentA > s.DocumentB {
		s.DocumentA, s.DocumentB = s.DocumentB, s.DocumentA
	}
	if s.CommonThemes == nil {
		s.CommonThemes = []string{}
	}
	return s
}

// Other returns the id paired with docID, or 0 when docID is not part of the pair.
func (s DocumentSimilarity) Other(docID int64) int64 {
	switch docID {
	case s.DocumentA:
		return s.DocumentB
	case s.DocumentB:
		return s.DocumentA
	}
	return 0
}

// Bookmark marks a document as saved by a reader.
type Bookmark struct {
	UserID     int64     `json:"user_id"`
	DocumentID int64     `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionRecord is a session joined with its document.
type SessionRecord struct {
	Session  Session  `json:"session"`
	Document Document `json:"document"`
}

// AnalyticsRecord is an analytics row joined with its document.
type AnalyticsRecord struct {
	Analytics Analytics `json:"analytics"`
	Document  Document  `json:"document"`
}
