// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/lectern/internal/models"
)

// EventTypeSessionProgress identifies session progress events.
const EventTypeSessionProgress = "session.progress"

// SchemaVersion is the current event payload version.
const SchemaVersion = 1

// Message metadata keys.
const (
	MetadataUserID        = "user_id"
	MetadataDocumentID    = "document_id"
	MetadataCorrelationID = "correlation_id"
)

// SessionProgressEvent is one reader progress report in transit.
// EventID is also the Watermill message UUID and the NATS message id.
type SessionProgressEvent struct {
	EventID     string               `json:"event_id"`
	Type        string               `json:"type"`
	Version     int                  `json:"version"`
	Update      models.SessionUpdate `json:"update"`
	PublishedAt time.Time            `json:"published_at"`
}

// NewSessionProgressEvent wraps u in a new event. An unset ReadAt is
// stamped with now so the reading time survives queueing delay.
func NewSessionProgressEvent(u models.SessionUpdate, now time.Time) *SessionProgressEvent {
	if u.ReadAt.IsZero() {
		u.ReadAt = now
	}
	return &SessionProgressEvent{
		EventID:     uuid.New().String(),
		Type:        EventTypeSessionProgress,
		Version:     SchemaVersion,
		Update:      u,
		PublishedAt: now,
	}
}

// Validate checks the envelope. The update's metric values are validated
// by the coordinator when the event is applied.
func (e *SessionProgressEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrMalformedEvent)
	}
	if e.Type != EventTypeSessionProgress {
		return fmt.Errorf("%w: unexpected type %q", ErrMalformedEvent, e.Type)
	}
	if e.Version != SchemaVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedEvent, e.Version)
	}
	return nil
}
