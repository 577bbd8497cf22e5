// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/learning"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
)

// ProgressRecorder applies one session update.
// *learning.Coordinator satisfies it.
type ProgressRecorder interface {
	RecordSessionProgress(ctx context.Context, u models.SessionUpdate) (*models.AnalyticsSnapshot, error)
}

// HandlerStats holds handler counters.
type HandlerStats struct {
	Processed int64 `json:"processed"`
	Rejected  int64 `json:"rejected"`
	Failed    int64 `json:"failed"`
}

// ProgressHandler consumes session progress events.
type ProgressHandler struct {
	recorder   ProgressRecorder
	serializer *Serializer
	logger     watermill.LoggerAdapter

	processed atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
}

// NewProgressHandler creates a handler applying events through recorder.
func NewProgressHandler(recorder ProgressRecorder, logger watermill.LoggerAdapter) (*ProgressHandler, error) {
	if recorder == nil {
		return nil, errors.New("progress recorder required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &ProgressHandler{
		recorder:   recorder,
		serializer: NewSerializer(),
		logger:     logger,
	}, nil
}

// Handle applies one message. Malformed payloads, invalid metrics and
// unknown documents are acknowledged and dropped because redelivery
// cannot fix them. Any other error is returned for retry.
func (h *ProgressHandler) Handle(msg *message.Message) error {
	event, err := h.serializer.Unmarshal(msg.Payload)
	if err != nil {
		h.reject(msg, err)
		return nil
	}

	ctx := msg.Context()
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	if _, err := h.recorder.RecordSessionProgress(ctx, event.Update); err != nil {
		if errors.Is(err, learning.ErrInvalidMetric) || errors.Is(err, database.ErrNotFound) {
			h.reject(msg, err)
			return nil
		}
		h.failed.Add(1)
		metrics.RecordEventMessage(metrics.ResultError)
		return err
	}

	h.processed.Add(1)
	metrics.RecordEventMessage(metrics.ResultSuccess)
	return nil
}

func (h *ProgressHandler) reject(msg *message.Message, err error) {
	h.rejected.Add(1)
	metrics.RecordEventMessage(metrics.ResultRejected)
	h.logger.Info("Dropping progress event", watermill.LogFields{
		"message_id": msg.UUID,
		"reason":     err.Error(),
	})
}

// Stats returns a snapshot of the handler counters.
func (h *ProgressHandler) Stats() HandlerStats {
	return HandlerStats{
		Processed: h.processed.Load(),
		Rejected:  h.rejected.Load(),
		Failed:    h.failed.Load(),
	}
}
