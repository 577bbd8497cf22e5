// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// EventComponentsRunner matches the event processing lifecycle.
//
// Satisfied by *eventprocessor.Components:
//   - Start(ctx context.Context) error - starts the router
//   - Shutdown(ctx context.Context) error - stops the router and transport
//   - IsRunning() bool - returns running state
type EventComponentsRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// EventComponentsService wraps the event pipeline as a supervised service.
//
// It adapts the Start/Shutdown lifecycle to suture's Serve pattern:
//  1. Calls Start(ctx) to begin consuming progress events
//  2. Waits for context cancellation
//  3. Calls Shutdown with a fresh timeout context
type EventComponentsService struct {
	components      EventComponentsRunner
	shutdownTimeout time.Duration
	logger          zerolog.Logger
	name            string
}

// NewEventComponentsService creates a new event components service wrapper.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventComponentsService(components EventComponentsRunner, shutdownTimeout time.Duration, logger zerolog.Logger) *EventComponentsService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EventComponentsService{
		components:      components,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "event-components").Logger(),
		name:            "event-components",
	}
}

// Serve implements suture.Service.
//
// If Start fails, the error is returned immediately and suture restarts
// the service according to its backoff policy.
func (s *EventComponentsService) Serve(ctx context.Context) error {
	if err := s.components.Start(ctx); err != nil {
		return fmt.Errorf("event components start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.components.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("event components shutdown incomplete")
	}

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *EventComponentsService) String() string {
	return s.name
}
