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

	"github.com/tomtom215/lectern/internal/models"
)

// BatchLearner is the subset of the learning coordinator the batch
// service drives. Satisfied by *learning.Coordinator.
type BatchLearner interface {
	ActiveUsers(ctx context.Context) ([]int64, error)
	RunBatch(ctx context.Context, userIDs []int64) models.BatchResult
}

// BatchServiceConfig holds configuration for the batch learning service.
type BatchServiceConfig struct {
	// RunOnStartup runs one pass before the first tick.
	RunOnStartup bool

	// Interval between passes. Defaults to six hours.
	Interval time.Duration

	// Timeout bounds a single pass. Defaults to thirty minutes.
	Timeout time.Duration
}

// BatchService runs periodic learning cycles for every active user.
type BatchService struct {
	learner BatchLearner
	config  BatchServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewBatchService creates a new batch learning service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBatchService(learner BatchLearner, cfg BatchServiceConfig, logger zerolog.Logger) *BatchService {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &BatchService{
		learner: learner,
		config:  cfg,
		logger:  logger.With().Str("service", "batch-learning").Logger(),
		name:    "batch-learning-service",
	}
}

// Serve implements the suture.Service interface.
// A failed pass is logged and retried on the next tick.
func (s *BatchService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("batch learning service starting")

	if s.config.RunOnStartup {
		if _, err := s.runPass(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial batch pass failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("batch learning service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.runPass(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled batch pass failed")
			}
		}
	}
}

// runPass lists active users and runs one learning cycle for each.
func (s *BatchService) runPass(ctx context.Context) (models.BatchResult, error) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	users, err := s.learner.ActiveUsers(passCtx)
	if err != nil {
		return models.BatchResult{}, fmt.Errorf("list active users: %w", err)
	}
	if len(users) == 0 {
		s.logger.Debug().Msg("no active users, skipping batch pass")
		return models.BatchResult{}, nil
	}

	result := s.learner.RunBatch(passCtx, users)
	s.logger.Info().
		Int("users", result.Users).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int64("duration_ms", result.DurationMS).
		Msg("batch pass complete")

	return result, nil
}

// String returns the service name for logging.
func (s *BatchService) String() string {
	return s.name
}
