// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
)

// ActiveUsers returns the readers with sessions inside the active window.
func (c *Coordinator) ActiveUsers(ctx context.Context) ([]int64, error) {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	ids, err := c.repo.ActiveUsers(ctx, c.now().Add(-c.cfg.ActiveWindow))
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	return ids, nil
}

// RunBatch runs the learning cycle for every user in userIDs with bounded
// concurrency. A failing user is logged and skipped; it never aborts the
// others. Users not started before ctx ends are counted as failed.
func (c *Coordinator) RunBatch(ctx context.Context, userIDs []int64) models.BatchResult {
	start := time.Now()
	var succeeded, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(c.cfg.BatchConcurrency)

	for i, userID := range userIDs {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				failed.Add(int64(len(userIDs) - i))
				c.logger.Warn().Err(err).Int("skipped", len(userIDs)-i).Msg("Batch pacing interrupted")
				break
			}
		}
		if ctx.Err() != nil {
			failed.Add(int64(len(userIDs) - i))
			break
		}

		g.Go(func() error {
			if _, err := c.RunLearningCycle(ctx, userID); err != nil {
				failed.Add(1)
				c.logger.Warn().Int64("user_id", userID).Err(err).Msg("Learning cycle failed, skipping user")
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := models.BatchResult{
		Users:      len(userIDs),
		Succeeded:  int(succeeded.Load()),
		Failed:     int(failed.Load()),
		StartedAt:  start,
		DurationMS: time.Since(start).Milliseconds(),
	}
	metrics.RecordBatch(result.Succeeded, result.Failed)
	c.logger.Info().
		Int("users", result.Users).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int64("duration_ms", result.DurationMS).
		Msg("Batch learning complete")
	return result
}
