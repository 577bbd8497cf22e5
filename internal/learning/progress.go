// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"fmt"

	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/statestore"
	"github.com/tomtom215/lectern/internal/validation"
)

// RecordSessionProgress validates and applies one progress report. The
// session upsert and analytics update are committed atomically, then the
// streak, recent hours and fast-path interest are committed to the state
// store. Invalid reports fail with ErrInvalidMetric before anything changes.
func (c *Coordinator) RecordSessionProgress(ctx context.Context, u models.SessionUpdate) (*models.AnalyticsSnapshot, error) {
	if verr := validation.ValidateStruct(u); verr != nil {
		metrics.RecordSessionUpdate(metrics.ResultRejected, 0)
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetric, verr)
	}

	ctx, cancel := c.storeContext(ctx)
	defer cancel()
	logger := logging.Ctx(ctx).With().
		Str("component", "learning").
		Int64("user_id", u.UserID).
		Int64("document_id", u.DocumentID).
		Logger()

	snap, err := c.recordSessionProgress(ctx, u)
	if err != nil {
		metrics.RecordSessionUpdate(resultFor(err), 0)
		logger.Debug().Err(err).Msg("Session update failed")
		return nil, err
	}

	metrics.RecordSessionUpdate(metrics.ResultSuccess, snap.Analytics.EngagementScore)
	if snap.LearnedInterest != "" {
		metrics.RecordInterestLearned()
		logger.Info().Str("interest", snap.LearnedInterest).Msg("Interest learned from session")
	}
	logger.Debug().
		Float64("progress", snap.Session.Progress).
		Float64("engagement", snap.Analytics.EngagementScore).
		Int("streak", snap.ReadingStreak).
		Msg("Session update recorded")
	return snap, nil
}

func (c *Coordinator) recordSessionProgress(ctx context.Context, u models.SessionUpdate) (*models.AnalyticsSnapshot, error) {
	doc, err := c.repo.GetDocument(ctx, u.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	now := c.now()
	var firstContact bool
	sess, an, err := c.repo.UpdateProgress(ctx, u.UserID, u.DocumentID,
		func(prev *models.Session, prevAn *models.Analytics) (models.Session, models.Analytics) {
			s := c.tracker.ApplySession(prev, u, now)
			firstContact = prevAn == nil
			return s, c.tracker.Track(prevAn, s, u.TimeDelta, now)
		})
	if err != nil {
		return nil, err
	}

	var learned string
	committed, err := c.commit(ctx, u.UserID, func(st statestore.Snapshot) (*models.Profile, *models.Pattern, error) {
		profile, pattern, theme := c.interests.LearnFromSession(st.Profile, st.Pattern, *sess, *doc, now)
		learned = theme
		if theme == "" {
			return nil, &pattern, nil
		}
		return &profile, &pattern, nil
	})
	if err != nil {
		return nil, fmt.Errorf("real-time learning: %w", err)
	}
	// A first read adds an analytics row, which moves trending for every reader.
	if firstContact {
		c.invalidateAll()
	} else {
		c.invalidate(u.UserID)
	}

	return &models.AnalyticsSnapshot{
		Session:         *sess,
		Analytics:       *an,
		FirstContact:    firstContact,
		ReadingStreak:   committed.Pattern.ReadingStreak,
		Interests:       append([]string{}, committed.Profile.Interests...),
		LearnedInterest: learned,
	}, nil
}
