// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/lectern/internal/behavior"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/statestore"
)

// dashboardWindow is the trailing window for dashboard session and time counts.
const dashboardWindow = 7 * behavior.Day

// signals is everything a learning cycle reads besides the state store.
type signals struct {
	sessions   []models.SessionRecord
	analytics  []models.AnalyticsRecord
	bookmarked []models.Document
}

func (s *signals) plainSessions() []models.Session {
	out := make([]models.Session, len(s.sessions))
	for i := range s.sessions {
		out[i] = s.sessions[i].Session
	}
	return out
}

func (s *signals) plainAnalytics() []models.Analytics {
	out := make([]models.Analytics, len(s.analytics))
	for i := range s.analytics {
		out[i] = s.analytics[i].Analytics
	}
	return out
}

// since returns the records with a session last read at or after t.
func (s *signals) since(t time.Time) []models.SessionRecord {
	out := make([]models.SessionRecord, 0, len(s.sessions))
	for i := range s.sessions {
		if !s.sessions[i].Session.LastReadAt.Before(t) {
			out = append(out, s.sessions[i])
		}
	}
	return out
}

// sessionWindow is the longest trailing session window the cycle reads.
func (c *Coordinator) sessionWindow() time.Duration {
	b := c.cfg.Behavior
	w := b.PatternWindow
	if b.InterestWindow > w {
		w = b.InterestWindow
	}
	if b.ConsistencyWindow > w {
		w = b.ConsistencyWindow
	}
	return w
}

func (c *Coordinator) loadSignals(ctx context.Context, userID int64, now time.Time) (*signals, error) {
	sessions, err := c.repo.SessionsSince(ctx, userID, now.Add(-c.sessionWindow()))
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	analytics, err := c.repo.AnalyticsRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}
	bookmarked, err := c.repo.BookmarkedDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	return &signals{sessions: sessions, analytics: analytics, bookmarked: bookmarked}, nil
}

// RunLearningCycle recomputes the reader's pattern summary, interests and
// reading level, commits them together and returns the resulting insights.
// A canceled or expired ctx before the commit leaves the stored state untouched.
func (c *Coordinator) RunLearningCycle(ctx context.Context, userID int64) (*models.BehavioralInsights, error) {
	start := time.Now()
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	insights, err := c.runLearningCycle(ctx, userID)
	metrics.RecordLearningCycle(resultFor(err), time.Since(start))

	logger := logging.Ctx(ctx).With().Str("component", "learning").Int64("user_id", userID).Logger()
	if err != nil {
		logger.Debug().Err(err).Msg("Learning cycle failed")
		return nil, err
	}
	logger.Debug().
		Str("reading_level", string(insights.ReadingLevel)).
		Int("interests", len(insights.Interests)).
		Dur("duration", time.Since(start)).
		Msg("Learning cycle complete")
	return insights, nil
}

func (c *Coordinator) runLearningCycle(ctx context.Context, userID int64) (*models.BehavioralInsights, error) {
	now := c.now()
	sig, err := c.loadSignals(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	window := sig.since(now.Add(-c.cfg.Behavior.PatternWindow))
	analytics := sig.plainAnalytics()

	committed, err := c.commit(ctx, userID, func(st statestore.Snapshot) (*models.Profile, *models.Pattern, error) {
		var pattern *models.Pattern
		if next, changed := behavior.Summarize(st.Pattern, window, c.cfg.Behavior, now); changed {
			pattern = &next
		}

		profile := st.Profile.Clone()
		profile.Interests = c.interests.Evolve(profile.Interests, behavior.InterestSignals{
			Analytics:  sig.analytics,
			Bookmarked: sig.bookmarked,
			Sessions:   sig.sessions,
		}, now)
		profile.ReadingLevel = c.levels.Adapt(profile.ReadingLevel, analytics, now)
		return &profile, pattern, nil
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(userID)

	insights := behavior.Insights(committed.Profile, committed.Pattern, sig.plainSessions(), analytics, c.cfg.Behavior, now)
	return &insights, nil
}

// Insights returns the behavioral insights for the stored state without
// running a learning cycle.
func (c *Coordinator) Insights(ctx context.Context, userID int64) (*models.BehavioralInsights, error) {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	now := c.now()
	sessions, err := c.repo.SessionsSince(ctx, userID, now.Add(-c.cfg.Behavior.ConsistencyWindow))
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	analytics, err := c.repo.AnalyticsRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}
	st, err := c.state.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	sig := signals{sessions: sessions, analytics: analytics}
	insights := behavior.Insights(st.Profile, st.Pattern, sig.plainSessions(), sig.plainAnalytics(), c.cfg.Behavior, now)
	return &insights, nil
}

// AnalyzePatterns builds the pattern report over the pattern window.
func (c *Coordinator) AnalyzePatterns(ctx context.Context, userID int64) (*models.PatternReport, error) {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	now := c.now()
	sessions, err := c.repo.SessionsSince(ctx, userID, now.Add(-c.cfg.Behavior.PatternWindow))
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	analytics, err := c.repo.AnalyticsRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}

	report := c.patterns.Analyze(userID, sessions, analytics, now)
	return &report, nil
}

// Dashboard builds the reader summary.
func (c *Coordinator) Dashboard(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	now := c.now()
	owned, err := c.repo.CountOwnedDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	sessions, err := c.repo.SessionsSince(ctx, userID, now.Add(-dashboardWindow))
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	analytics, err := c.repo.AnalyticsRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}
	st, err := c.state.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	sig := signals{sessions: sessions, analytics: analytics}
	stats := behavior.Dashboard(userID, owned, sig.plainSessions(), sig.plainAnalytics(), st.Pattern, now)
	return &stats, nil
}
