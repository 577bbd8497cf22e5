// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/lectern/internal/behavior"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
	"github.com/tomtom215/lectern/internal/statestore"
)

// ErrInvalidMetric is returned when a progress report fails validation.
// The returned error also wraps the *validation.RequestValidationError.
var ErrInvalidMetric = errors.New("invalid reading metric")

// Repository is the relational storage used by the coordinator.
// *database.DB implements it.
type Repository interface {
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	UpsertDocument(ctx context.Context, doc *models.Document) error
	CountOwnedDocuments(ctx context.Context, userID int64) (int, error)

	UpdateProgress(ctx context.Context, userID, documentID int64, fn database.ProgressFunc) (*models.Session, *models.Analytics, error)
	SessionsSince(ctx context.Context, userID int64, since time.Time) ([]models.SessionRecord, error)
	AnalyticsRecords(ctx context.Context, userID int64) ([]models.AnalyticsRecord, error)
	ActiveUsers(ctx context.Context, since time.Time) ([]int64, error)

	AddBookmark(ctx context.Context, userID, documentID int64) error
	RemoveBookmark(ctx context.Context, userID, documentID int64) (bool, error)
	BookmarkedDocuments(ctx context.Context, userID int64) ([]models.Document, error)
	UpsertSimilarity(ctx context.Context, sim models.DocumentSimilarity) (models.DocumentSimilarity, error)

	Snapshot(ctx context.Context, q recommend.SnapshotQuery) (*recommend.Snapshot, error)
}

// StateStore holds the versioned profile and pattern.
// *statestore.Store implements it.
type StateStore interface {
	Load(ctx context.Context, userID int64) (statestore.Snapshot, error)
	Commit(ctx context.Context, userID int64, profile *models.Profile, pattern *models.Pattern) (statestore.Snapshot, error)
}

// CacheInvalidator drops cached recommendations.
// *recommend.Engine implements it.
type CacheInvalidator interface {
	Invalidate(userID int64)
	InvalidateAll()
}

// Config contains coordinator settings.
type Config struct {
	// Behavior configures the behavioral core.
	Behavior *behavior.Config

	// CommitRetries is the number of recomputations after a version conflict.
	CommitRetries int

	// StoreTimeout bounds each operation's store calls when the caller set no deadline.
	StoreTimeout time.Duration

	// BatchConcurrency bounds the number of concurrent cycles in RunBatch.
	BatchConcurrency int

	// BatchUsersPerSecond paces cycle starts in RunBatch. Zero disables pacing.
	BatchUsersPerSecond float64

	// ActiveWindow selects the readers returned by ActiveUsers.
	ActiveWindow time.Duration
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{
		Behavior:         behavior.DefaultConfig(),
		CommitRetries:    3,
		StoreTimeout:     10 * time.Second,
		BatchConcurrency: 4,
		ActiveWindow:     90 * behavior.Day,
	}
}

// Coordinator runs the behavioral core against the stores.
type Coordinator struct {
	repo  Repository
	state StateStore
	cache CacheInvalidator

	cfg       Config
	tracker   *behavior.Tracker
	patterns  *behavior.PatternAnalyzer
	interests *behavior.InterestEngine
	levels    *behavior.LevelAdapter
	limiter   *rate.Limiter

	logger zerolog.Logger
	now    func() time.Time
}

// New creates a coordinator.
func New(repo Repository, state StateStore, cfg Config) (*Coordinator, error) {
	if repo == nil || state == nil {
		return nil, errors.New("learning: repository and state store are required")
	}
	if cfg.Behavior == nil {
		cfg.Behavior = behavior.DefaultConfig()
	}
	if err := cfg.Behavior.Validate(); err != nil {
		return nil, fmt.Errorf("invalid behavior config: %w", err)
	}
	if cfg.CommitRetries < 0 {
		return nil, fmt.Errorf("commit retries must be non-negative, got %d", cfg.CommitRetries)
	}
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}

	c := &Coordinator{
		repo:      repo,
		state:     state,
		cfg:       cfg,
		tracker:   behavior.NewTracker(cfg.Behavior),
		patterns:  behavior.NewPatternAnalyzer(cfg.Behavior),
		interests: behavior.NewInterestEngine(cfg.Behavior),
		levels:    behavior.NewLevelAdapter(cfg.Behavior),
		logger:    logging.WithComponent("learning"),
		now:       time.Now,
	}
	if cfg.BatchUsersPerSecond > 0 {
		burst := int(cfg.BatchUsersPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.BatchUsersPerSecond), burst)
	}
	return c, nil
}

// SetCache sets the recommendation cache invalidated after state changes.
func (c *Coordinator) SetCache(cache CacheInvalidator) {
	c.cache = cache
}

func (c *Coordinator) invalidate(userID int64) {
	if c.cache != nil {
		c.cache.Invalidate(userID)
	}
}

func (c *Coordinator) invalidateAll() {
	if c.cache != nil {
		c.cache.InvalidateAll()
	}
}

// storeContext applies StoreTimeout when ctx has no deadline.
func (c *Coordinator) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.StoreTimeout)
}

// stageFunc computes the state to commit from a fresh snapshot. A nil
// profile or pattern leaves that record untouched.
type stageFunc func(snap statestore.Snapshot) (*models.Profile, *models.Pattern, error)

// commit runs stage and commits its result, recomputing from a fresh read
// on version conflicts.
func (c *Coordinator) commit(ctx context.Context, userID int64, stage stageFunc) (statestore.Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.CommitRetries; attempt++ {
		snap, err := c.state.Load(ctx, userID)
		if err != nil {
			return statestore.Snapshot{}, fmt.Errorf("load state: %w", err)
		}
		profile, pattern, err := stage(snap)
		if err != nil {
			return statestore.Snapshot{}, err
		}
		if err := ctx.Err(); err != nil {
			return statestore.Snapshot{}, err
		}

		committed, err := c.state.Commit(ctx, userID, profile, pattern)
		if err == nil {
			return committed, nil
		}
		if !errors.Is(err, statestore.ErrVersionConflict) {
			return statestore.Snapshot{}, fmt.Errorf("commit state: %w", err)
		}

		metrics.RecordCommitConflict()
		c.logger.Debug().Int64("user_id", userID).Int("attempt", attempt+1).Msg("State commit conflict, recomputing")
		lastErr = err
	}
	return statestore.Snapshot{}, fmt.Errorf("commit state after %d attempts: %w", c.cfg.CommitRetries+1, lastErr)
}

// resultFor maps an operation error to a metrics result label.
func resultFor(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrInvalidMetric):
		return metrics.ResultRejected
	case errors.Is(err, statestore.ErrVersionConflict):
		return metrics.ResultConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	default:
		return metrics.ResultError
	}
}
