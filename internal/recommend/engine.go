// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lectern/internal/cache"
)

// Engine serves recommendations from snapshots supplied by a DataProvider.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	scorer *Scorer
	logger zerolog.Logger

	// Metrics
	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64

	// Responses keyed by reader and request, LRU-evicted with TTL.
	cache *cache.LRUCache[*Response]

	dataProvider DataProvider
	now          func() time.Time
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		scorer: NewScorer(cfg),
		logger: logger.With().Str("component", "recommend").Logger(),
		cache:  cache.NewLRUCache[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL),
		now:    time.Now,
	}, nil
}

// SetDataProvider sets the snapshot provider.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// Recommend generates recommendations for a reader. It never mutates reader state.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	if resp := e.tryGetCachedResponse(req, start, logger); resp != nil {
		return resp, nil
	}

	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, ErrNoDataProvider
	}

	now := e.now()
	snap, err := e.dataProvider.Snapshot(ctx, SnapshotQuery{
		UserID:         req.UserID,
		TrendingSince:  now.Add(-e.config.Trending.Window),
		HighEngagement: HighEngagementScore,
		SpeedSamples:   e.config.TimeBudget.SpeedSamples,
	})
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap.Now.IsZero() {
		snap.Now = now
	}

	resp := e.rank(req, snap, start)
	e.cacheResponse(req, resp)

	logger.Debug().
		Int("candidates", resp.TotalCandidates).
		Int("returned", len(resp.Items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// rank dispatches to the scorer variant for the request mode.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) rank(req Request, snap *Snapshot, start time.Time) *Response {
	resp := &Response{TotalCandidates: len(snap.Candidates)}

	switch req.Mode {
	case ModeDiscovery:
		resp.Items = e.scorer.Discovery(snap, req.K)
	case ModeTimeBudgeted:
		items, speed, target := e.scorer.TimeBudgeted(snap, req.AvailableMinutes, req.K)
		resp.Items = items
		resp.Metadata.ReadingSpeedWPM = speed
		resp.Metadata.TargetWords = target
	default:
		resp.Items = e.scorer.Personalized(snap, req.K)
	}

	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.UserID = req.UserID
	resp.Metadata.Mode = req.Mode.String()
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	return resp
}

// prepareRequest applies defaults and generates request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	if req.K <= 0 {
		switch req.Mode {
		case ModeDiscovery:
			req.K = e.config.Limits.DiscoveryK
		case ModeTimeBudgeted:
			req.K = e.config.Limits.TimeBudgetK
		default:
			req.K = e.config.Limits.DefaultK
		}
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	if req.Mode == ModeTimeBudgeted && req.K > e.config.Limits.TimeBudgetK {
		req.K = e.config.Limits.TimeBudgetK
	}
	if req.AvailableMinutes < 0 {
		req.AvailableMinutes = 0
	}

	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Str("mode", req.Mode.String()).
		Logger()
}

// tryGetCachedResponse attempts to retrieve a cached response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(req Request, start time.Time, logger zerolog.Logger) *Response {
	if !e.config.Cache.Enabled {
		return nil
	}

	resp := e.checkCache(e.cacheKey(req))
	if resp == nil {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().Msg("cache hit")
	return resp
}

// cacheResponse stores the response in cache if enabled.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(req Request, resp *Response) {
	if e.config.Cache.Enabled {
		e.storeCache(e.cacheKey(req), resp)
	}
}

// Invalidate drops every cached response for a reader. It is called after
// any write that changes the reader's signals.
func (e *Engine) Invalidate(userID int64) {
	prefix := userCachePrefix(userID)
	e.cache.RemoveFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// InvalidateAll drops every cached response. It is called after catalogue
// writes, which can change any reader's candidates.
func (e *Engine) InvalidateAll() {
	e.clearCache()
}

// GetMetrics returns the current engine metrics.
func (e *Engine) GetMetrics() Metrics {
	size := e.cache.Len()

	return Metrics{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
		CacheSize:    size,
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

func userCachePrefix(userID int64) string {
	return fmt.Sprintf("rec:%d:", userID)
}

// cacheKey generates a cache key for a request.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request) string {
	return fmt.Sprintf("rec:%d:%d:%s:%g", req.UserID, req.K, req.Mode.String(), req.AvailableMinutes)
}

// checkCache checks if a cached response exists and is valid.
// Returns a copy of the cached response to avoid concurrent modification.
func (e *Engine) checkCache(key string) *Response {
	resp, ok := e.cache.Get(key)
	if !ok {
		return nil
	}
	return copyCachedResponse(resp)
}

// copyCachedResponse creates a copy of a cached response.
func copyCachedResponse(resp *Response) *Response {
	items := make([]ScoredDocument, len(resp.Items))
	copy(items, resp.Items)

	return &Response{
		Items:           items,
		TotalCandidates: resp.TotalCandidates,
		Metadata:        resp.Metadata,
	}
}

// storeCache stores a copy of resp, evicting the least recently used
// response when the cache is full.
func (e *Engine) storeCache(key string, resp *Response) {
	e.cache.Set(key, copyCachedResponse(resp))
}

// clearCache removes all cached entries.
func (e *Engine) clearCache() {
	e.cache.Clear()
	e.logger.Debug().Msg("cache cleared")
}
