// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess   = "success"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultConflict  = "conflict"
	ResultCanceled  = "canceled"
	ResultDuplicate = "duplicate"
)

var (
	// Ingestion Metrics
	SessionUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_session_updates_total",
			Help: "Total number of session progress updates by result",
		},
		[]string{"result"}, // "success", "rejected", "error"
	)

	EngagementScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lectern_engagement_score",
			Help:    "Distribution of single-session engagement scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// Learning Metrics
	LearningCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_learning_cycles_total",
			Help: "Total number of full learning cycles by result",
		},
		[]string{"result"},
	)

	LearningCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lectern_learning_cycle_duration_seconds",
			Help:    "Duration of full learning cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CommitConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_state_commit_conflicts_total",
			Help: "Total number of optimistic profile/pattern commits that lost a race",
		},
	)

	InterestsLearned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_realtime_interests_learned_total",
			Help: "Total number of interests adopted by real-time learning",
		},
	)

	BatchUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_batch_users_total",
			Help: "Total number of users processed by batch learning by result",
		},
		[]string{"result"},
	)

	BatchLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lectern_batch_last_success_timestamp",
			Help: "Unix timestamp of the last batch run with no failures",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_recommendation_requests_total",
			Help: "Total number of recommendation requests by mode and cache result",
		},
		[]string{"mode", "cache"}, // cache: "hit", "miss"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lectern_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"mode"},
	)

	RecommendationsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lectern_recommendations_returned",
			Help:    "Number of documents returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"mode"},
	)

	// Event Metrics
	EventMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_event_messages_total",
			Help: "Total number of consumed progress events by result",
		},
		[]string{"result"}, // "success", "rejected", "error"
	)

	EventPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_event_publish_total",
			Help: "Total number of published progress events by result",
		},
		[]string{"result"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lectern_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordSessionUpdate records one progress update outcome.
func RecordSessionUpdate(result string, engagement float64) {
	SessionUpdates.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		EngagementScore.Observe(engagement)
	}
}

// RecordLearningCycle records a full learning cycle.
func RecordLearningCycle(result string, duration time.Duration) {
	LearningCycles.WithLabelValues(result).Inc()
	LearningCycleDuration.Observe(duration.Seconds())
}

// RecordCommitConflict records an optimistic commit that must be retried.
func RecordCommitConflict() {
	CommitConflicts.Inc()
}

// RecordInterestLearned records a fast-path interest adoption.
func RecordInterestLearned() {
	InterestsLearned.Inc()
}

// RecordBatch records the per-user outcome counts of one batch run.
func RecordBatch(succeeded, failed int) {
	BatchUsers.WithLabelValues(ResultSuccess).Add(float64(succeeded))
	BatchUsers.WithLabelValues(ResultError).Add(float64(failed))
	if failed == 0 {
		BatchLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(mode string, cacheHit bool, returned int, duration time.Duration) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	RecommendationRequests.WithLabelValues(mode, cache).Inc()
	RecommendationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	RecommendationsReturned.WithLabelValues(mode).Observe(float64(returned))
}

// RecordEventMessage records one consumed progress event.
func RecordEventMessage(result string) {
	EventMessages.WithLabelValues(result).Inc()
}

// RecordEventPublish records one progress event publish attempt.
func RecordEventPublish(err error) {
	if err != nil {
		EventPublishes.WithLabelValues(ResultError).Inc()
		return
	}
	EventPublishes.WithLabelValues(ResultSuccess).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetCircuitBreakerState publishes a breaker state (0 closed, 1 half-open, 2 open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
