// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package metrics provides Prometheus instrumentation for Lectern.

Collectors are registered with the default registry through promauto at
package init and exposed at /metrics by the API router:

	curl http://localhost:8420/metrics

# Available Metrics

Ingestion:
  - lectern_session_updates_total{result}: progress reports recorded, rejected or failed
  - lectern_engagement_score: histogram of per-session engagement scores

Learning:
  - lectern_learning_cycles_total{result}
  - lectern_learning_cycle_duration_seconds
  - lectern_state_commit_conflicts_total
  - lectern_batch_users_total{result}
  - lectern_realtime_interests_learned_total

Recommendations:
  - lectern_recommendation_requests_total{mode,cache}
  - lectern_recommendation_duration_seconds{mode}
  - lectern_recommendations_returned{mode}

Events:
  - lectern_event_messages_total{result}
  - lectern_event_publish_total{result}

Storage and transport:
  - duckdb_query_duration_seconds{operation}
  - duckdb_query_errors_total{operation}
  - lectern_circuit_breaker_state{name}
  - api_request_duration_seconds{method,route,status}
  - api_active_requests

Always record through the Record* helpers so label values stay consistent.
*/
package metrics
