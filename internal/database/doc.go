// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package database provides the DuckDB repository for reading activity.

The repository owns five tables:

  - documents: the catalogue, including ingestion metadata as JSON text
  - reading_sessions: latest position per (user, document)
  - reading_analytics: cumulative engagement per (user, document)
  - document_similarities: symmetric pairs stored as (lower id, higher id)
  - bookmarks: saved documents per user

# Progress Updates

UpdateProgress applies one session upsert and the matching analytics update
inside a single transaction. Updates for the same (user, document) pair are
serialized with a per-pair mutex; DuckDB transaction conflicts from other
writers are retried with exponential backoff:

	sess, an, err := db.UpdateProgress(ctx, userID, docID,
		func(prev *models.Session, prevAn *models.Analytics) (models.Session, models.Analytics, error) {
			s := tracker.ApplySession(prev, update, now)
			return s, tracker.Track(prevAn, s, update.TimeDelta, now), nil
		})

# Resilience

Every call runs behind a gobreaker circuit breaker and with a deadline of
database.query_timeout when the caller set none. While the breaker is open
calls fail fast with ErrCircuitOpen. ErrNotFound and caller cancellation do
not count as failures.

# Recommendation Signals

Snapshot implements the relational half of recommend.DataProvider. It fills
candidates, high-engagement documents, similarity pairs, trending counts,
read themes and recent speeds; the caller adds the profile and pattern.
*/
package database
