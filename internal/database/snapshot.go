// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
)

// Snapshot reads the relational recommendation signals for q.UserID.
// Profile and Pattern are left for the caller to fill from the state store.
func (db *DB) Snapshot(ctx context.Context, q recommend.SnapshotQuery) (*recommend.Snapshot, error) {
	snap := &recommend.Snapshot{
		Candidates:         []models.Document{},
		HighEngagementDocs: []int64{},
		Similarities:       []models.DocumentSimilarity{},
		RecentReads:        map[int64]int{},
		ReadThemes:         []string{},
		RecentSpeeds:       []float64{},
		Now:                db.now().UTC(),
	}

	err := db.guard(ctx, "recommendation_snapshot", func(ctx context.Context) error {
		steps := []struct {
			name string
			fn   func(context.Context, *recommend.Snapshot, recommend.SnapshotQuery) error
		}{
			{"candidates", db.loadCandidates},
			{"high engagement", db.loadHighEngagement},
			{"similarities", db.loadSimilarities},
			{"recent reads", db.loadRecentReads},
			{"read themes", db.loadReadThemes},
			{"recent speeds", db.loadRecentSpeeds},
		}
		for _, step := range steps {
			if err := step.fn(ctx, snap, q); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation snapshot for user %d: %w", q.UserID, err)
	}
	return snap, nil
}

// loadCandidates reads completed documents the user has no session for,
// newest first.
func (db *DB) loadCandidates(ctx context.Context, snap *recommend.Snapshot, q recommend.SnapshotQuery) error {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+documentColumns+`
		FROM documents d
		WHERE d.status = ?
		  AND NOT EXISTS (
			SELECT 1 FROM reading_sessions s
			WHERE s.user_id = ? AND s.document_id = d.id
		  )
		ORDER BY d.created_at DESC, d.id`, string(models.DocumentCompleted), q.UserID)
	if err != nil {
		return err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return err
		}
		snap.Candidates = append(snap.Candidates, doc)
	}
	return rows.Err()
}

func (db *DB) loadHighEngagement(ctx context.Context, snap *recommend.Snapshot, q recommend.SnapshotQuery) error {
	rows, err := db.conn.QueryContext(ctx, `SELECT document_id
		FROM reading_analytics
		WHERE user_id = ? AND engagement_score >= ?
		ORDER BY document_id`, q.UserID, q.HighEngagement)
	if err != nil {
		return err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		snap.HighEngagementDocs = append(snap.HighEngagementDocs, id)
	}
	return rows.Err()
}

// loadSimilarities reads every stored pair touching one of the user's
// high-engagement documents.
func (db *DB) loadSimilarities(ctx context.Context, snap *recommend.Snapshot, q recommend.SnapshotQuery) error {
	rows, err := db.conn.QueryContext(ctx, `WITH high AS (
			SELECT document_id FROM reading_analytics
			WHERE user_id = ? AND engagement_score >= ?
		)
		SELECT document_a, document_b, score, common_themes
		FROM document_similarities
		WHERE document_a IN (SELECT document_id FROM high)
		   OR document_b IN (SELECT document_id FROM high)
		ORDER BY document_a, document_b`, q.UserID, q.HighEngagement)
	if err != nil {
		return err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var sim models.DocumentSimilarity
		var themes string
		if err := rows.Scan(&sim.DocumentA, &sim.DocumentB, &sim.Score, &themes); err != nil {
			return err
		}
		if sim.CommonThemes, err = decodeStrings(themes); err != nil {
			return err
		}
		snap.Similarities = append(snap.Similarities, sim)
	}
	return rows.Err()
}

// loadRecentReads counts analytics rows created inside the trending window
// per document, across all users.
func (db *DB) loadRecentReads(ctx context.Context, snap *recommend.Snapshot, q recommend.SnapshotQuery) error {
	rows, err := db.conn.QueryContext(ctx, `SELECT document_id, COUNT(*)
		FROM reading_analytics
		WHERE created_at >= ?
		GROUP BY document_id`, q.TrendingSince.UTC())
	if err != nil {
		return err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return err
		}
		snap.RecentReads[id] = int(n)
	}
	return rows.Err()
}

// loadReadThemes lists themes of every document the user has a session for,
// one entry per (document, theme).
func (db *DB) loadReadThemes(ctx context.Context, snap *recommend.Snapshot, q recommend.SnapshotQuery) error {
	rows, err := db.conn.QueryContext(ctx, `SELECT d.themes
		FROM reading_sessions s
		JOIN documents d ON d.id = s.document_id
		WHERE s.user_id = ?
		ORDER BY s.created_at, d.id`, q.UserID)
	if err != nil {
		return err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		themes, err := decodeStrings(raw)
		if err != nil {
			return err
		}
		snap.ReadThemes = append(snap.ReadThemes, themes...)
	}
	return rows.Err()
}

// loadRecentSpeeds reads the average speed of the user's most recent analytics.
func (db *DB) loadRecentSpeeds(ctx context.Context, snap *recommend.Snapshot, q recommend.SnapshotQuery) error {
	if q.SpeedSamples <= 0 {
		return nil
	}
	rows, err := db.conn.QueryContext(ctx, `SELECT avg_speed
		FROM reading_analytics
		WHERE user_id = ?
		ORDER BY created_at DESC, document_id DESC
		LIMIT ?`, q.UserID, q.SpeedSamples)
	if err != nil {
		return err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var speed sql.NullFloat64
		if err := rows.Scan(&speed); err != nil {
			return err
		}
		if speed.Valid {
			snap.RecentSpeeds = append(snap.RecentSpeeds, speed.Float64)
		}
	}
	return rows.Err()
}
