// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

// SessionsSince returns userID's sessions last read at or after since,
// joined with their documents and ordered oldest first.
func (db *DB) SessionsSince(ctx context.Context, userID int64, since time.Time) ([]models.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + `, ` + documentColumns + `
		FROM reading_sessions s
		JOIN documents d ON d.id = s.document_id
		WHERE s.user_id = ? AND s.last_read_at >= ?
		ORDER BY s.last_read_at, s.document_id`

	records := []models.SessionRecord{}
	err := db.guard(ctx, "sessions_since", func(ctx context.Context) error {
		rows, err := db.conn.QueryContext(ctx, query, userID, since.UTC())
		if err != nil {
			return err
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var rec models.SessionRecord
			if err := scanSessionRecord(rows, &rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("sessions for user %d: %w", userID, err)
	}
	return records, nil
}

// AnalyticsRecords returns every analytics row of userID joined with its
// document, ordered by creation time.
func (db *DB) AnalyticsRecords(ctx context.Context, userID int64) ([]models.AnalyticsRecord, error) {
	query := `SELECT ` + analyticsColumns + `, ` + documentColumns + `
		FROM reading_analytics a
		JOIN documents d ON d.id = a.document_id
		WHERE a.user_id = ?
		ORDER BY a.created_at, a.document_id`

	records := []models.AnalyticsRecord{}
	err := db.guard(ctx, "analytics_records", func(ctx context.Context) error {
		rows, err := db.conn.QueryContext(ctx, query, userID)
		if err != nil {
			return err
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var rec models.AnalyticsRecord
			if err := scanAnalyticsRecord(rows, &rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("analytics for user %d: %w", userID, err)
	}
	return records, nil
}

// ActiveUsers returns the ids of users with a session last read at or after
// since, in ascending order.
func (db *DB) ActiveUsers(ctx context.Context, since time.Time) ([]int64, error) {
	ids := []int64{}
	err := db.guard(ctx, "active_users", func(ctx context.Context) error {
		rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT user_id
			FROM reading_sessions
			WHERE last_read_at >= ?
			ORDER BY user_id`, since.UTC())
		if err != nil {
			return err
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	return ids, nil
}
