// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table creation SQL statements.
// List columns (themes, categories, reading_hours, common_themes) and device
// info are stored as JSON text.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id BIGINT PRIMARY KEY,
			owner_id BIGINT NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			reading_mode TEXT NOT NULL,
			themes TEXT NOT NULL DEFAULT '[]',
			categories TEXT NOT NULL DEFAULT '[]',
			complexity_level TEXT NOT NULL DEFAULT '',
			estimated_words INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS reading_sessions (
			user_id BIGINT NOT NULL,
			document_id BIGINT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			progress DOUBLE NOT NULL DEFAULT 0,
			speed_wpm DOUBLE NOT NULL DEFAULT 0,
			time_spent BIGINT NOT NULL DEFAULT 0,
			last_read_at TIMESTAMP NOT NULL,
			device TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, document_id)
		)`,

		`CREATE TABLE IF NOT EXISTS reading_analytics (
			user_id BIGINT NOT NULL,
			document_id BIGINT NOT NULL,
			total_time_spent BIGINT NOT NULL DEFAULT 0,
			completion_rate DOUBLE NOT NULL DEFAULT 0,
			avg_speed DOUBLE NOT NULL DEFAULT 0,
			engagement_score DOUBLE NOT NULL DEFAULT 0,
			reading_hours TEXT NOT NULL DEFAULT '[]',
			sample_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, document_id)
		)`,

		`CREATE TABLE IF NOT EXISTS document_similarities (
			document_a BIGINT NOT NULL,
			document_b BIGINT NOT NULL,
			score DOUBLE NOT NULL,
			common_themes TEXT NOT NULL DEFAULT '[]',
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (document_a, document_b),
			CHECK (document_a < document_b)
		)`,

		`CREATE TABLE IF NOT EXISTS bookmarks (
			user_id BIGINT NOT NULL,
			document_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, document_id)
		)`,
	}
}

// createIndexes creates secondary indexes for the window queries.
// Indexed columns must never be assigned by an ON CONFLICT DO UPDATE clause.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sessions_document ON reading_sessions(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_created ON reading_analytics(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_document ON reading_analytics(document_id)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
