// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/lectern/internal/models"
)

// UpsertDocument inserts or replaces a catalogue entry. created_at is fixed
// by the first insert (now when CreatedAt is zero) and doc.CreatedAt is set
// to the stored value.
func (db *DB) UpsertDocument(ctx context.Context, doc *models.Document) error {
	doc.Normalize()
	themes, err := encodeJSON(doc.Metadata.Themes)
	if err != nil {
		return err
	}
	categories, err := encodeJSON(doc.Metadata.Categories)
	if err != nil {
		return err
	}

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = db.now().UTC()
	}

	query := `INSERT INTO documents (
			id, owner_id, title, status, reading_mode, themes, categories,
			complexity_level, estimated_words, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			reading_mode = EXCLUDED.reading_mode,
			themes = EXCLUDED.themes,
			categories = EXCLUDED.categories,
			complexity_level = EXCLUDED.complexity_level,
			estimated_words = EXCLUDED.estimated_words`

	err = db.guard(ctx, "upsert_document", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, query,
			doc.ID, doc.OwnerID, doc.Title, string(doc.Status), string(doc.ReadingMode),
			themes, categories, string(doc.Metadata.ComplexityLevel), doc.Metadata.EstimatedWords,
			createdAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert document %d: %w", doc.ID, err)
	}

	stored, err := db.GetDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	doc.CreatedAt = stored.CreatedAt
	return nil
}

// GetDocument returns a document by id or ErrNotFound.
func (db *DB) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE d.id = ?`

	var doc models.Document
	err := db.guard(ctx, "get_document", func(ctx context.Context) error {
		return notFound(scanDocument(db.conn.QueryRowContext(ctx, query, id), &doc))
	})
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return &doc, nil
}

// CountOwnedDocuments returns the number of documents uploaded by userID.
func (db *DB) CountOwnedDocuments(ctx context.Context, userID int64) (int, error) {
	var n int
	err := db.guard(ctx, "count_owned_documents", func(ctx context.Context) error {
		return db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE owner_id = ?`, userID).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count documents for user %d: %w", userID, err)
	}
	return n, nil
}
