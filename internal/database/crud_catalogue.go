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

// AddBookmark saves documentID for userID. Adding an existing bookmark is a
// no-op. It returns ErrNotFound when the document does not exist.
func (db *DB) AddBookmark(ctx context.Context, userID, documentID int64) error {
	if _, err := db.GetDocument(ctx, documentID); err != nil {
		return err
	}
	err := db.guard(ctx, "add_bookmark", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO bookmarks (user_id, document_id, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, document_id) DO NOTHING`,
			userID, documentID, db.now().UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("add bookmark for user %d document %d: %w", userID, documentID, err)
	}
	return nil
}

// RemoveBookmark deletes a bookmark and reports whether one existed.
func (db *DB) RemoveBookmark(ctx context.Context, userID, documentID int64) (bool, error) {
	var removed int64
	err := db.guard(ctx, "remove_bookmark", func(ctx context.Context) error {
		res, err := db.conn.ExecContext(ctx,
			`DELETE FROM bookmarks WHERE user_id = ? AND document_id = ?`, userID, documentID)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("remove bookmark for user %d document %d: %w", userID, documentID, err)
	}
	return removed > 0, nil
}

// BookmarkedDocuments returns the documents userID has bookmarked, oldest bookmark first.
func (db *DB) BookmarkedDocuments(ctx context.Context, userID int64) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM bookmarks b
		JOIN documents d ON d.id = b.document_id
		WHERE b.user_id = ?
		ORDER BY b.created_at, d.id`

	docs := []models.Document{}
	err := db.guard(ctx, "bookmarked_documents", func(ctx context.Context) error {
		rows, err := db.conn.QueryContext(ctx, query, userID)
		if err != nil {
			return err
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var doc models.Document
			if err := scanDocument(rows, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("bookmarked documents for user %d: %w", userID, err)
	}
	return docs, nil
}

// UpsertSimilarity stores a similarity pair in canonical order. Both
// documents must exist.
func (db *DB) UpsertSimilarity(ctx context.Context, sim models.DocumentSimilarity) (models.DocumentSimilarity, error) {
	sim = sim.Canonical()
	if sim.DocumentA == sim.DocumentB {
		return sim, fmt.Errorf("similarity pair must reference two documents, got %d twice", sim.DocumentA)
	}
	for _, id := range []int64{sim.DocumentA, sim.DocumentB} {
		if _, err := db.GetDocument(ctx, id); err != nil {
			return sim, err
		}
	}

	themes, err := encodeJSON(sim.CommonThemes)
	if err != nil {
		return sim, err
	}
	err = db.guard(ctx, "upsert_similarity", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO document_similarities (
				document_a, document_b, score, common_themes, updated_at
			) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (document_a, document_b) DO UPDATE SET
				score = EXCLUDED.score,
				common_themes = EXCLUDED.common_themes,
				updated_at = EXCLUDED.updated_at`,
			sim.DocumentA, sim.DocumentB, sim.Score, themes, db.now().UTC())
		return err
	})
	if err != nil {
		return sim, fmt.Errorf("upsert similarity %d/%d: %w", sim.DocumentA, sim.DocumentB, err)
	}
	return sim, nil
}

// GetSimilarity returns the stored pair for two documents in either order.
func (db *DB) GetSimilarity(ctx context.Context, a, b int64) (*models.DocumentSimilarity, error) {
	key := models.DocumentSimilarity{DocumentA: a, DocumentB: b}.Canonical()

	var sim models.DocumentSimilarity
	err := db.guard(ctx, "get_similarity", func(ctx context.Context) error {
		var themes string
		err := db.conn.QueryRowContext(ctx, `SELECT document_a, document_b, score, common_themes
			FROM document_similarities WHERE document_a = ? AND document_b = ?`,
			key.DocumentA, key.DocumentB).Scan(&sim.DocumentA, &sim.DocumentB, &sim.Score, &themes)
		if err != nil {
			return notFound(err)
		}
		sim.CommonThemes, err = decodeStrings(themes)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get similarity %d/%d: %w", key.DocumentA, key.DocumentB, err)
	}
	return &sim, nil
}
