// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/lectern/internal/models"
)

// ProgressFunc derives the new session and analytics rows from the stored
// ones. Either argument is nil when the row does not exist yet. It may be
// called more than once when the transaction is retried and must not have
// side effects.
type ProgressFunc func(prevSession *models.Session, prevAnalytics *models.Analytics) (models.Session, models.Analytics)

// UpdateProgress applies a session upsert and the matching analytics update
// atomically. Writers to the same (user, document) pair are serialized and
// transaction conflicts are retried with exponential backoff.
func (db *DB) UpdateProgress(ctx context.Context, userID, documentID int64, fn ProgressFunc) (*models.Session, *models.Analytics, error) {
	mu := db.acquireProgressLock(userID, documentID)
	defer db.releaseProgressLock(mu)

	var sess models.Session
	var an models.Analytics
	err := db.guard(ctx, "update_progress", func(ctx context.Context) error {
		return withRetry(ctx, func() error {
			var err error
			sess, an, err = db.doUpdateProgress(ctx, userID, documentID, fn)
			return err
		})
	})
	if err != nil {
		return nil, nil, fmt.Errorf("update progress for user %d document %d: %w", userID, documentID, err)
	}
	return &sess, &an, nil
}

// doUpdateProgress performs one read-compute-write transaction (internal helper)
func (db *DB) doUpdateProgress(ctx context.Context, userID, documentID int64, fn ProgressFunc) (models.Session, models.Analytics, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Session{}, models.Analytics{}, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	prevSession, err := getSession(ctx, tx, userID, documentID)
	if err != nil {
		return models.Session{}, models.Analytics{}, err
	}
	prevAnalytics, err := getAnalytics(ctx, tx, userID, documentID)
	if err != nil {
		return models.Session{}, models.Analytics{}, err
	}

	sess, an := fn(prevSession, prevAnalytics)
	sess.UserID, sess.DocumentID = userID, documentID
	an.UserID, an.DocumentID = userID, documentID

	if err := upsertSession(ctx, tx, &sess); err != nil {
		return models.Session{}, models.Analytics{}, err
	}
	if err := upsertAnalytics(ctx, tx, &an); err != nil {
		return models.Session{}, models.Analytics{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Session{}, models.Analytics{}, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return sess, an, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func getSession(ctx context.Context, q queryer, userID, documentID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM reading_sessions s
		WHERE s.user_id = ? AND s.document_id = ?`

	var s models.Session
	err := scanSession(q.QueryRowContext(ctx, query, userID, documentID), &s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return &s, nil
}

func getAnalytics(ctx context.Context, q queryer, userID, documentID int64) (*models.Analytics, error) {
	query := `SELECT ` + analyticsColumns + ` FROM reading_analytics a
		WHERE a.user_id = ? AND a.document_id = ?`

	var a models.Analytics
	err := scanAnalytics(q.QueryRowContext(ctx, query, userID, documentID), &a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read analytics: %w", err)
	}
	return &a, nil
}

func upsertSession(ctx context.Context, q queryer, s *models.Session) error {
	device, err := encodeJSON(s.Device)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO reading_sessions (
			user_id, document_id, position, progress, speed_wpm, time_spent,
			last_read_at, device, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, document_id) DO UPDATE SET
			position = EXCLUDED.position,
			progress = EXCLUDED.progress,
			speed_wpm = EXCLUDED.speed_wpm,
			time_spent = EXCLUDED.time_spent,
			last_read_at = EXCLUDED.last_read_at,
			device = EXCLUDED.device,
			updated_at = EXCLUDED.updated_at`,
		s.UserID, s.DocumentID, s.Position, s.Progress, s.SpeedWPM, s.TimeSpent,
		s.LastReadAt.UTC(), device, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func upsertAnalytics(ctx context.Context, q queryer, a *models.Analytics) error {
	if a.ReadingHours == nil {
		a.ReadingHours = []int{}
	}
	hours, err := encodeJSON(a.ReadingHours)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO reading_analytics (
			user_id, document_id, total_time_spent, completion_rate, avg_speed,
			engagement_score, reading_hours, sample_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, document_id) DO UPDATE SET
			total_time_spent = EXCLUDED.total_time_spent,
			completion_rate = EXCLUDED.completion_rate,
			avg_speed = EXCLUDED.avg_speed,
			engagement_score = EXCLUDED.engagement_score,
			reading_hours = EXCLUDED.reading_hours,
			sample_count = EXCLUDED.sample_count,
			updated_at = EXCLUDED.updated_at`,
		a.UserID, a.DocumentID, a.TotalTimeSpent, a.CompletionRate, a.AvgSpeed,
		a.EngagementScore, hours, a.SampleCount, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert analytics: %w", err)
	}
	return nil
}

// GetSession returns the session for a (user, document) pair or ErrNotFound.
func (db *DB) GetSession(ctx context.Context, userID, documentID int64) (*models.Session, error) {
	var s *models.Session
	err := db.guard(ctx, "get_session", func(ctx context.Context) error {
		var err error
		s, err = getSession(ctx, db.conn, userID, documentID)
		if err == nil && s == nil {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get session for user %d document %d: %w", userID, documentID, err)
	}
	return s, nil
}

// GetAnalytics returns the analytics for a (user, document) pair or ErrNotFound.
func (db *DB) GetAnalytics(ctx context.Context, userID, documentID int64) (*models.Analytics, error) {
	var a *models.Analytics
	err := db.guard(ctx, "get_analytics", func(ctx context.Context) error {
		var err error
		a, err = getAnalytics(ctx, db.conn, userID, documentID)
		if err == nil && a == nil {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get analytics for user %d document %d: %w", userID, documentID, err)
	}
	return a, nil
}
