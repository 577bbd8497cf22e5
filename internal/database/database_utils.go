// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/models"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Column lists shared by the select helpers. Queries alias documents as d,
// reading_sessions as s and reading_analytics as a.
const (
	documentColumns = `d.id, d.owner_id, d.title, d.status, d.reading_mode,
		d.themes, d.categories, d.complexity_level, d.estimated_words, d.created_at`

	sessionColumns = `s.user_id, s.document_id, s.position, s.progress, s.speed_wpm,
		s.time_spent, s.last_read_at, s.device, s.created_at, s.updated_at`

	analyticsColumns = `a.user_id, a.document_id, a.total_time_spent, a.completion_rate,
		a.avg_speed, a.engagement_score, a.reading_hours, a.sample_count,
		a.created_at, a.updated_at`
)

// encodeJSON marshals v for a JSON text column.
func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(data), nil
}

// decodeStrings decodes a JSON text list, returning an empty slice for nulls.
func decodeStrings(raw string) ([]string, error) {
	out := []string{}
	if raw == "" || raw == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode json column: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func decodeInts(raw string) ([]int, error) {
	out := []int{}
	if raw == "" || raw == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode json column: %w", err)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

// scanDocument scans documentColumns.
func scanDocument(row rowScanner, dest *models.Document) error {
	var status, mode, themes, categories, complexity string
	if err := row.Scan(&dest.ID, &dest.OwnerID, &dest.Title, &status, &mode,
		&themes, &categories, &complexity, &dest.Metadata.EstimatedWords, &dest.CreatedAt); err != nil {
		return err
	}
	return fillDocument(dest, status, mode, themes, categories, complexity)
}

// sessionTargets returns scan targets for sessionColumns. The device JSON is
// written to device and must be applied with applyDevice after Scan.
func sessionTargets(s *models.Session, device *string) []interface{} {
	return []interface{}{&s.UserID, &s.DocumentID, &s.Position, &s.Progress, &s.SpeedWPM,
		&s.TimeSpent, &s.LastReadAt, device, &s.CreatedAt, &s.UpdatedAt}
}

func applyDevice(s *models.Session, raw string) error {
	s.Device = models.DeviceInfo{}
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &s.Device); err != nil {
		return fmt.Errorf("session device: %w", err)
	}
	return nil
}

// analyticsTargets returns scan targets for analyticsColumns. The reading
// hours JSON is written to hours and must be applied with applyHours.
func analyticsTargets(a *models.Analytics, hours *string) []interface{} {
	return []interface{}{&a.UserID, &a.DocumentID, &a.TotalTimeSpent, &a.CompletionRate,
		&a.AvgSpeed, &a.EngagementScore, hours, &a.SampleCount, &a.CreatedAt, &a.UpdatedAt}
}

func applyHours(a *models.Analytics, raw string) error {
	hours, err := decodeInts(raw)
	if err != nil {
		return fmt.Errorf("analytics reading hours: %w", err)
	}
	a.ReadingHours = hours
	return nil
}

// scanSession scans sessionColumns.
func scanSession(row rowScanner, dest *models.Session) error {
	var device string
	if err := row.Scan(sessionTargets(dest, &device)...); err != nil {
		return err
	}
	return applyDevice(dest, device)
}

// scanAnalytics scans analyticsColumns.
func scanAnalytics(row rowScanner, dest *models.Analytics) error {
	var hours string
	if err := row.Scan(analyticsTargets(dest, &hours)...); err != nil {
		return err
	}
	return applyHours(dest, hours)
}

// scanSessionRecord scans sessionColumns followed by documentColumns.
func scanSessionRecord(row rowScanner, dest *models.SessionRecord) error {
	var device, status, mode, themes, categories, complexity string
	doc := &dest.Document
	targets := sessionTargets(&dest.Session, &device)
	targets = append(targets, &doc.ID, &doc.OwnerID, &doc.Title, &status, &mode,
		&themes, &categories, &complexity, &doc.Metadata.EstimatedWords, &doc.CreatedAt)
	if err := row.Scan(targets...); err != nil {
		return err
	}
	if err := applyDevice(&dest.Session, device); err != nil {
		return err
	}
	return fillDocument(doc, status, mode, themes, categories, complexity)
}

// scanAnalyticsRecord scans analyticsColumns followed by documentColumns.
func scanAnalyticsRecord(row rowScanner, dest *models.AnalyticsRecord) error {
	var hours, status, mode, themes, categories, complexity string
	doc := &dest.Document
	targets := analyticsTargets(&dest.Analytics, &hours)
	targets = append(targets, &doc.ID, &doc.OwnerID, &doc.Title, &status, &mode,
		&themes, &categories, &complexity, &doc.Metadata.EstimatedWords, &doc.CreatedAt)
	if err := row.Scan(targets...); err != nil {
		return err
	}
	if err := applyHours(&dest.Analytics, hours); err != nil {
		return err
	}
	return fillDocument(doc, status, mode, themes, categories, complexity)
}

func fillDocument(doc *models.Document, status, mode, themes, categories, complexity string) error {
	doc.Status = models.DocumentStatus(status)
	doc.ReadingMode = models.ReadingMode(mode)
	doc.Metadata.ComplexityLevel = models.Complexity(complexity)

	var err error
	if doc.Metadata.Themes, err = decodeStrings(themes); err != nil {
		return fmt.Errorf("document %d themes: %w", doc.ID, err)
	}
	if doc.Metadata.Categories, err = decodeStrings(categories); err != nil {
		return fmt.Errorf("document %d categories: %w", doc.ID, err)
	}
	return nil
}
