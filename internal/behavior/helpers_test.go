// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"math"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

var testNow = time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func doc(id int64, themes, categories []string) models.Document {
	return models.Document{
		ID:          id,
		Status:      models.DocumentCompleted,
		ReadingMode: models.ModeDirect,
		Metadata: models.DocumentMetadata{
			Themes:     themes,
			Categories: categories,
		},
		CreatedAt: testNow.AddDate(0, 0, -30),
	}
}

func sessionAt(d models.Document, at time.Time, progress, wpm float64, spent int64) models.SessionRecord {
	return models.SessionRecord{
		Session: models.Session{
			UserID:     1,
			DocumentID: d.ID,
			Progress:   progress,
			SpeedWPM:   wpm,
			TimeSpent:  spent,
			LastReadAt: at,
		},
		Document: d,
	}
}

func analyticsFor(d models.Document, engagement, completion float64, created time.Time) models.AnalyticsRecord {
	return models.AnalyticsRecord{
		Analytics: models.Analytics{
			UserID:          1,
			DocumentID:      d.ID,
			EngagementScore: engagement,
			CompletionRate:  completion,
			CreatedAt:       created,
			UpdatedAt:       created,
		},
		Document: d,
	}
}

func sessionsOnly(recs []models.SessionRecord) []models.Session {
	out := make([]models.Session, len(recs))
	for i := range recs {
		out[i] = recs[i].Session
	}
	return out
}
