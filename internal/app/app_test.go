// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Database.Path = ":memory:"
	cfg.State.InMemory = true
	cfg.API.RateLimitDisabled = true
	cfg.Server.Port = 0
	cfg.Batch.RunOnStartup = false
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return a
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNew_RejectsBadEngineConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.Timezone = "Nowhere/Land"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected timezone error")
	}
}

func TestApp_EndToEnd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:          1,
		OwnerID:     99,
		Title:       "Field Notes",
		Status:      models.DocumentCompleted,
		ReadingMode: models.ModeDirect,
		Metadata: models.DocumentMetadata{
			Themes:         []string{"nature"},
			EstimatedWords: 1200,
		},
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	if err := a.Coordinator.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	snap, err := a.Coordinator.RecordSessionProgress(ctx, models.SessionUpdate{
		UserID:     7,
		DocumentID: 1,
		Position:   100,
		Progress:   40,
		TimeDelta:  120,
		SpeedWPM:   230,
	})
	if err != nil {
		t.Fatalf("RecordSessionProgress: %v", err)
	}
	if !snap.FirstContact {
		t.Error("first update should create analytics")
	}

	if _, err := a.Coordinator.RunLearningCycle(ctx, 7); err != nil {
		t.Fatalf("RunLearningCycle: %v", err)
	}

	resp, err := a.Engine.Recommend(ctx, recommend.Request{UserID: 7, Mode: recommend.ModeDiscovery})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp == nil {
		t.Fatal("nil response")
	}
}

func TestNewServer_Wiring(t *testing.T) {
	tests := []struct {
		name       string
		events     bool
		wantEvents bool
	}{
		{"events enabled", true, true},
		{"events disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			a.Config.Events.Enabled = tt.events

			srv, err := NewServer(context.Background(), a, "test")
			if err != nil {
				t.Fatalf("NewServer: %v", err)
			}
			if (srv.Events != nil) != tt.wantEvents {
				t.Errorf("Events set = %v, want %v", srv.Events != nil, tt.wantEvents)
			}
			if srv.Events != nil {
				t.Cleanup(func() { _ = srv.Events.Shutdown(context.Background()) })
			}

			rec := httptest.NewRecorder()
			srv.HTTP.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("live status = %d", rec.Code)
			}
		})
	}
}
