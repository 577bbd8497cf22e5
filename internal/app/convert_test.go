// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package app

import (
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/behavior"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/eventprocessor"
)

func TestBehaviorConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*config.EngineConfig)
		wantErr  bool
		wantZone string
	}{
		{"defaults", func(*config.EngineConfig) {}, false, "UTC"},
		{"custom zone", func(e *config.EngineConfig) { e.Timezone = "Europe/Berlin" }, false, "Europe/Berlin"},
		{"unknown zone", func(e *config.EngineConfig) { e.Timezone = "Mars/Olympus" }, true, ""},
		{"unknown averaging", func(e *config.EngineConfig) { e.SpeedAveraging = "median" }, true, ""},
		{"zero window", func(e *config.EngineConfig) { e.LevelWindow = 0 }, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ec := config.Defaults().Engine
			tt.mutate(&ec)

			bc, err := BehaviorConfig(&ec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BehaviorConfig: %v", err)
			}
			if bc.Location.String() != tt.wantZone {
				t.Errorf("Location = %s, want %s", bc.Location, tt.wantZone)
			}
			if bc.SpeedAveraging != behavior.SpeedBlend {
				t.Errorf("SpeedAveraging = %q", bc.SpeedAveraging)
			}
			if bc.PatternWindow != 90*behavior.Day {
				t.Errorf("PatternWindow = %v", bc.PatternWindow)
			}
		})
	}
}

func TestLearningConfig(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Engine.CommitRetries = 7
	cfg.Batch.Concurrency = 9
	cfg.Batch.UsersPerSecond = 2.5
	cfg.Batch.ActiveWindow = 48 * time.Hour

	lc, err := LearningConfig(cfg)
	if err != nil {
		t.Fatalf("LearningConfig: %v", err)
	}
	if lc.CommitRetries != 7 || lc.BatchConcurrency != 9 || lc.BatchUsersPerSecond != 2.5 {
		t.Errorf("unexpected learning config: %+v", lc)
	}
	if lc.ActiveWindow != 48*time.Hour {
		t.Errorf("ActiveWindow = %v", lc.ActiveWindow)
	}
	if lc.StoreTimeout != cfg.Engine.StoreTimeout {
		t.Errorf("StoreTimeout = %v", lc.StoreTimeout)
	}
}

func TestRecommendConfig(t *testing.T) {
	t.Parallel()
	rc := config.Defaults().Recommend
	rc.MinScore = 0.5
	rc.DefaultK = 3
	rc.CacheEnabled = false

	got := RecommendConfig(&rc)
	if got.MinScore != 0.5 || got.Limits.DefaultK != 3 || got.Cache.Enabled {
		t.Errorf("overlay not applied: %+v", got)
	}
	if got.Weights.Interest != 0.40 {
		t.Errorf("weights changed: %+v", got.Weights)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("converted config invalid: %v", err)
	}
}

func TestEventsConfig(t *testing.T) {
	t.Parallel()
	ev := config.Defaults().Events
	ev.Backend = "nats"
	ev.RetryCount = 2
	ev.DedupWindow = 0

	ec := EventsConfig(&ev)
	if ec.Backend != eventprocessor.BackendNATS {
		t.Errorf("Backend = %q", ec.Backend)
	}
	if ec.Router.RetryMaxRetries != 2 || ec.Router.DedupWindow != 0 {
		t.Errorf("router config = %+v", ec.Router)
	}
	if ec.Router.PoisonQueueTopic != ev.PoisonTopic || ec.NATS.StreamName != ev.StreamName {
		t.Errorf("topic wiring lost: %+v", ec)
	}
	if err := ec.Validate(); err != nil {
		t.Errorf("converted config invalid: %v", err)
	}
	if ec.NATS.Embedded != nil {
		t.Error("Embedded set without nats_embedded")
	}
}

func TestEventsConfig_Embedded(t *testing.T) {
	t.Parallel()
	ev := config.Defaults().Events
	ev.Backend = "nats"
	ev.NATSURL = ""
	ev.NATSEmbedded = true
	ev.NATSStoreDir = "/tmp/lectern-nats"

	ec := EventsConfig(&ev)
	if ec.NATS.Embedded == nil {
		t.Fatal("Embedded = nil with nats_embedded")
	}
	if ec.NATS.Embedded.StoreDir != ev.NATSStoreDir || ec.NATS.Embedded.Port != -1 {
		t.Errorf("Embedded = %+v", *ec.NATS.Embedded)
	}
	if err := ec.Validate(); err != nil {
		t.Errorf("converted config invalid: %v", err)
	}
}

func TestMiddlewareAndBatchConfig(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.API.CORSOrigins = []string{"https://reader.example"}
	cfg.API.RateLimitDisabled = true

	mc := MiddlewareConfig(&cfg.API)
	if len(mc.CORSAllowedOrigins) != 1 || !mc.RateLimitDisabled {
		t.Errorf("middleware config = %+v", mc)
	}
	if len(mc.CORSAllowedMethods) == 0 {
		t.Error("default methods dropped")
	}

	bc := BatchServiceConfig(&cfg.Batch)
	if bc.Interval != cfg.Batch.Interval || bc.Timeout != cfg.Batch.Timeout {
		t.Errorf("batch config = %+v", bc)
	}

	lc := LoggingConfig(&cfg.Logging)
	if lc.Level != "info" || !lc.Timestamp {
		t.Errorf("logging config = %+v", lc)
	}
}
