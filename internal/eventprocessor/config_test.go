// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultRouterConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultRouterConfig()

	if cfg.CloseTimeout != 30*time.Second {
		t.Errorf("CloseTimeout = %v, want %v", cfg.CloseTimeout, 30*time.Second)
	}
	if cfg.RetryMaxRetries != 5 {
		t.Errorf("RetryMaxRetries = %d, want 5", cfg.RetryMaxRetries)
	}
	if cfg.RetryMultiplier != 2.0 {
		t.Errorf("RetryMultiplier = %f, want 2.0", cfg.RetryMultiplier)
	}
	if cfg.PoisonQueueTopic != "reading.progress.poison" {
		t.Errorf("PoisonQueueTopic = %q", cfg.PoisonQueueTopic)
	}
	if cfg.DedupWindow != 10*time.Minute {
		t.Errorf("DedupWindow = %v, want 10m", cfg.DedupWindow)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want memory", cfg.Backend)
	}
	if cfg.PoisonTopic != cfg.Router.PoisonQueueTopic {
		t.Errorf("PoisonTopic = %q, want %q", cfg.PoisonTopic, cfg.Router.PoisonQueueTopic)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "kafka" }},
		{"empty topic", func(c *Config) { c.Topic = "" }},
		{"poison equals topic", func(c *Config) { c.PoisonTopic = c.Topic }},
		{"zero subscribers", func(c *Config) { c.Subscribers = 0 }},
		{"negative retries", func(c *Config) { c.Router.RetryMaxRetries = -1 }},
		{"nats without url", func(c *Config) {
			c.Backend = BackendNATS
			c.NATS.URL = ""
		}},
		{"nats stream with dot", func(c *Config) {
			c.Backend = BackendNATS
			c.NATS.StreamName = "reading.progress"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_ValidateNATS(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Backend = BackendNATS
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
