// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/lectern/internal/models"
)

type fakeRecorder struct {
	mu    sync.Mutex
	calls []models.SessionUpdate
	err   func(call int) error
}

func (f *fakeRecorder) RecordSessionProgress(_ context.Context, u models.SessionUpdate) (*models.AnalyticsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, u)
	if f.err != nil {
		if err := f.err(len(f.calls)); err != nil {
			return nil, err
		}
	}
	return &models.AnalyticsSnapshot{}, nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *failingPublisher) Publish(string, ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return errors.New("broker unavailable")
}

func (p *failingPublisher) Close() error { return nil }

type capturingPublisher struct {
	mu   sync.Mutex
	msgs map[string][]*message.Message
}

func (p *capturingPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.msgs == nil {
		p.msgs = make(map[string][]*message.Message)
	}
	p.msgs[topic] = append(p.msgs[topic], msgs...)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func validUpdate() models.SessionUpdate {
	return models.SessionUpdate{
		UserID:     7,
		DocumentID: 42,
		Position:   300,
		Progress:   25,
		TimeDelta:  90,
		SpeedWPM:   240,
		ReadAt:     time.Date(2026, 3, 12, 8, 30, 0, 0, time.UTC),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Subscribers = 1
	cfg.Router.CloseTimeout = 2 * time.Second
	cfg.Router.RetryMaxRetries = 1
	cfg.Router.RetryInitialInterval = time.Millisecond
	cfg.Router.RetryMaxInterval = 5 * time.Millisecond
	return cfg
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
