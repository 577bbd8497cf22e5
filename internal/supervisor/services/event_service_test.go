// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

type mockEventComponents struct {
	running     atomic.Bool
	starts      atomic.Int32
	shutdowns   atomic.Int32
	startErr    error
	shutdownErr error
	deadlineSet atomic.Bool
}

func (m *mockEventComponents) Start(context.Context) error {
	m.starts.Add(1)
	if m.startErr != nil {
		return m.startErr
	}
	m.running.Store(true)
	return nil
}

func (m *mockEventComponents) Shutdown(ctx context.Context) error {
	m.shutdowns.Add(1)
	if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
		m.deadlineSet.Store(true)
	}
	m.running.Store(false)
	return m.shutdownErr
}

func (m *mockEventComponents) IsRunning() bool {
	return m.running.Load()
}

func TestEventComponentsService(t *testing.T) {
	t.Parallel()

	t.Run("implements suture.Service", func(t *testing.T) {
		var _ suture.Service = (*EventComponentsService)(nil)
	})

	t.Run("starts and shuts down with fresh context", func(t *testing.T) {
		t.Parallel()
		mock := &mockEventComponents{}
		svc := NewEventComponentsService(mock, time.Second, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		deadline := time.Now().Add(time.Second)
		for !mock.IsRunning() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if !mock.IsRunning() {
			t.Fatal("components never started")
		}

		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if mock.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times, want 1", mock.shutdowns.Load())
		}
		if !mock.deadlineSet.Load() {
			t.Error("Shutdown context had no live deadline")
		}
	})

	t.Run("start failure is returned", func(t *testing.T) {
		t.Parallel()
		mock := &mockEventComponents{startErr: errors.New("stream missing")}
		svc := NewEventComponentsService(mock, 0, zerolog.Nop())

		err := svc.Serve(context.Background())
		if !errors.Is(err, mock.startErr) {
			t.Errorf("Serve() = %v, want wrapped start error", err)
		}
		if mock.shutdowns.Load() != 0 {
			t.Error("Shutdown called after failed start")
		}
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("default timeout = %v", svc.shutdownTimeout)
		}
	})

	t.Run("shutdown error is not fatal", func(t *testing.T) {
		t.Parallel()
		mock := &mockEventComponents{shutdownErr: errors.New("close transport")}
		svc := NewEventComponentsService(mock, time.Second, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want deadline exceeded", err)
		}
	})
}
