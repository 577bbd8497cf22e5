// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
)

// ProgressHandlerName is the router handler consuming progress events.
const ProgressHandlerName = "session-progress"

// Components bundles the transport, router, handler and publisher.
type Components struct {
	Transport *Transport
	Router    *Router
	Handler   *ProgressHandler
	Publisher *Publisher

	config Config
	logger watermill.LoggerAdapter

	mu      sync.Mutex
	started bool
	runDone chan error
}

// NewComponents connects the transport and wires the progress handler.
// The router is not started until Start is called.
func NewComponents(ctx context.Context, cfg Config, recorder ProgressRecorder, logger watermill.LoggerAdapter) (*Components, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Router.PoisonQueueTopic = cfg.PoisonTopic

	handler, err := NewProgressHandler(recorder, logger)
	if err != nil {
		return nil, err
	}

	transport, err := NewTransport(ctx, &cfg, logger)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(&cfg.Router, transport.Publisher, logger)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("create router: %w", err)
	}
	router.AddConsumerHandler(ProgressHandlerName, cfg.Topic, transport.Subscriber, handler.Handle)

	publisher, err := NewPublisher(transport.Publisher, cfg.Topic, logger)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	publisher.SetCircuitBreaker(NewCircuitBreaker(cfg.Breaker))

	return &Components{
		Transport: transport,
		Router:    router,
		Handler:   handler,
		Publisher: publisher,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Start runs the router in the background and returns once its handlers
// are subscribed.
func (c *Components) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("event components already started")
	}
	c.started = true
	done := make(chan error, 1)
	c.runDone = done
	c.mu.Unlock()

	go func() {
		err := c.Router.Run(ctx)
		if err != nil {
			c.logger.Error("Router error", err, nil)
		}
		done <- err
	}()

	select {
	case <-c.Router.Running():
	case err := <-done:
		if err == nil {
			err = errors.New("router stopped before running")
		}
		return fmt.Errorf("start router: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}

	c.logger.Info("Event components started", watermill.LogFields{
		"backend": string(c.config.Backend),
		"topic":   c.config.Topic,
	})
	return nil
}

// Shutdown stops publishing, drains the router and closes the transport.
func (c *Components) Shutdown(ctx context.Context) error {
	var errs []error

	if err := c.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := c.Router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}

	c.mu.Lock()
	done := c.runDone
	c.runDone = nil
	c.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if err := c.Transport.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close transport: %w", err))
	}
	return errors.Join(errs...)
}

// IsRunning reports whether the router is running.
func (c *Components) IsRunning() bool {
	return c.Router.IsRunning()
}
