// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/lectern/internal/app"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/eventprocessor"
	"github.com/tomtom215/lectern/internal/learning"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
)

// AppOpener opens the stores named by a loaded configuration.
type AppOpener struct {
	Config *config.Config
}

// appEngine joins the coordinator and the recommendation engine.
type appEngine struct {
	*learning.Coordinator
	recommender *recommend.Engine
}

func (e appEngine) Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	return e.recommender.Recommend(ctx, req)
}

// OpenEngine implements Opener.
func (o AppOpener) OpenEngine(context.Context) (Engine, func() error, error) {
	a, err := app.New(o.Config)
	if err != nil {
		return nil, nil, err
	}
	return appEngine{Coordinator: a.Coordinator, recommender: a.Engine}, a.Close, nil
}

// OpenEmitter implements Opener. An external NATS backend is published to;
// every other configuration, the embedded server included, applies the
// update in process.
func (o AppOpener) OpenEmitter(ctx context.Context) (Emitter, func() error, error) {
	ev := &o.Config.Events
	if ev.Enabled && !ev.NATSEmbedded && eventprocessor.Backend(ev.Backend) == eventprocessor.BackendNATS {
		return o.openPublisher(ctx)
	}
	a, err := app.New(o.Config)
	if err != nil {
		return nil, nil, err
	}
	return directEmitter{recorder: a.Coordinator}, a.Close, nil
}

func (o AppOpener) openPublisher(ctx context.Context) (Emitter, func() error, error) {
	ec := app.EventsConfig(&o.Config.Events)
	if err := ec.Validate(); err != nil {
		return nil, nil, err
	}
	wmLogger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("lecternctl"))

	transport, err := eventprocessor.NewTransport(ctx, &ec, wmLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect event transport: %w", err)
	}
	pub, err := eventprocessor.NewPublisher(transport.Publisher, ec.Topic, wmLogger)
	if err != nil {
		return nil, nil, errors.Join(err, transport.Close())
	}
	closeFn := func() error {
		return errors.Join(pub.Close(), transport.Close())
	}
	return publisherEmitter{pub: pub}, closeFn, nil
}

// publisherEmitter publishes updates for a running server to consume.
type publisherEmitter struct {
	pub *eventprocessor.Publisher
}

func (p publisherEmitter) EmitProgress(ctx context.Context, u models.SessionUpdate) (string, error) {
	return p.pub.PublishProgress(ctx, u)
}

// directEmitter applies updates through the coordinator.
type directEmitter struct {
	recorder interface {
		RecordSessionProgress(ctx context.Context, u models.SessionUpdate) (*models.AnalyticsSnapshot, error)
	}
}

func (d directEmitter) EmitProgress(ctx context.Context, u models.SessionUpdate) (string, error) {
	if _, err := d.recorder.RecordSessionProgress(ctx, u); err != nil {
		return "", err
	}
	return "", nil
}
