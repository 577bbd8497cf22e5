// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/lectern/internal/api"
	"github.com/tomtom215/lectern/internal/eventprocessor"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/supervisor"
	"github.com/tomtom215/lectern/internal/supervisor/services"
)

const timeoutBody = `{"status":"error","error":{"code":"TIMEOUT","message":"request timed out"}}`

// Server is the supervised process: HTTP API, event pipeline and batch learner.
type Server struct {
	Tree    *supervisor.SupervisorTree
	Handler *api.Handler
	HTTP    *http.Server
	Events  *eventprocessor.Components
}

// NewServer builds the supervisor tree for a. The event pipeline is only
// constructed when events are enabled; the batch learner only when batch
// learning is enabled.
func NewServer(ctx context.Context, a *App, version string) (*Server, error) {
	cfg := a.Config

	handler, err := api.NewHandler(a.Coordinator, a.Engine)
	if err != nil {
		return nil, fmt.Errorf("create api handler: %w", err)
	}
	handler.SetVersion(version)
	handler.AddHealthCheck("database", a.DB.Ping)
	handler.AddHealthCheck("state", a.State.Ping)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}

	s := &Server{Tree: tree, Handler: handler}

	if cfg.Events.Enabled {
		wmLogger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("eventprocessor"))
		components, err := eventprocessor.NewComponents(ctx, EventsConfig(&cfg.Events), a.Coordinator, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create event components: %w", err)
		}
		s.Events = components
		handler.SetPublisher(components.Publisher)
		handler.AddHealthCheck("events", func(context.Context) error {
			if !components.IsRunning() {
				return eventprocessor.ErrRouterNotRunning
			}
			return nil
		})
		tree.AddMessagingService(services.NewEventComponentsService(components, cfg.Server.ShutdownTimeout, logging.Logger()))
	}

	if cfg.Batch.Enabled {
		tree.AddDataService(services.NewBatchService(a.Coordinator, BatchServiceConfig(&cfg.Batch), logging.Logger()))
	}

	router := api.NewRouter(handler, api.NewChiMiddleware(MiddlewareConfig(&cfg.API)))
	var root http.Handler = router.SetupChi()
	if cfg.API.RequestTimeout > 0 {
		root = http.TimeoutHandler(root, cfg.API.RequestTimeout, timeoutBody)
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	s.HTTP = &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(s.HTTP, addr, cfg.Server.ShutdownTimeout, logging.Logger()))

	return s, nil
}
