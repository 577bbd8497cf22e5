// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package main is the entry point for the Lectern server.
//
// Lectern tracks reading sessions, learns reader behavior (patterns,
// interests, reading level) and serves personalized, discovery and
// time-budgeted recommendations over HTTP.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml, environment (Koanf v2)
//  2. Stores: DuckDB for documents, sessions and analytics; Badger for
//     versioned profile and pattern state
//  3. Engine: learning coordinator and recommendation engine
//  4. Supervisor tree: HTTP API, progress event router, batch learner
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the
// HTTP server (draining for server.shutdown_timeout), shuts down the event
// router and transport, and the stores are closed last.
//
// # Example Usage
//
//	export DUCKDB_PATH=/var/lib/lectern/lectern.duckdb
//	export STATE_PATH=/var/lib/lectern/state
//	export EVENTS_BACKEND=nats
//	export NATS_URL=nats://nats:4222
//	./lectern-server
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/lectern/internal/app"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(app.LoggingConfig(&cfg.Logging))

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("state_path", cfg.State.Path).
		Bool("events", cfg.Events.Enabled).
		Str("events_backend", cfg.Events.Backend).
		Bool("batch", cfg.Batch.Enabled).
		Msg("Starting Lectern")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Server stopped")
}

func run(cfg *config.Config) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logging.Error().Err(cerr).Msg("Error closing stores")
			err = errors.Join(err, cerr)
		}
	}()

	srv, err := app.NewServer(ctx, a, version)
	if err != nil {
		return err
	}

	if err := srv.Tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if report, rerr := srv.Tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	return nil
}
