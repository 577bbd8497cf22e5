// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Command lecternctl runs Lectern operations against the configured stores.
//
// The server holds DuckDB open for writing, so stop it (or point
// DUCKDB_PATH at a copy) before running commands that open the engine.
// "emit progress" with the NATS backend only publishes and is safe to run
// alongside the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/lectern/internal/app"
	"github.com/tomtom215/lectern/internal/cli"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lecternctl: load configuration: %v\n", err)
		os.Exit(1)
	}

	lc := app.LoggingConfig(&cfg.Logging)
	lc.Format = "console"
	if cfg.Logging.Level == "info" {
		lc.Level = "warn"
	}
	logging.Init(lc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cli.AppOpener{Config: cfg})
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
