// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package services provides suture.Service wrappers for Lectern components.

Each wrapper translates a component lifecycle (Start/Shutdown, ListenAndServe,
ticker loops) into suture's context-aware Serve pattern and implements
fmt.Stringer so the supervisor can name it in log output.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Falls back to Close when draining exceeds the timeout

Event Components (EventComponentsService):
  - Wraps eventprocessor.Components (Watermill router and transport)
  - Shutdown runs on a fresh context after cancellation

Batch Learning (BatchService):
  - Runs a learning cycle for every active user on an interval
  - Failed passes are logged and retried on the next tick

# Usage

	tree.AddAPIService(services.NewHTTPServerService(srv, addr, 10*time.Second, logger))
	tree.AddMessagingService(services.NewEventComponentsService(components, 10*time.Second, logger))
	tree.AddDataService(services.NewBatchService(coordinator, batchCfg, logger))
*/
package services
