// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package supervisor provides process supervision for the Lectern server
using suture v4.

The tree has one root and three child supervisors:

	lectern (root)
	├── data-layer       batch learning service
	├── messaging-layer  progress event router (Watermill)
	└── api-layer        HTTP server

Each child restarts its own services with exponential backoff. Supervisor
events (restarts, backoff, timeouts) are logged through sutureslog into the
application's zerolog pipeline via logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddAPIService(httpSvc)
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

Service wrappers live in the services subpackage.
*/
package supervisor
