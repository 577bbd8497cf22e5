// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package api provides the HTTP surface of the reading analytics service.

Routes are served by chi and grouped under /api/v1:

	GET    /api/v1/health                                        store pings
	GET    /api/v1/health/live                                   liveness
	POST   /api/v1/users/{userID}/documents/{documentID}/progress   record progress (?async=true queues it)
	POST   /api/v1/users/{userID}/learning-cycle                 run a learning cycle
	GET    /api/v1/users/{userID}/insights                       read-only insights
	GET    /api/v1/users/{userID}/recommendations                ?mode=&limit=&minutes=
	GET    /api/v1/users/{userID}/patterns                       pattern report
	GET    /api/v1/users/{userID}/dashboard                      dashboard summary
	GET    /api/v1/users/{userID}/profile                        stored profile
	PUT    /api/v1/users/{userID}/profile                        explicit profile edit
	POST   /api/v1/users/{userID}/bookmarks/{documentID}         add bookmark
	DELETE /api/v1/users/{userID}/bookmarks/{documentID}         remove bookmark
	PUT    /api/v1/documents/{documentID}                        catalogue upsert
	PUT    /api/v1/similarities                                  similarity upsert
	GET    /metrics                                              prometheus

Every JSON body uses models.APIResponse. Read endpoints whose computation
fails in storage answer 200 with status "degraded" and a neutral payload;
the failure is logged. Validation failures answer 400 with code
VALIDATION_ERROR.

Middleware order: request id, panic recovery, CORS, rate limit, security
headers, prometheus.
*/
package api
