// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: reuses or generates X-Request-ID and seeds the logging context
    with request and correlation ids
  - PrometheusMetrics: request duration by method, chi route pattern and status,
    plus an in-flight gauge

Both are plain func(http.Handler) http.Handler values and compose with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests by route pattern (for example
/api/v1/users/{userID}/dashboard) rather than the raw path, so user ids do
not create new series. Requests that match no route are labeled "unmatched".
*/
package middleware
