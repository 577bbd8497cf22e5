// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/lectern/internal/middleware"
)

// Router builds the chi handler tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for h. A nil mw uses default middleware settings.
func NewRouter(h *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: h, chiMiddleware: mw}
}

// SetupChi returns the complete HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/documents/{documentID}/progress", router.handler.RecordProgress)
			r.Post("/learning-cycle", router.handler.RunLearningCycle)
			r.Get("/insights", router.handler.Insights)
			r.Get("/recommendations", router.handler.Recommendations)
			r.Get("/patterns", router.handler.Patterns)
			r.Get("/dashboard", router.handler.Dashboard)
			r.Get("/profile", router.handler.GetProfile)
			r.Put("/profile", router.handler.PutProfile)
			r.Post("/bookmarks/{documentID}", router.handler.AddBookmark)
			r.Delete("/bookmarks/{documentID}", router.handler.RemoveBookmark)
		})

		r.Put("/documents/{documentID}", router.handler.PutDocument)
		r.Put("/similarities", router.handler.PutSimilarity)
	})

	return r
}
