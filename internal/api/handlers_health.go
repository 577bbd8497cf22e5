// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 2 * time.Second

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status     string          `json:"status"`
	Version    string          `json:"version"`
	Components map[string]bool `json:"components"`
	Uptime     float64         `json:"uptime_seconds"`
}

// Health pings every registered dependency. Any failure makes the
// overall status "degraded"; the response is still 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	health := HealthStatus{
		Status:     "healthy",
		Version:    h.version,
		Components: make(map[string]bool, len(h.checks)),
		Uptime:     time.Since(h.startTime).Seconds(),
	}

	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.Check(ctx)
		cancel()
		health.Components[c.Name] = err == nil
		if err != nil {
			health.Status = "degraded"
		}
	}

	respondSuccess(w, http.StatusOK, health, start)
}

// HealthLive reports process liveness without touching dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}
