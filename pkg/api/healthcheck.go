// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthcheckTimeout = 5 * time.Second

// Pinger is implemented by backends whose reachability determines health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthcheckRouter sets up healthcheck route.
func HealthcheckRouter(backend Pinger) http.Handler {
	routes := &healthcheckRoutes{backend: backend}
	r := chi.NewRouter()
	r.Get("/", routes.getHealthcheck)
	return r
}

type healthcheckRoutes struct {
	backend Pinger
}

// getHealthcheck responds 204 when the storage backend answers a ping and 503 otherwise.
func (h *healthcheckRoutes) getHealthcheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
