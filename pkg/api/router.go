// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api contains the HTTP handlers and server for the leaderboard web app.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	apierrors "github.com/stacklok/leaderboard/pkg/api/errors"
	"github.com/stacklok/leaderboard/pkg/identity"
	"github.com/stacklok/leaderboard/pkg/metrics"
	"github.com/stacklok/leaderboard/pkg/session"
	"github.com/stacklok/leaderboard/pkg/storage"
	"github.com/stacklok/leaderboard/pkg/templates"
)

// RouterConfig holds the components the handlers depend on.
type RouterConfig struct {
	Identity  identity.Client
	Store     storage.Store
	Sessions  *session.Manager
	Templates *templates.Renderer
	Metrics   *metrics.Metrics
	// Gatherer is exposed on /metrics. Optional.
	Gatherer prometheus.Gatherer
	// PublicURL is the external base URL. When empty it is derived per request.
	PublicURL string
}

func (c *RouterConfig) validate() error {
	var errs []error
	if c.Identity == nil {
		errs = append(errs, errors.New("identity client is required"))
	}
	if c.Store == nil {
		errs = append(errs, errors.New("store is required"))
	}
	if c.Sessions == nil {
		errs = append(errs, errors.New("session manager is required"))
	}
	if c.Templates == nil {
		errs = append(errs, errors.New("templates are required"))
	}
	if c.Metrics == nil {
		errs = append(errs, errors.New("metrics are required"))
	}
	return errors.Join(errs...)
}

// NewRouter builds the application router.
//
// Session-aware pages sit behind the session middleware; /health and
// /metrics do not touch sessions.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	routes := &webRoutes{
		identity:  cfg.Identity,
		store:     cfg.Store,
		templates: cfg.Templates,
		metrics:   cfg.Metrics,
		publicURL: cfg.PublicURL,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		cfg.Metrics.Middleware,
		middleware.Timeout(middlewareTimeout),
		requestBodySizeLimitMiddleware(maxRequestBodySize),
	)

	r.Mount("/health", HealthcheckRouter(cfg.Store))
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.Middleware)

		r.Get("/", apierrors.ErrorHandler(routes.home))
		r.Get("/login", apierrors.ErrorHandler(routes.login))
		r.Get("/callback", apierrors.ErrorHandler(routes.callback))
		r.Post("/callback", apierrors.ErrorHandler(routes.callback))
		r.Get("/logout", apierrors.ErrorHandler(routes.logout))
		r.Get("/adduser", apierrors.ErrorHandler(routes.addUser))
		r.Get("/addleaderboard", apierrors.ErrorHandler(routes.leaderboardForm))
		r.Post("/addleaderboard", apierrors.ErrorHandler(routes.addLeaderboardEntry))
	})

	return r, nil
}

// webRoutes implements the browser-facing pages.
type webRoutes struct {
	identity  identity.Client
	store     storage.Store
	templates *templates.Renderer
	metrics   *metrics.Metrics
	publicURL string
}
