// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/stacklok/leaderboard/pkg/api"
	"github.com/stacklok/leaderboard/pkg/config"
	"github.com/stacklok/leaderboard/pkg/identity"
	"github.com/stacklok/leaderboard/pkg/metrics"
	"github.com/stacklok/leaderboard/pkg/session"
	"github.com/stacklok/leaderboard/pkg/storage"
	"github.com/stacklok/leaderboard/pkg/templates"
)

// server is the wired application and the resources it must release.
type server struct {
	handler http.Handler
	closers []func(context.Context) error
}

// newServer builds every component from cfg. On error, anything already
// opened is closed.
func newServer(ctx context.Context, cfg *config.Config) (_ *server, retErr error) {
	srv := &server{}
	defer func() {
		if retErr != nil {
			srv.close(ctx)
		}
	}()

	store, err := storage.New(ctx, cfg.Storage())
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	srv.closers = append(srv.closers, store.Close)

	sessionStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if rs, ok := sessionStore.(*session.RedisStore); ok {
		srv.closers = append(srv.closers, func(context.Context) error { return rs.Close() })
	}

	idClient, err := identity.NewOIDCClient(cfg.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	reg, m := metrics.NewRegistry()

	srv.handler, err = api.NewRouter(api.RouterConfig{
		Identity:  idClient,
		Store:     store,
		Sessions:  session.NewManager(sessionStore, cfg.Session.CookieName),
		Templates: renderer,
		Metrics:   m,
		Gatherer:  reg,
		PublicURL: cfg.Server.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// newSessionStore creates the session backend selected by SESSION_BACKEND.
func newSessionStore(ctx context.Context, cfg *config.Config) (sessions.Store, error) {
	secret := []byte(cfg.SecretKey)

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rs, err := session.NewRedisStore(ctx, cfg.SessionRedis(), secret)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		rs.ApplyCookieOptions(cfg.CookieOptions())
		return rs, nil
	case config.SessionBackendCookie, "":
		return session.NewCookieStore(secret, cfg.CookieOptions()), nil
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Session.Backend)
	}
}

// close releases resources in reverse order of creation.
func (s *server) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			slog.Warn("failed to release resource", "error", err)
		}
	}
}
