// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/leaderboard/pkg/config"
	"github.com/stacklok/leaderboard/pkg/session"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey: "0123456789abcdef0123456789abcdef",
		OIDC: config.OIDCConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			Domain:       "example.us.auth0.com",
			Scopes:       []string{"openid", "profile", "email"},
		},
		Mongo: config.MongoConfig{Backend: "memory"},
		Session: config.SessionConfig{
			Backend:    config.SessionBackendCookie,
			CookieName: "session",
			MaxAge:     time.Hour,
		},
		Redis:  config.RedisConfig{KeyPrefix: "test:session:"},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 5000},
	}
}

func TestNewServer_CookieSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv, err := newServer(ctx, testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { srv.close(ctx) })

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome Guest")
}

func TestNewServer_RedisSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Session.Backend = config.SessionBackendRedis
	cfg.Session.SecureCookie = true
	cfg.Redis.Addr = mr.Addr()

	store, err := newSessionStore(ctx, cfg)
	require.NoError(t, err)
	rs, ok := store.(*session.RedisStore)
	require.True(t, ok)
	t.Cleanup(func() { _ = rs.Close() })
	assert.True(t, rs.Options.Secure)
	assert.Equal(t, 3600, rs.Options.MaxAge)

	srv, err := newServer(ctx, cfg)
	require.NoError(t, err)
	assert.Len(t, srv.closers, 2)
	srv.close(ctx)
}

func TestNewServer_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{
			name:   "unknown storage backend",
			modify: func(c *config.Config) { c.Mongo.Backend = "postgres" },
		},
		{
			name:   "unknown session backend",
			modify: func(c *config.Config) { c.Session.Backend = "memcached" },
		},
		{
			name: "redis unreachable",
			modify: func(c *config.Config) {
				c.Session.Backend = config.SessionBackendRedis
				c.Redis.Addr = "127.0.0.1:1"
			},
		},
		{
			name:   "missing issuer",
			modify: func(c *config.Config) { c.OIDC.Domain = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.modify(cfg)

			_, err := newServer(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}
