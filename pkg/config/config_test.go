// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/leaderboard/pkg/storage"
)

var baseEnviron = []string{
	"APP_SECRET_KEY=s3cret",
	"AUTH0_CLIENT_ID=client-id",
	"AUTH0_CLIENT_SECRET=client-secret",
	"AUTH0_DOMAIN=example.us.auth0.com",
	"MONGO_URI=mongodb://localhost:27017/leaderboard",
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func with(environ []string, extra ...string) []string {
	out := append([]string{}, environ...)
	return append(out, extra...)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadWithEnviron(writeEnvFile(t, ""), baseEnviron)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, "client-id", cfg.OIDC.ClientID)
	assert.Equal(t, []string{"openid", "profile", "email"}, cfg.OIDC.Scopes)
	assert.Equal(t, "mongodb", cfg.Mongo.Backend)
	assert.Equal(t, SessionBackendCookie, cfg.Session.Backend)
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.MaxAge)
	assert.False(t, cfg.Session.SecureCookie)
	assert.Equal(t, "leaderboard:session:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvFile(t *testing.T) {
	t.Parallel()

	path := writeEnvFile(t, `# local development
APP_SECRET_KEY=from-file
AUTH0_CLIENT_ID=file-client
AUTH0_CLIENT_SECRET="quoted secret"
AUTH0_DOMAIN=dev.eu.auth0.com
MONGO_URI=mongodb://localhost:27017/dev
PORT=8080
REDIS_DB=2
`)

	cfg, err := LoadWithEnviron(path, []string{"AUTH0_CLIENT_ID=from-process"})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.SecretKey)
	assert.Equal(t, "from-process", cfg.OIDC.ClientID, "process environment wins over the file")
	assert.Equal(t, "quoted secret", cfg.OIDC.ClientSecret)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_MissingNamedFile(t *testing.T) {
	t.Parallel()

	_, err := LoadWithEnviron(filepath.Join(t.TempDir(), "absent.env"), baseEnviron)
	require.Error(t, err)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Parallel()

	_, err := LoadWithEnviron(writeEnvFile(t, ""), []string{"AUTH0_CLIENT_ID=x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_SECRET_KEY")
	assert.Contains(t, err.Error(), "AUTH0_CLIENT_SECRET")
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Parallel()

	_, err := LoadWithEnviron(writeEnvFile(t, ""), with(baseEnviron, "SESSION_MAX_AGE=forever"))
	require.Error(t, err)
}

func TestOIDCConfig_Derivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        OIDCConfig
		wantIssuer string
		wantLogout string
	}{
		{
			name:       "from domain",
			cfg:        OIDCConfig{Domain: "example.us.auth0.com"},
			wantIssuer: "https://example.us.auth0.com/",
			wantLogout: "https://example.us.auth0.com/v2/logout",
		},
		{
			name:       "issuer override keeps domain logout",
			cfg:        OIDCConfig{Domain: "example.us.auth0.com", IssuerURL: "https://login.example.com/"},
			wantIssuer: "https://login.example.com/",
			wantLogout: "https://example.us.auth0.com/v2/logout",
		},
		{
			name:       "issuer only",
			cfg:        OIDCConfig{IssuerURL: "http://localhost:8080/oidc"},
			wantIssuer: "http://localhost:8080/oidc",
			wantLogout: "http://localhost:8080/oidc/v2/logout",
		},
		{
			name:       "explicit logout",
			cfg:        OIDCConfig{Domain: "example.us.auth0.com", LogoutURL: "https://example.com/bye"},
			wantIssuer: "https://example.us.auth0.com/",
			wantLogout: "https://example.com/bye",
		},
		{
			name: "nothing configured",
			cfg:  OIDCConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantIssuer, tt.cfg.Issuer())
			assert.Equal(t, tt.wantLogout, tt.cfg.LogoutEndpoint())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		extra   []string
		wantVar string
	}{
		{name: "valid", extra: nil},
		{name: "memory storage needs no uri", extra: []string{"STORAGE_BACKEND=memory", "MONGO_URI="}},
		{name: "redis sessions", extra: []string{"SESSION_BACKEND=redis", "REDIS_ADDR=localhost:6379"}},
		{name: "no provider", extra: []string{"AUTH0_DOMAIN="}, wantVar: "AUTH0_DOMAIN"},
		{name: "insecure issuer", extra: []string{"OIDC_ISSUER=http://idp.example.com/"}, wantVar: "OIDC_ISSUER"},
		{name: "scopes without openid", extra: []string{"OIDC_SCOPES=profile,email"}, wantVar: "OIDC_SCOPES"},
		{name: "insecure logout url", extra: []string{"OIDC_LOGOUT_URL=http://example.com/logout"}, wantVar: "OIDC_LOGOUT_URL"},
		{name: "mongodb without uri", extra: []string{"MONGO_URI="}, wantVar: "MONGO_URI"},
		{name: "mongodb uri without database", extra: []string{"MONGO_URI=mongodb://localhost:27017"}, wantVar: "MONGO_URI"},
		{name: "uri database overridden", extra: []string{"MONGO_URI=mongodb://localhost:27017", "MONGO_DATABASE=scores"}},
		{name: "unknown storage", extra: []string{"STORAGE_BACKEND=sqlite"}, wantVar: "STORAGE_BACKEND"},
		{name: "redis without addr", extra: []string{"SESSION_BACKEND=redis"}, wantVar: "REDIS_ADDR"},
		{name: "unknown session backend", extra: []string{"SESSION_BACKEND=memcached"}, wantVar: "SESSION_BACKEND"},
		{name: "zero max age", extra: []string{"SESSION_MAX_AGE=0s"}, wantVar: "SESSION_MAX_AGE"},
		{name: "relative public url", extra: []string{"PUBLIC_URL=/app"}, wantVar: "PUBLIC_URL"},
		{name: "public url", extra: []string{"PUBLIC_URL=https://leaderboard.example.com"}},
		{name: "port out of range", extra: []string{"PORT=70000"}, wantVar: "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadWithEnviron(writeEnvFile(t, ""), with(baseEnviron, tt.extra...))
			require.NoError(t, err)

			err = cfg.Validate()
			if tt.wantVar == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.wantVar, fieldErr.Variable)
		})
	}
}

func TestConfig_Components(t *testing.T) {
	t.Parallel()

	cfg, err := LoadWithEnviron(writeEnvFile(t, ""), with(baseEnviron,
		"SESSION_SECURE_COOKIE=true",
		"SESSION_MAX_AGE=2h",
		"REDIS_ADDR=redis:6379",
		"REDIS_PASSWORD=pw",
	))
	require.NoError(t, err)

	id := cfg.Identity()
	assert.Equal(t, "https://example.us.auth0.com/", id.Issuer)
	assert.Equal(t, "client-id", id.ClientID)
	assert.Equal(t, "https://example.us.auth0.com/v2/logout", id.LogoutEndpoint)

	st := cfg.Storage()
	assert.Equal(t, storage.BackendMongoDB, st.Backend)
	assert.Equal(t, "mongodb://localhost:27017/leaderboard", st.Mongo.URI)

	rc := cfg.SessionRedis()
	assert.Equal(t, "redis:6379", rc.Addr)
	assert.Equal(t, "pw", rc.Password)
	assert.Equal(t, "leaderboard:session:", rc.KeyPrefix)

	co := cfg.CookieOptions()
	assert.True(t, co.Secure)
	assert.Equal(t, 2*time.Hour, co.MaxAge)
}
