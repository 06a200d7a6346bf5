// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the server configuration from the environment.
//
// Values come from process environment variables, optionally seeded from a
// dotenv file. A variable set in the process always wins over the file.
// The resulting *Config is built once at startup and treated as read-only.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/stacklok/leaderboard/pkg/identity"
	"github.com/stacklok/leaderboard/pkg/session"
	"github.com/stacklok/leaderboard/pkg/storage"
)

// Session backends.
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

// Config is the complete server configuration.
type Config struct {
	// SecretKey signs session cookies.
	SecretKey string `env:"APP_SECRET_KEY,required,notEmpty"`

	OIDC    OIDCConfig
	Mongo   MongoConfig
	Session SessionConfig
	Redis   RedisConfig `envPrefix:"REDIS_"`
	Server  ServerConfig
}

// OIDCConfig configures the identity provider.
type OIDCConfig struct {
	ClientID     string `env:"AUTH0_CLIENT_ID,required,notEmpty"`
	ClientSecret string `env:"AUTH0_CLIENT_SECRET,required,notEmpty"`
	// Domain is the Auth0 tenant domain, e.g. example.us.auth0.com.
	Domain string `env:"AUTH0_DOMAIN"`
	// IssuerURL overrides the issuer derived from Domain.
	IssuerURL string `env:"OIDC_ISSUER"`
	// LogoutURL overrides the logout endpoint derived from Domain.
	LogoutURL string   `env:"OIDC_LOGOUT_URL"`
	Scopes    []string `env:"OIDC_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`
}

// MongoConfig configures document storage.
type MongoConfig struct {
	Backend  string `env:"STORAGE_BACKEND" envDefault:"mongodb"`
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE"`
}

// SessionConfig configures the session cookie and its backend.
type SessionConfig struct {
	Backend      string        `env:"SESSION_BACKEND" envDefault:"cookie"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"session"`
	MaxAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	SecureCookie bool          `env:"SESSION_SECURE_COOKIE"`
}

// RedisConfig configures the Redis session backend.
type RedisConfig struct {
	Addr      string `env:"ADDR"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"leaderboard:session:"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// PublicURL is the externally visible base URL. When empty it is derived
	// from each request.
	PublicURL string `env:"PUBLIC_URL"`
	Host      string `env:"HOST" envDefault:"0.0.0.0"`
	Port      int    `env:"PORT" envDefault:"5000"`
}

// Issuer returns the OIDC issuer URL.
func (c *OIDCConfig) Issuer() string {
	if c.IssuerURL != "" {
		return c.IssuerURL
	}
	if c.Domain == "" {
		return ""
	}
	return "https://" + c.Domain + "/"
}

// LogoutEndpoint returns the provider's logout URL without query parameters.
func (c *OIDCConfig) LogoutEndpoint() string {
	if c.LogoutURL != "" {
		return c.LogoutURL
	}
	if c.Domain != "" {
		return "https://" + c.Domain + "/v2/logout"
	}
	if issuer := c.Issuer(); issuer != "" {
		return strings.TrimSuffix(issuer, "/") + "/v2/logout"
	}
	return ""
}

// Identity returns the identity client configuration.
func (c *Config) Identity() *identity.Config {
	return &identity.Config{
		Issuer:         c.OIDC.Issuer(),
		ClientID:       c.OIDC.ClientID,
		ClientSecret:   c.OIDC.ClientSecret,
		Scopes:         c.OIDC.Scopes,
		LogoutEndpoint: c.OIDC.LogoutEndpoint(),
	}
}

// Storage returns the storage configuration.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Backend: storage.Backend(c.Mongo.Backend),
		Mongo: storage.MongoConfig{
			URI:      c.Mongo.URI,
			Database: c.Mongo.Database,
		},
	}
}

// SessionRedis returns the Redis session store configuration.
func (c *Config) SessionRedis() session.RedisConfig {
	return session.RedisConfig{
		Addr:      c.Redis.Addr,
		Password:  c.Redis.Password,
		DB:        c.Redis.DB,
		KeyPrefix: c.Redis.KeyPrefix,
	}
}

// CookieOptions returns the session cookie options.
func (c *Config) CookieOptions() session.CookieOptions {
	return session.CookieOptions{
		MaxAge: c.Session.MaxAge,
		Secure: c.Session.SecureCookie,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
