// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	neturl "net/url"
	"slices"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/stacklok/leaderboard/pkg/networking"
	"github.com/stacklok/leaderboard/pkg/storage"
)

// Validate checks cross-field constraints that env tags cannot express.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(variable string, err error) {
		errs = append(errs, &FieldError{Variable: variable, Err: err})
	}

	if issuer := c.OIDC.Issuer(); issuer == "" {
		add("AUTH0_DOMAIN", errors.New("either AUTH0_DOMAIN or OIDC_ISSUER is required"))
	} else {
		if err := networking.ValidateEndpointURL(issuer); err != nil {
			add("OIDC_ISSUER", err)
		}
		if err := networking.ValidateEndpointURL(c.OIDC.LogoutEndpoint()); err != nil {
			add("OIDC_LOGOUT_URL", err)
		}
	}
	if !slices.Contains(c.OIDC.Scopes, oidc.ScopeOpenID) {
		add("OIDC_SCOPES", errors.New("must include openid"))
	}

	switch storage.Backend(c.Mongo.Backend) {
	case storage.BackendMongoDB:
		if c.Mongo.URI == "" {
			add("MONGO_URI", errors.New("required when STORAGE_BACKEND is mongodb"))
		} else if _, err := c.Storage().Mongo.DatabaseName(); err != nil {
			add("MONGO_URI", err)
		}
	case storage.BackendMemory:
	default:
		add("STORAGE_BACKEND", fmt.Errorf("unknown backend %q", c.Mongo.Backend))
	}

	switch c.Session.Backend {
	case SessionBackendCookie:
	case SessionBackendRedis:
		if c.Redis.Addr == "" {
			add("REDIS_ADDR", errors.New("required when SESSION_BACKEND is redis"))
		}
	default:
		add("SESSION_BACKEND", fmt.Errorf("unknown backend %q", c.Session.Backend))
	}

	if c.Session.CookieName == "" {
		add("SESSION_COOKIE_NAME", errors.New("must not be empty"))
	}
	if c.Session.MaxAge <= 0 {
		add("SESSION_MAX_AGE", errors.New("must be positive"))
	}

	if c.Server.PublicURL != "" {
		if err := validateBaseURL(c.Server.PublicURL); err != nil {
			add("PUBLIC_URL", err)
		}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("PORT", fmt.Errorf("%d is out of range", c.Server.Port))
	}

	return errors.Join(errs...)
}

// validateBaseURL checks that u is an absolute http(s) URL.
func validateBaseURL(u string) error {
	parsed, err := neturl.Parse(u)
	if err != nil {
		return fmt.Errorf(errInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New(errInvalidURLScheme)
	}
	if parsed.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}
