// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/stacklok/leaderboard/pkg/networking"
)

// DefaultScopes are requested when Config.Scopes is empty.
var DefaultScopes = []string{oidc.ScopeOpenID, "profile", "email"}

// Config contains configuration for an OIDC provider that supports discovery.
type Config struct {
	// Issuer is the provider URL; endpoints are discovered from
	// {Issuer}/.well-known/openid-configuration.
	Issuer string

	ClientID     string
	ClientSecret string
	Scopes       []string

	// LogoutEndpoint is where the browser is sent on logout.
	LogoutEndpoint string
}

// Validate checks that Config has all required fields and valid values.
func (c *Config) Validate() error {
	if c.Issuer == "" {
		return errors.New("issuer is required")
	}
	if err := networking.ValidateEndpointURL(c.Issuer); err != nil {
		return fmt.Errorf("invalid issuer URL: %w", err)
	}
	if c.ClientID == "" {
		return errors.New("client ID is required")
	}
	if c.ClientSecret == "" {
		return errors.New("client secret is required")
	}
	if c.LogoutEndpoint == "" {
		return errors.New("logout endpoint is required")
	}
	if err := networking.ValidateEndpointURL(c.LogoutEndpoint); err != nil {
		return fmt.Errorf("invalid logout endpoint: %w", err)
	}
	if len(c.Scopes) > 0 && !slices.Contains(c.Scopes, oidc.ScopeOpenID) {
		return errors.New("openid scope is required")
	}
	return nil
}

// OIDCClient implements Client for OIDC-compliant identity providers.
//
// Discovery happens on first use rather than at construction, so a provider
// outage surfaces as a failed login instead of a failed start. A failed
// discovery is not remembered; the next login tries again.
type OIDCClient struct {
	config     *Config
	scopes     []string
	httpClient *http.Client

	mu       sync.Mutex
	oauth2   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// OIDCClientOption configures an OIDCClient.
type OIDCClientOption func(*OIDCClient)

// WithHTTPClient sets a custom HTTP client for calls to the provider.
func WithHTTPClient(client *http.Client) OIDCClientOption {
	return func(c *OIDCClient) {
		c.httpClient = client
	}
}

// NewOIDCClient creates a new OIDC client. It does not contact the provider.
func NewOIDCClient(config *Config, opts ...OIDCClientOption) (*OIDCClient, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	c := &OIDCClient{
		config:     config,
		scopes:     scopes,
		httpClient: networking.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}

	slog.Debug("created OIDC client",
		"issuer", config.Issuer,
		"client_id", config.ClientID,
		"scopes", scopes,
	)

	return c, nil
}

// discover returns the oauth2 configuration and ID token verifier, running
// OIDC discovery the first time it succeeds.
func (c *OIDCClient) discover(ctx context.Context) (*oauth2.Config, *oidc.IDTokenVerifier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.oauth2 != nil {
		return c.oauth2, c.verifier, nil
	}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, c.httpClient), c.config.Issuer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover OIDC endpoints: %w", err)
	}

	endpoint := provider.Endpoint()
	// Client credentials go in the request body for consistent behaviour across providers.
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	c.oauth2 = &oauth2.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		Scopes:       c.scopes,
		Endpoint:     endpoint,
	}
	c.verifier = provider.Verifier(&oidc.Config{ClientID: c.config.ClientID})

	slog.Debug("OIDC discovery complete",
		"issuer", c.config.Issuer,
		"authorization_endpoint", endpoint.AuthURL,
		"token_endpoint", endpoint.TokenURL,
	)

	return c.oauth2, c.verifier, nil
}

// AuthorizationURL builds the URL to redirect the browser to the provider.
func (c *OIDCClient) AuthorizationURL(ctx context.Context, redirectURI string) (string, *PendingAuthorization, error) {
	if redirectURI == "" {
		return "", nil, errors.New("redirect URI is required")
	}

	cfg, _, err := c.discover(ctx)
	if err != nil {
		return "", nil, err
	}

	pending := &PendingAuthorization{
		State:        rand.Text(),
		Nonce:        rand.Text(),
		CodeVerifier: oauth2.GenerateVerifier(),
		RedirectURI:  redirectURI,
	}

	authURL := cfg.AuthCodeURL(pending.State,
		oauth2.SetAuthURLParam("redirect_uri", redirectURI),
		oauth2.SetAuthURLParam("nonce", pending.Nonce),
		oauth2.S256ChallengeOption(pending.CodeVerifier),
	)

	slog.Debug("built authorization URL",
		"authorization_endpoint", cfg.Endpoint.AuthURL,
		"redirect_uri", redirectURI,
	)

	return authURL, pending, nil
}

// Exchange validates the callback, redeems the code and verifies the ID token.
func (c *OIDCClient) Exchange(ctx context.Context, pending *PendingAuthorization, params CallbackParams) (*Token, error) {
	if pending == nil {
		return nil, ErrMissingPendingAuthorization
	}
	if params.Error != "" {
		return nil, &ProviderError{Code: params.Error, Description: params.ErrorDescription}
	}
	if params.State != pending.State {
		return nil, ErrStateMismatch
	}
	if params.Code == "" {
		return nil, ErrMissingCode
	}

	cfg, verifier, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cfg.Exchange(ctx, params.Code,
		oauth2.SetAuthURLParam("redirect_uri", pending.RedirectURI),
		oauth2.VerifierOption(pending.CodeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrMissingIDToken
	}

	idToken, err := verifier.Verify(oidc.ClientContext(ctx, c.httpClient), rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	if pending.Nonce != "" {
		if idToken.Nonce == "" {
			return nil, ErrNonceMissing
		}
		if idToken.Nonce != pending.Nonce {
			return nil, ErrNonceMismatch
		}
	}

	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode ID token claims: %w", err)
	}

	slog.Debug("authorization code exchange successful",
		"subject", idToken.Subject,
		"has_refresh_token", tok.RefreshToken != "",
	)

	return newToken(tok, rawIDToken, claims), nil
}

// LogoutURL builds the provider logout URL with returnTo and client_id query
// parameters, form-encoded.
func (c *OIDCClient) LogoutURL(returnTo string) (string, error) {
	u, err := url.Parse(c.config.LogoutEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid logout endpoint: %w", err)
	}
	q := u.Query()
	q.Set("returnTo", returnTo)
	q.Set("client_id", c.config.ClientID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
