// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identity

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=types.go Client

import (
	"context"
	"errors"
)

var (
	// ErrMissingPendingAuthorization is returned when a callback arrives without a
	// preceding login in the same browser session.
	ErrMissingPendingAuthorization = errors.New("no pending authorization for this session")

	// ErrStateMismatch is returned when the callback state does not match the
	// state sent in the authorization request.
	ErrStateMismatch = errors.New("callback state does not match authorization request")

	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("callback is missing the authorization code")

	// ErrMissingIDToken is returned when the token response has no id_token.
	ErrMissingIDToken = errors.New("token response is missing the id_token")

	// ErrNonceMismatch is returned when the ID token nonce does not match the
	// nonce sent in the authorization request.
	ErrNonceMismatch = errors.New("ID token nonce does not match expected value")

	// ErrNonceMissing is returned when a nonce was sent but the ID token has none.
	ErrNonceMissing = errors.New("ID token missing nonce claim when nonce was expected")
)

// ProviderError is an error reported by the identity provider on the callback
// (the error and error_description query parameters).
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return "identity provider returned error: " + e.Code
	}
	return "identity provider returned error: " + e.Code + ": " + e.Description
}

// PendingAuthorization is the anti-forgery data produced when a login starts.
// It must be kept in the browser session until the callback and handed back to
// Exchange unchanged.
type PendingAuthorization struct {
	// State correlates the callback with this authorization request.
	State string `json:"state"`
	// Nonce binds the ID token to this authorization request.
	Nonce string `json:"nonce"`
	// CodeVerifier is the PKCE verifier (RFC 7636) for the code exchange.
	CodeVerifier string `json:"code_verifier"`
	// RedirectURI is the callback URL sent to the provider; the token request must repeat it.
	RedirectURI string `json:"redirect_uri"`
}

// CallbackParams are the parameters the provider sends to the callback endpoint.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Client wraps the authorization-code flow against one identity provider.
type Client interface {
	// AuthorizationURL builds the provider URL to send the browser to. The
	// returned PendingAuthorization must be stored until the callback.
	AuthorizationURL(ctx context.Context, redirectURI string) (string, *PendingAuthorization, error)

	// Exchange validates the callback against the pending authorization, redeems
	// the code at the provider and returns the verified identity token.
	Exchange(ctx context.Context, pending *PendingAuthorization, params CallbackParams) (*Token, error)

	// LogoutURL builds the provider logout URL that returns the browser to returnTo.
	LogoutURL(returnTo string) (string, error)
}
