// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package identity implements the OAuth 2.0 authorization-code flow against an
// OpenID Connect identity provider (Auth0 by default).
//
// A login is two calls on a [Client]:
//
//	authURL, pending, err := client.AuthorizationURL(ctx, callbackURL)
//	// store pending in the browser session, redirect to authURL
//
//	token, err := client.Exchange(ctx, pending, identity.CallbackParams{
//	    Code:  r.FormValue("code"),
//	    State: r.FormValue("state"),
//	})
//	// store token in the browser session
//
// Exchange checks the state, redeems the code with PKCE, and verifies the ID
// token signature, issuer, audience, expiry and nonce. The verified claims are
// returned as [Token.Userinfo].
package identity
