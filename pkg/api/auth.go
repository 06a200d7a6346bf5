// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stacklok/leaderboard/pkg/identity"
	"github.com/stacklok/leaderboard/pkg/metrics"
	"github.com/stacklok/leaderboard/pkg/session"
)

// Session keys.
const (
	sessionKeyUser    = "user"
	sessionKeyPending = "oauth_pending"
)

// login redirects the browser to the identity provider.
func (h *webRoutes) login(w http.ResponseWriter, r *http.Request) error {
	sess, err := session.MustFromContext(r.Context())
	if err != nil {
		return err
	}

	authURL, pending, err := h.identity.AuthorizationURL(r.Context(), h.externalURL(r, "/callback"))
	if err != nil {
		h.metrics.LoginFailures.WithLabelValues(metrics.ReasonAuthorize).Inc()
		return fmt.Errorf("failed to build authorization URL: %w", err)
	}

	if err := sess.Set(sessionKeyPending, pending); err != nil {
		return err
	}
	if err := sess.Save(w); err != nil {
		h.metrics.LoginFailures.WithLabelValues(metrics.ReasonSession).Inc()
		return err
	}

	h.metrics.LoginsStarted.Inc()
	http.Redirect(w, r, authURL, http.StatusFound)
	return nil
}

// callback completes the authorization code flow. On any failure the session
// is left as it was.
func (h *webRoutes) callback(w http.ResponseWriter, r *http.Request) error {
	sess, err := session.MustFromContext(r.Context())
	if err != nil {
		return err
	}

	var pending *identity.PendingAuthorization
	var stored identity.PendingAuthorization
	found, err := sess.Get(sessionKeyPending, &stored)
	if err != nil {
		return err
	}
	if found {
		pending = &stored
	}

	params := identity.CallbackParams{
		Code:             r.FormValue("code"),
		State:            r.FormValue("state"),
		Error:            r.FormValue("error"),
		ErrorDescription: r.FormValue("error_description"),
	}

	token, err := h.identity.Exchange(r.Context(), pending, params)
	if err != nil {
		h.metrics.LoginFailures.WithLabelValues(metrics.ReasonExchange).Inc()
		return fmt.Errorf("login callback failed: %w", err)
	}

	sess.Delete(sessionKeyPending)
	if err := sess.Set(sessionKeyUser, token); err != nil {
		return err
	}
	if err := sess.Save(w); err != nil {
		h.metrics.LoginFailures.WithLabelValues(metrics.ReasonSession).Inc()
		return err
	}

	h.metrics.LoginsCompleted.Inc()
	slog.Info("user signed in", "sub", token.Subject())
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

// logout clears the session and sends the browser to the provider's logout endpoint.
func (h *webRoutes) logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := session.MustFromContext(r.Context())
	if err != nil {
		return err
	}

	logoutURL, err := h.identity.LogoutURL(h.externalURL(r, "/"))
	if err != nil {
		return fmt.Errorf("failed to build logout URL: %w", err)
	}

	sess.Clear()
	if err := sess.Save(w); err != nil {
		return err
	}
	h.metrics.Logouts.Inc()
	http.Redirect(w, r, logoutURL, http.StatusFound)
	return nil
}

// currentUser returns the signed-in user's token, or nil for an anonymous session.
func currentUser(sess *session.Session) (*identity.Token, error) {
	var tok identity.Token
	found, err := sess.Get(sessionKeyUser, &tok)
	if err != nil || !found {
		return nil, err
	}
	return &tok, nil
}
