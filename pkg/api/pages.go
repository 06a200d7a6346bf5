// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/stacklok/leaderboard/pkg/forms"
	"github.com/stacklok/leaderboard/pkg/session"
	"github.com/stacklok/leaderboard/pkg/storage"
	"github.com/stacklok/leaderboard/pkg/templates"
)

// Plain-text responses of the add-user endpoint.
const (
	msgUserAdded    = "User added to MongoDB"
	msgNoUserLogged = "No user logged in"
)

// home renders the signed-in identity, or an anonymous page.
func (h *webRoutes) home(w http.ResponseWriter, r *http.Request) error {
	sess, err := session.MustFromContext(r.Context())
	if err != nil {
		return err
	}
	user, err := currentUser(sess)
	if err != nil {
		return err
	}
	return h.templates.Render(w, templates.PageHome, templates.HomeData{User: user})
}

// addUser stores a snapshot of the signed-in user's token.
func (h *webRoutes) addUser(w http.ResponseWriter, r *http.Request) error {
	sess, err := session.MustFromContext(r.Context())
	if err != nil {
		return err
	}
	user, err := currentUser(sess)
	if err != nil {
		return err
	}
	if user == nil {
		writeText(w, msgNoUserLogged)
		return nil
	}

	if err := h.store.InsertUser(r.Context(), user); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	h.metrics.UsersAdded.Inc()
	writeText(w, msgUserAdded)
	return nil
}

// leaderboardForm renders the empty leaderboard form.
func (h *webRoutes) leaderboardForm(w http.ResponseWriter, _ *http.Request) error {
	return h.templates.Render(w, templates.PageAddLeaderboard, templates.LeaderboardData{})
}

// addLeaderboardEntry validates the submitted form and stores the entry.
// Submissions are accepted without a signed-in user.
func (h *webRoutes) addLeaderboardEntry(w http.ResponseWriter, r *http.Request) error {
	form, err := forms.ParseLeaderboardForm(r)
	if err != nil {
		return err
	}

	result := form.Validate()
	if !result.Valid() {
		h.metrics.ValidationFailures.WithLabelValues("leaderboard").Inc()
		return h.templates.Render(w, templates.PageAddLeaderboard, templates.LeaderboardData{
			Form:       form,
			Validation: result,
		})
	}

	if err := h.store.InsertLeaderboardEntry(r.Context(), storage.LeaderboardEntry{Name: form.Name}); err != nil {
		return fmt.Errorf("failed to add leaderboard entry: %w", err)
	}
	h.metrics.LeaderboardEntries.Inc()

	return h.templates.Render(w, templates.PageAddLeaderboard, templates.LeaderboardData{
		Form:  form,
		Added: true,
	})
}

func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, msg)
}
