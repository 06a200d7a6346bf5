// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package forms parses and validates HTML form submissions.
package forms

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/stacklok/toolhive-core/httperr"
)

// RequiredMessage is shown next to a required field left blank.
const RequiredMessage = "This field is required."

// LeaderboardForm is a submission of the leaderboard form.
type LeaderboardForm struct {
	Name string `json:"name" valid:"required~This field is required."`
}

// ParseLeaderboardForm reads the form from a POST body. Values are trimmed,
// so a whitespace-only name counts as missing.
func ParseLeaderboardForm(r *http.Request) (LeaderboardForm, error) {
	if err := r.ParseForm(); err != nil {
		return LeaderboardForm{}, httperr.WithCode(
			fmt.Errorf("malformed form body: %w", err),
			http.StatusBadRequest,
		)
	}
	return LeaderboardForm{
		Name: strings.TrimSpace(r.PostForm.Get("name")),
	}, nil
}

// Validate checks the form without side effects.
func (f LeaderboardForm) Validate() Result {
	ok, err := govalidator.ValidateStruct(f)
	if ok {
		return Result{}
	}
	return newResult(err)
}

// Result holds field-level validation messages keyed by lowercase field name.
type Result struct {
	FieldErrors map[string]string
}

// Valid reports whether validation found no errors.
func (r Result) Valid() bool {
	return len(r.FieldErrors) == 0
}

// Error returns the message for field, or "" if the field is valid.
func (r Result) Error(field string) string {
	return r.FieldErrors[field]
}

func newResult(err error) Result {
	byField := govalidator.ErrorsByField(err)
	res := Result{FieldErrors: make(map[string]string, len(byField))}
	for field, msg := range byField {
		res.FieldErrors[strings.ToLower(field)] = msg
	}
	if len(res.FieldErrors) == 0 && err != nil {
		// Not a per-field failure; surface it against the form as a whole.
		res.FieldErrors[""] = err.Error()
	}
	return res
}
