// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"errors"
	"net/http"

	"github.com/stacklok/toolhive-core/httperr"
)

var (
	// ErrInvalidDocument is returned when asked to insert a nil token or an
	// entry without a name.
	ErrInvalidDocument = httperr.WithCode(
		errors.New("invalid document"),
		http.StatusBadRequest,
	)

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = httperr.WithCode(
		errors.New("storage unavailable"),
		http.StatusServiceUnavailable,
	)
)
