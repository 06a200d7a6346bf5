// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import "fmt"

// Error message templates for consistent error formatting
const (
	errFileNotFound     = "env file not found or not accessible: %w"
	errInvalidURL       = "invalid URL format: %w"
	errInvalidURLScheme = "URL must start with http:// or https://"
)

// FieldError reports an invalid configuration variable.
type FieldError struct {
	// Variable is the environment variable name.
	Variable string
	// Err is the underlying error
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Variable, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
