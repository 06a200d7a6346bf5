// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
)

// FuncMap returns the functions available to page templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"prettyJSON": prettyJSON,
	}
}

// prettyJSON encodes v as JSON indented by four spaces. A nil value renders as null.
// Output is escaped by html/template, so the encoder leaves <, > and & as-is.
func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
