// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"strings"
)

// externalURL returns the absolute URL of path as seen by the browser.
// It uses the configured public URL when set, otherwise the request's scheme
// and host, honouring X-Forwarded-Proto from a fronting proxy.
func (h *webRoutes) externalURL(r *http.Request, path string) string {
	if h.publicURL != "" {
		return strings.TrimSuffix(h.publicURL, "/") + path
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwardedProto := r.Header.Get("X-Forwarded-Proto"); forwardedProto != "" {
		// A proxy chain may append values; the first is the client-facing hop.
		proto, _, _ := strings.Cut(forwardedProto, ",")
		proto = strings.ToLower(strings.TrimSpace(proto))
		if proto == "http" || proto == "https" {
			scheme = proto
		}
	}

	return scheme + "://" + r.Host + path
}
