// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package networking holds small HTTP helpers shared by the identity client and config.
package networking

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HttpsScheme is the HTTPS scheme.
const HttpsScheme = "https"

// HttpTimeout is the timeout for outgoing HTTP requests.
const HttpTimeout = 30 * time.Second

const (
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 10 * time.Second
)

var (
	errNotAbsolute    = errors.New("URL must be absolute")
	errInsecureScheme = errors.New("URL must use HTTPS unless the host is localhost")
)

// NewHTTPClient returns the client used for calls to the identity provider.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = tlsHandshakeTimeout
	transport.ResponseHeaderTimeout = responseHeaderTimeout

	return &http.Client{
		Timeout:   HttpTimeout,
		Transport: transport,
	}
}

// IsLocalhost reports whether host (with or without port) is a loopback name or address.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ValidateEndpointURL checks that endpoint is an absolute URL using HTTPS,
// allowing plain HTTP only for loopback hosts.
func ValidateEndpointURL(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return &url.Error{Op: "parse", URL: endpoint, Err: errNotAbsolute}
	}
	if u.Scheme != HttpsScheme && !(u.Scheme == "http" && IsLocalhost(u.Host)) {
		return &url.Error{Op: "parse", URL: endpoint, Err: errInsecureScheme}
	}
	return nil
}
