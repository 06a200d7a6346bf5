// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/leaderboard/pkg/identity"
	"github.com/stacklok/leaderboard/pkg/metrics"
	"github.com/stacklok/leaderboard/pkg/session"
	"github.com/stacklok/leaderboard/pkg/storage"
	"github.com/stacklok/leaderboard/pkg/templates"
)

// testApp is a running router plus a browser that keeps cookies and does
// not follow redirects.
type testApp struct {
	server  *httptest.Server
	client  *http.Client
	metrics *metrics.Metrics
}

func newCookieSessionStore() sessions.Store {
	return session.NewCookieStore([]byte("test-secret-key-0123456789abcdef"), session.CookieOptions{MaxAge: time.Hour})
}

func newTestApp(t *testing.T, idClient identity.Client, store storage.Store) *testApp {
	t.Helper()
	return newTestAppWithSessions(t, idClient, store, newCookieSessionStore())
}

func newTestAppWithSessions(t *testing.T, idClient identity.Client, store storage.Store, sessionStore sessions.Store) *testApp {
	t.Helper()

	renderer, err := templates.NewRenderer()
	require.NoError(t, err)
	reg, m := metrics.NewRegistry()

	router, err := NewRouter(RouterConfig{
		Identity:  idClient,
		Store:     store,
		Sessions:  session.NewManager(sessionStore, "session"),
		Templates: renderer,
		Metrics:   m,
		Gatherer:  reg,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		metrics: m,
	}
}

// url returns the absolute URL of path on the test server.
func (a *testApp) url(path string) string {
	return a.server.URL + path
}

type testResponse struct {
	status   int
	body     string
	location string
	header   http.Header
}

func (a *testApp) do(t *testing.T, req *http.Request) testResponse {
	t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return testResponse{
		status:   resp.StatusCode,
		body:     string(body),
		location: resp.Header.Get("Location"),
		header:   resp.Header,
	}
}

func (a *testApp) get(t *testing.T, path string) testResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.url(path), nil)
	require.NoError(t, err)
	return a.do(t, req)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) testResponse {
	t.Helper()
	return a.postRaw(t, path, form.Encode())
}

func (a *testApp) postRaw(t *testing.T, path, body string) testResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.url(path), strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

// sessionCookie returns the session cookie value the browser holds, or "".
func (a *testApp) sessionCookie(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(a.server.URL)
	require.NoError(t, err)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == "session" {
			return c.Value
		}
	}
	return ""
}
