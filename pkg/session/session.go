// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package session provides per-browser session state behind a signed cookie.
//
// The [Manager] middleware loads the browser's session for every request and
// places it on the request context; handlers obtain it with [FromContext].
// Values are stored as JSON so that any backend (cookie or Redis) can hold them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

// ErrNoSession is returned by MustFromContext when the middleware did not run.
var ErrNoSession = errors.New("no session on request context")

type contextKey struct{}

// Session is the state of one browser session for the duration of a request.
// It is not safe for concurrent use; each request gets its own.
type Session struct {
	raw *sessions.Session
	req *http.Request
}

// Get decodes the value stored under key into dst. It reports whether the key was present.
func (s *Session) Get(key string, dst any) (bool, error) {
	v, ok := s.raw.Values[key]
	if !ok {
		return false, nil
	}
	data, ok := v.(string)
	if !ok {
		return false, fmt.Errorf("session value %q has unexpected type %T", key, v)
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return false, fmt.Errorf("failed to decode session value %q: %w", key, err)
	}
	return true, nil
}

// Has reports whether a value is stored under key.
func (s *Session) Has(key string) bool {
	_, ok := s.raw.Values[key]
	return ok
}

// Set stores v under key. The change is persisted by Save.
func (s *Session) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode session value %q: %w", key, err)
	}
	s.raw.Values[key] = string(data)
	return nil
}

// Delete removes key. The change is persisted by Save.
func (s *Session) Delete(key string) {
	delete(s.raw.Values, key)
}

// Clear removes every value and expires the session, so Save deletes it from
// the backend and the browser.
func (s *Session) Clear() {
	s.raw.Values = make(map[any]any)
	s.raw.Options.MaxAge = -1
}

// IsEmpty reports whether the session holds no values.
func (s *Session) IsEmpty() bool {
	return len(s.raw.Values) == 0
}

// Save writes the session to its backend and sets the cookie on w.
// It must be called before the response status is written.
func (s *Session) Save(w http.ResponseWriter) error {
	if err := s.raw.Save(s.req, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FromContext returns the session placed on ctx by the Manager middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}

// MustFromContext is FromContext returning ErrNoSession instead of a boolean.
func MustFromContext(ctx context.Context) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Manager loads sessions from a gorilla sessions.Store.
type Manager struct {
	store sessions.Store
	name  string
}

// NewManager creates a Manager reading the cookie called name from store.
func NewManager(store sessions.Store, name string) *Manager {
	return &Manager{store: store, name: name}
}

// Load returns the session for r. A cookie that cannot be decoded (bad
// signature, expired server-side record) yields a fresh empty session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	raw, err := m.store.Get(r, m.name)
	if err != nil {
		if raw == nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		// Stores return a fresh session alongside decode errors.
		slog.Debug("discarding unreadable session cookie", "error", err)
		raw.Values = make(map[any]any)
	}
	return &Session{raw: raw, req: r}, nil
}

// Middleware loads the session and puts it on the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r)
		if err != nil {
			slog.Error("failed to load session", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, s)))
	})
}
