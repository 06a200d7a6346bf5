// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// CookieOptions configures the session cookie for any backend.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

func (o CookieOptions) apply(opts *sessions.Options) {
	opts.Path = "/"
	opts.MaxAge = int(o.MaxAge.Seconds())
	opts.HttpOnly = true
	opts.Secure = o.Secure
	opts.SameSite = http.SameSiteLaxMode
}

// NewCookieStore returns a store keeping all session values in a signed cookie.
// secret authenticates the cookie; values are readable by the browser.
func NewCookieStore(secret []byte, opts CookieOptions) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	opts.apply(store.Options)
	store.MaxAge(store.Options.MaxAge)
	return store
}

// ApplyCookieOptions sets the cookie options of a RedisStore.
func (s *RedisStore) ApplyCookieOptions(opts CookieOptions) {
	opts.apply(s.Options)
	for _, codec := range s.codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(s.Options.MaxAge)
		}
	}
}
