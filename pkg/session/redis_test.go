// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "test:session:"

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStoreWithClient(client, testPrefix, []byte("test-hash-key-0123456789abcdef"))
	return store, mr
}

func sessionKeys(mr *miniredis.Miniredis) []string {
	var keys []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, testPrefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	t.Parallel()
	store, mr := newTestRedisStore(t)
	m := NewManager(store, testCookieName)

	rec := serve(t, m, nil, func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Set("user", testProfile{Subject: "auth0|2", Email: "b@example.com"}))
		require.NoError(t, s.Save(w))
	})
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	keys := sessionKeys(mr)
	require.Len(t, keys, 1)
	assert.NotContains(t, cookies[0].Value, "b@example.com", "cookie must carry only the session ID")
	assert.Equal(t, 24*time.Hour, mr.TTL(keys[0]))

	serve(t, m, cookies, func(s *Session, _ http.ResponseWriter) {
		var got testProfile
		found, err := s.Get("user", &got)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "auth0|2", got.Subject)
	})
}

func TestRedisStore_SaveKeepsSessionID(t *testing.T) {
	t.Parallel()
	store, mr := newTestRedisStore(t)
	m := NewManager(store, testCookieName)

	rec := serve(t, m, nil, func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Set("n", 1))
		require.NoError(t, s.Save(w))
	})
	first := sessionKeys(mr)
	require.Len(t, first, 1)

	serve(t, m, rec.Result().Cookies(), func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Set("n", 2))
		require.NoError(t, s.Save(w))
	})
	assert.Equal(t, first, sessionKeys(mr))
}

func TestRedisStore_ClearDeletesRecord(t *testing.T) {
	t.Parallel()
	store, mr := newTestRedisStore(t)
	m := NewManager(store, testCookieName)

	rec := serve(t, m, nil, func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Set("user", testProfile{Subject: "auth0|3"}))
		require.NoError(t, s.Save(w))
	})
	cookies := rec.Result().Cookies()
	require.Len(t, sessionKeys(mr), 1)

	rec = serve(t, m, cookies, func(s *Session, w http.ResponseWriter) {
		s.Clear()
		require.NoError(t, s.Save(w))
	})
	assert.Empty(t, sessionKeys(mr))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Negative(t, cleared[0].MaxAge)

	// Replaying the old cookie finds no server-side record.
	serve(t, m, cookies, func(s *Session, _ http.ResponseWriter) {
		assert.True(t, s.IsEmpty())
	})
}

func TestRedisStore_ExpiredRecordStartsFresh(t *testing.T) {
	t.Parallel()
	store, mr := newTestRedisStore(t)
	m := NewManager(store, testCookieName)

	rec := serve(t, m, nil, func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Set("user", "x"))
		require.NoError(t, s.Save(w))
	})
	old := sessionKeys(mr)
	mr.FastForward(25 * time.Hour)
	require.Empty(t, sessionKeys(mr))

	serve(t, m, rec.Result().Cookies(), func(s *Session, w http.ResponseWriter) {
		assert.True(t, s.IsEmpty())
		require.NoError(t, s.Set("user", "y"))
		require.NoError(t, s.Save(w))
	})

	fresh := sessionKeys(mr)
	require.Len(t, fresh, 1)
	assert.NotEqual(t, old, fresh, "a new session ID is issued")
}

func TestRedisStore_TamperedCookie(t *testing.T) {
	t.Parallel()
	store, _ := newTestRedisStore(t)
	m := NewManager(store, testCookieName)

	forged := &http.Cookie{Name: testCookieName, Value: "forged-session-id"}
	serve(t, m, []*http.Cookie{forged}, func(s *Session, _ http.ResponseWriter) {
		assert.True(t, s.IsEmpty())
	})
}

func TestRedisStore_ApplyCookieOptions(t *testing.T) {
	t.Parallel()
	store, mr := newTestRedisStore(t)
	store.ApplyCookieOptions(CookieOptions{MaxAge: time.Hour, Secure: true})
	m := NewManager(store, testCookieName)

	rec := serve(t, m, nil, func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Set("user", "x"))
		require.NoError(t, s.Save(w))
	})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	keys := sessionKeys(mr)
	require.Len(t, keys, 1)
	assert.Equal(t, time.Hour, mr.TTL(keys[0]))
}

func TestRedisStore_BackendError(t *testing.T) {
	t.Parallel()
	store, mr := newTestRedisStore(t)
	m := NewManager(store, testCookieName)

	rec := serve(t, m, nil, func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Set("user", "x"))
		require.NoError(t, s.Save(w))
	})
	mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	_, err := m.Load(req)
	assert.NoError(t, err, "an unreachable backend yields an empty session, not a failure")
}

func TestNewRedisStore(t *testing.T) {
	t.Parallel()

	t.Run("requires address", func(t *testing.T) {
		t.Parallel()
		_, err := NewRedisStore(context.Background(), RedisConfig{})
		require.Error(t, err)
	})

	t.Run("connects and pings", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		store, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()}, []byte("k"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		assert.NoError(t, store.Ping(context.Background()))
		assert.Equal(t, DefaultKeyPrefix, store.keyPrefix)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, DialTimeout: 200 * time.Millisecond})
		require.Error(t, err)
	})
}
