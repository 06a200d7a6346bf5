// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"maps"
	"sync"

	"github.com/stacklok/leaderboard/pkg/identity"
)

// MemoryStore implements the Store interface with in-memory slices.
// It is thread-safe and suitable for development and testing; contents are
// lost when the process exits.
type MemoryStore struct {
	mu sync.RWMutex

	users       []identity.Token
	leaderboard []LeaderboardEntry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertUser appends a copy of token.
func (s *MemoryStore) InsertUser(_ context.Context, token *identity.Token) error {
	if token == nil {
		return ErrInvalidDocument
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, cloneToken(token))
	return nil
}

// InsertLeaderboardEntry appends entry.
func (s *MemoryStore) InsertLeaderboardEntry(_ context.Context, entry LeaderboardEntry) error {
	if entry.Name == "" {
		return ErrInvalidDocument
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = append(s.leaderboard, entry)
	return nil
}

// Ping is a no-op for in-memory storage since it is always available.
func (*MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op that always succeeds.
func (*MemoryStore) Close(_ context.Context) error {
	return nil
}

// Users returns copies of the stored user documents in insertion order.
func (s *MemoryStore) Users() []identity.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]identity.Token, len(s.users))
	for i := range s.users {
		out[i] = cloneToken(&s.users[i])
	}
	return out
}

// LeaderboardEntries returns the stored entries in insertion order.
func (s *MemoryStore) LeaderboardEntries() []LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LeaderboardEntry, len(s.leaderboard))
	copy(out, s.leaderboard)
	return out
}

func cloneToken(t *identity.Token) identity.Token {
	c := *t
	c.Userinfo = maps.Clone(t.Userinfo)
	return c
}
