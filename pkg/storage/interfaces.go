// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storage persists signed-in users' identity tokens and leaderboard
// entries to a document store.
package storage

import (
	"context"

	"github.com/stacklok/leaderboard/pkg/identity"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=interfaces.go Store

// Collection names used by every backend.
const (
	UserCollection        = "user_data"
	LeaderboardCollection = "leaderboard"
)

// LeaderboardEntry is one name submitted through the leaderboard form.
type LeaderboardEntry struct {
	Name string `bson:"name" json:"name"`
}

// Store defines the interface for persisting users and leaderboard entries.
// Inserts are append-only; nothing is deduplicated.
type Store interface {
	// InsertUser stores a snapshot of the signed-in user's token as a new document.
	InsertUser(ctx context.Context, token *identity.Token) error
	// InsertLeaderboardEntry stores a new leaderboard entry.
	InsertLeaderboardEntry(ctx context.Context, entry LeaderboardEntry) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}
