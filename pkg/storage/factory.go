// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
)

// Backend selects a Store implementation.
type Backend string

const (
	// BackendMongoDB stores documents in MongoDB.
	BackendMongoDB Backend = "mongodb"
	// BackendMemory keeps documents in process memory.
	BackendMemory Backend = "memory"
)

// Config selects and configures a Store.
type Config struct {
	Backend Backend
	Mongo   MongoConfig
}

// New creates a Store implementation based on cfg. An empty backend means MongoDB.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMongoDB, "":
		return NewMongoStore(ctx, cfg.Mongo)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
