// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/stacklok/leaderboard/pkg/identity"
)

// DefaultConnectTimeout bounds server selection and the initial connection.
const DefaultConnectTimeout = 10 * time.Second

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	// URI is a mongodb:// or mongodb+srv:// connection string.
	URI string
	// Database overrides the database named in URI.
	Database string

	ConnectTimeout time.Duration
}

// DatabaseName returns the database to use: Database if set, otherwise the
// one named in the URI path.
func (c MongoConfig) DatabaseName() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	cs, err := connstring.ParseAndValidate(c.URI)
	if err != nil {
		return "", fmt.Errorf("invalid mongodb uri: %w", err)
	}
	if cs.Database == "" {
		return "", errors.New("mongodb uri does not name a database and no database was configured")
	}
	return cs.Database, nil
}

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	leaderboard *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore creates a client for cfg. Connections are established lazily
// by the driver, so an unreachable server surfaces on the first operation.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is required")
	}
	database, err := cfg.DatabaseName()
	if err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	return NewMongoStoreWithClient(client, database), nil
}

// NewMongoStoreWithClient creates a MongoStore with a pre-configured client.
func NewMongoStoreWithClient(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:      client,
		users:       db.Collection(UserCollection),
		leaderboard: db.Collection(LeaderboardCollection),
	}
}

// InsertUser inserts token as a new document in the user collection.
func (s *MongoStore) InsertUser(ctx context.Context, token *identity.Token) error {
	if token == nil {
		return ErrInvalidDocument
	}
	if _, err := s.users.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// InsertLeaderboardEntry inserts entry as a new document in the leaderboard collection.
func (s *MongoStore) InsertLeaderboardEntry(ctx context.Context, entry LeaderboardEntry) error {
	if entry.Name == "" {
		return ErrInvalidDocument
	}
	if _, err := s.leaderboard.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert leaderboard entry: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
