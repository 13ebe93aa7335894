/* store.go
 * Contains the store struct and NewStore function. The methods for this package were split into two files: records
 * and imports. Each of these files contain methods for interacting with that part of the database
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Records *mongo.Collection
		Imports *mongo.Collection
	}
}

// Function for initialising Store. Connects to the db and verifies the connection
// Preconditions: Receives a context, the db name and the mongo URI
// Postconditions: Returns pointer to the Store object with its collections set, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("db name cannot be empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return newStore(client, client.Database(dbName)), nil
}

func newStore(client *mongo.Client, db *mongo.Database) *Store {
	s := &Store{Client: client, Database: db}
	s.Collections.Records = db.Collection("tournament_records")
	s.Collections.Imports = db.Collection("imports")
	return s
}

// EnsureIndexes creates the unique tournament id index on records and the lookup index on imports
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collections.Records.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tournamentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create records index: %w", err)
	}
	_, err = s.Collections.Imports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tournamentId", Value: 1}, {Key: "importedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create imports index: %w", err)
	}
	return nil
}
