/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"tournament-importer/api/shared"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	SaveRecord(ctx context.Context, record shared.TournamentRecord) error
	GetRecord(ctx context.Context, tournamentID string) (shared.TournamentRecord, error)
	ListRecords(ctx context.Context) ([]RecordSummary, error)
	SaveImport(ctx context.Context, log ImportLog) error
	ListImports(ctx context.Context, tournamentID string) ([]ImportLog, error)

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
