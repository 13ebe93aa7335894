/* imports.go
 * Contains the methods for interacting with the imports collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxImports bounds the import history returned for one tournament
const maxImports = 50

// SaveImport appends an entry to the import log. Missing ids and timestamps are filled in
func (s *Store) SaveImport(ctx context.Context, log ImportLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.ImportedAt.IsZero() {
		log.ImportedAt = time.Now().UTC()
	}
	if _, err := s.Collections.Imports.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to insert import log: %w", err)
	}
	return nil
}

// ListImports returns the most recent imports of a tournament, newest first
func (s *Store) ListImports(ctx context.Context, tournamentID string) ([]ImportLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "importedAt", Value: -1}}).SetLimit(maxImports)
	cursor, err := s.Collections.Imports.Find(ctx, bson.M{"tournamentId": tournamentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching imports from db: %w", err)
	}

	var logs []ImportLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of imports: %w", err)
	}
	return logs, nil
}
