/* records.go
 * Contains the methods for interacting with the tournament_records collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
	"tournament-importer/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveRecord stores a tournament record, replacing an earlier import of the same tournament
// Preconditions: Receives a record with a tournament id
// Postconditions: Inserts or replaces the document keyed by tournamentId, or returns an error
func (s *Store) SaveRecord(ctx context.Context, record shared.TournamentRecord) error {
	if record.TournamentID == "" {
		return fmt.Errorf("record has no tournament id")
	}
	filter := bson.M{"tournamentId": record.TournamentID}
	doc := storedRecord{TournamentRecord: record, SavedAt: time.Now().UTC()}
	_, err := s.Collections.Records.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save tournament record: %w", err)
	}
	return nil
}

// GetRecord does DB lookup and gets a tournament record by its id
// Preconditions: Receives a tournament id
// Postconditions: Returns the record, shared.ErrRecordNotFound when there is none, or an error if it occurs
func (s *Store) GetRecord(ctx context.Context, tournamentID string) (shared.TournamentRecord, error) {
	var doc storedRecord
	err := s.Collections.Records.FindOne(ctx, bson.M{"tournamentId": tournamentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return shared.TournamentRecord{}, fmt.Errorf("%w: %s", shared.ErrRecordNotFound, tournamentID)
		}
		return shared.TournamentRecord{}, fmt.Errorf("error fetching record from db: %w", err)
	}
	return doc.TournamentRecord, nil
}

// ListRecords returns a summary of every stored record, most recent tournament first
func (s *Store) ListRecords(ctx context.Context) ([]RecordSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "dates.startDate", Value: -1}, {Key: "tournamentId", Value: 1}}).
		SetProjection(bson.M{"participants": 0, "participantships": 0, "draws.matchUps": 0,
			"draws.structure": 0, "draws.entries": 0, "draws.preround": 0})

	cursor, err := s.Collections.Records.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching records from db: %w", err)
	}

	var docs []storedRecord
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of records: %w", err)
	}

	summaries := make([]RecordSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, Summarize(doc.TournamentRecord))
	}
	return summaries, nil
}

// Summarize returns the listing view of a record
func Summarize(r shared.TournamentRecord) RecordSummary {
	return RecordSummary{
		TournamentID:   r.TournamentID,
		TournamentName: r.TournamentName,
		Organization:   r.Organization,
		City:           r.City,
		Dates:          r.Dates,
		Draws:          len(r.Draws),
	}
}
