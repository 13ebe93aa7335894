/* test_helpers.go
 * Contains test helper functions for store package tests
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"tournament-importer/api/shared"

	"go.mongodb.org/mongo-driver/mongo"
)

// NewTestStore wraps an existing client and database, e.g. the mock deployment of mtest
func NewTestStore(client *mongo.Client, db *mongo.Database) *Store {
	return newStore(client, db)
}

// CreateTestStore creates a Store connected to a test database.
// Returns the store and a cleanup function that drops the database.
func CreateTestStore(mongoURI string) (*Store, func(), error) {
	store, err := NewStore(context.TODO(), "test_tournament_importer", mongoURI)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		store.Database.Drop(context.TODO())
		store.Client.Disconnect(context.TODO())
	}
	return store, cleanup, nil
}

// CreateSampleRecord creates a small tournament record for testing
func CreateSampleRecord(tournamentID string) shared.TournamentRecord {
	smith := shared.Participant{DrawPosition: 1, FullName: "Smith, John", Hash: "johnsmith", ParticipantID: "smith-P"}
	jones := shared.Participant{DrawPosition: 2, FullName: "Jones, Tom", Hash: "tomjones", ParticipantID: "jones-P"}
	return shared.TournamentRecord{
		TournamentID:   tournamentID,
		TournamentName: "Tavaszi Kupa",
		Organization:   "HTS",
		City:           "Budapest",
		Dates:          shared.Dates{StartDate: "2021-05-01"},
		Draws: []shared.DrawInfo{{
			DrawID:    "abc",
			SheetName: "FS",
			DrawType:  shared.Knockout,
			MatchUps: []shared.MatchUp{{DrawPositions: []int{1, 2}, WinningSide: []shared.Participant{smith},
				LosingSide: []shared.Participant{jones}, Result: "6-3 6-4", RoundName: "F"}},
		}},
		Participants: map[string]shared.Participant{"smith-P": smith, "jones-P": jones},
	}
}
