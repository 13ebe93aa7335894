/* models.go
 * This file contain the structs that relate to DB objects
 * Authors: Zachary Bower
 */

package store

import (
	"time"
	"tournament-importer/api/shared"
)

// RecordSummary is the listing view of a stored tournament record
type RecordSummary struct {
	TournamentID   string       `json:"tournamentId" bson:"tournamentId"`
	TournamentName string       `json:"tournamentName,omitempty" bson:"tournamentName,omitempty"`
	Organization   string       `json:"organization,omitempty" bson:"organization,omitempty"`
	City           string       `json:"city,omitempty" bson:"city,omitempty"`
	Dates          shared.Dates `json:"dates" bson:"dates"`
	Draws          int          `json:"draws" bson:"draws"`
}

// ImportLog records one import of a workbook and the diagnostics it raised
type ImportLog struct {
	ID           string              `json:"id" bson:"_id"`
	TournamentID string              `json:"tournamentId,omitempty" bson:"tournamentId,omitempty"`
	Organization string              `json:"organization,omitempty" bson:"organization,omitempty"`
	Source       string              `json:"source" bson:"source"`
	Digest       string              `json:"digest" bson:"digest"`
	SheetFilter  string              `json:"sheetFilter,omitempty" bson:"sheetFilter,omitempty"`
	Cached       bool                `json:"cached" bson:"cached"`
	Error        string              `json:"error,omitempty" bson:"error,omitempty"`
	Diagnostics  []shared.Diagnostic `json:"diagnostics" bson:"diagnostics"`
	ImportedAt   time.Time           `json:"importedAt" bson:"importedAt"`
}

// storedRecord is a tournament record as persisted: the record plus its save time
type storedRecord struct {
	shared.TournamentRecord `bson:",inline"`
	SavedAt                 time.Time `bson:"savedAt"`
}
