/* record.go
 * Contains the tournament record builder. Draws are added in workbook order; participants and participantships
 * are merged across draws by their content derived ids
 * Authors: Zachary Bower
 */

package record

import (
	"maps"
	"strings"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"
)

// attributes of the tournament info that have a field of their own
var recordAttributes = map[string]bool{
	"tournamentName": true,
	"city":           true,
	"startDate":      true,
	"endDate":        true,
}

// Builder accumulates the draws of one workbook. It is not safe for concurrent use
type Builder struct {
	record shared.TournamentRecord
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{record: shared.TournamentRecord{
		Draws:            []shared.DrawInfo{},
		Info:             make(map[string]string),
		Participants:     make(map[string]shared.Participant),
		Participantships: make(map[string]shared.Participantship),
	}}
}

// AddDraw assembles a draw and merges its participants into the record
func (b *Builder) AddDraw(in DrawInput) shared.DrawInfo {
	assembled := AssembleDraw(in)
	b.record.Draws = append(b.record.Draws, assembled.Draw)
	maps.Copy(b.record.Participants, assembled.Participants)
	maps.Copy(b.record.Participantships, assembled.Participantships)
	return assembled.Draw
}

// SetInfo applies tournament info. Attributes already set are kept
func (b *Builder) SetInfo(info sheet.Info) {
	r := &b.record
	for k, v := range info.Values {
		switch k {
		case "tournamentName":
			setOnce(&r.TournamentName, v)
		case "city":
			setOnce(&r.City, v)
		case "startDate":
			setOnce(&r.Dates.StartDate, v)
		case "endDate":
			setOnce(&r.Dates.EndDate, v)
		}
		if !recordAttributes[k] {
			if _, ok := r.Info[k]; !ok {
				r.Info[k] = v
			}
		}
	}
	if categories, ok := info.Lists["categories"]; ok && len(r.Categories) == 0 {
		r.Categories = categories
	}
}

func setOnce(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Record returns the finished record, stamped with its provider and organization
// Postconditions: TournamentID depends only on the tournament's name, city, categories and start date
func (b *Builder) Record(providerID, organization string) shared.TournamentRecord {
	r := b.record
	r.ProviderID = providerID
	r.Organization = organization
	r.TournamentID = TournamentID(r)
	return r
}

// TournamentID derives the record id: name (spaces replaced), city, concatenated categories and start date
func TournamentID(r shared.TournamentRecord) string {
	return strings.Join([]string{
		strings.ReplaceAll(r.TournamentName, " ", "_"),
		r.City,
		strings.Join(r.Categories, ""),
		r.Dates.StartDate,
	}, "_")
}
