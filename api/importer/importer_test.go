/* importer_test.go
 * Contains unit tests for workbook dispatch: identification, per sheet failures, info extraction and the sheet filter
 * Authors: Zachary Bower
 */

package importer

import (
	"io"
	"log/slog"
	"testing"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		ProviderID:    "TEST-1",
		MatchOutcomes: []string{"w.o.", "ret."},
		ColumnsMap: map[string]string{
			profile.ColPosition:         "A",
			profile.ColPlayers:          "C",
			profile.ColRounds:           "F",
			profile.ColRoundRobinResult: "I",
		},
		RowDefinitions: []profile.RowDefinition{
			{Type: profile.Header, ID: "drawHeader", Elements: []string{"#", "Name"}, Rows: 1, MinimumElements: 2},
			{Type: profile.Header, ID: "rrHeader", Elements: []string{"Result"}, Rows: 1, MinimumElements: 1},
			{Type: profile.Header, ID: "infoHeader", Elements: []string{"Tournament Information"}, Rows: 1,
				MinimumElements: 1},
			{Type: profile.Footer, ID: "drawFooter", Elements: []string{"Referee"}, Rows: 1, MinimumElements: 1},
		},
		SheetDefinitions: []profile.SheetDefinition{
			{Type: shared.Information, RowIDs: []string{"infoHeader"}},
			{Type: shared.RoundRobin, RowIDs: []string{"drawHeader", "rrHeader", "drawFooter"}},
			{Type: shared.Knockout, RowIDs: []string{"drawHeader", "drawFooter"}},
		},
		PlayerRows: profile.PlayerRows{PlayerNames: true},
		TournamentInfo: []profile.InfoRule{
			{Attribute: "tournamentName", SearchText: "Tournament", ColumnOffset: 1},
			{Attribute: "city", SearchText: "City", ColumnOffset: 1},
			{Attribute: "dates", SearchText: "Dates", ColumnOffset: 1, PostProcessor: "dateParser"},
			{Attribute: "referee", SearchText: "Referee", ColumnOffset: 1},
		},
		DrawInfo: []profile.InfoRule{
			{Attribute: "event", SearchText: "Event", ColumnOffset: 1},
			{Attribute: "gender", SearchText: "Event", ColumnOffset: 1, PostProcessor: "genderParser"},
		},
	}
}

func testRegistry(t *testing.T, types ...profile.WorkbookType) *profile.Registry {
	t.Helper()
	all := append([]profile.WorkbookType{
		{Organization: "TEST", SheetNamePatterns: []string{"^MS$"}, Profile: testProfile()},
	}, types...)
	r, err := profile.NewRegistry(all...)
	require.NoError(t, err)
	return r
}

func infoSheet() shared.Sheet {
	return shared.Sheet{
		"A1": "Tournament Information",
		"A2": "Tournament", "B2": "Tavaszi Kupa",
		"A3": "City", "B3": "Budapest",
		"A4": "Dates", "B4": "2021.05.01-03",
	}
}

func knockoutSheet() shared.Sheet {
	return shared.Sheet{
		"A1": "#", "C1": "Name", "F1": "Round 1", "G1": "Final",
		"A2": "1", "C2": "Smith, John", "F2": "Smith, John",
		"A3": "2", "C3": "Jones, Tom", "F3": "6-3 6-4", "G3": "Smith, John",
		"A4": "3", "C4": "Brown, Bob", "F4": "Brown, Bob", "G4": "6-4 6-4",
		"A5": "4", "C5": "Green, Gary", "F5": "7-5 6-2",
		"A9": "Referee", "B9": "Kiss Anna",
		"A11": "Event", "B11": "Férfi egyes",
	}
}

func roundRobinSheet() shared.Sheet {
	return shared.Sheet{
		"A1": "#", "C1": "Name", "F1": "1", "G1": "2", "H1": "3", "I1": "Result",
		"A2": "1", "C2": "Smith, John", "F2": "X", "G2": "6-2 6-1", "H2": "6-0 6-0", "I2": "1",
		"A3": "2", "C3": "Jones, Tom", "F3": "2-6 1-6", "G3": "X", "H3": "6-4 6-4", "I3": "2",
		"A4": "3", "C4": "Brown, Bob", "F4": "0-6 0-6", "G4": "4-6 4-6", "H4": "X", "I4": "3",
		"A9": "Referee",
	}
}

func sixPlayerSheet() shared.Sheet {
	cells := knockoutSheet()
	cells["A6"] = "5"
	cells["C6"] = "White, Walt"
	cells["A7"] = "6"
	cells["C7"] = "Black, Jack"
	return cells
}

func testWorkbook() shared.Workbook {
	return shared.Workbook{
		SheetNames: []string{"Info", "MS", "RR A", "WS", "Notes"},
		Sheets: map[string]shared.Sheet{
			"Info":  infoSheet(),
			"MS":    knockoutSheet(),
			"RR A":  roundRobinSheet(),
			"WS":    sixPlayerSheet(),
			"Notes": {"A1": "bring more balls"},
		},
	}
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func kinds(diagnostics []shared.Diagnostic) map[string]shared.ErrorKind {
	out := make(map[string]shared.ErrorKind)
	for _, d := range diagnostics {
		out[d.Sheet] = d.Kind
	}
	return out
}

// region Parse tests

func TestParse_Workbook(t *testing.T) {
	var notified []shared.Diagnostic
	record, diagnostics, err := Parse(testWorkbook(), Options{
		Registry: testRegistry(t),
		Notifier: shared.NotifierFunc(func(d shared.Diagnostic) { notified = append(notified, d) }),
		Logger:   quiet(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Tavaszi Kupa", record.TournamentName)
	assert.Equal(t, "Budapest", record.City)
	assert.Equal(t, shared.Dates{StartDate: "2021-05-01", EndDate: "2021-05-03"}, record.Dates)
	assert.Equal(t, "Tavaszi_Kupa_Budapest__2021-05-01", record.TournamentID)
	assert.Equal(t, "TEST-1", record.ProviderID)
	assert.Equal(t, "TEST", record.Organization)

	require.Len(t, record.Draws, 2)
	ms := record.Draws[0]
	assert.Equal(t, "MS", ms.SheetName)
	assert.Equal(t, shared.Knockout, ms.DrawType)
	assert.Equal(t, shared.Singles, ms.DrawFormat)
	assert.Equal(t, "Férfi egyes", ms.Event)
	assert.Equal(t, "M", ms.Gender)
	assert.Len(t, ms.MatchUps, 3)
	assert.Len(t, ms.Entries, 4)

	rr := record.Draws[1]
	assert.Equal(t, "RR A", rr.SheetName)
	assert.Equal(t, shared.RoundRobin, rr.DrawType)
	assert.Len(t, rr.MatchUps, 3)

	// the same players appear in both draws
	assert.Len(t, record.Participants, 4)

	found := kinds(diagnostics)
	assert.Equal(t, shared.KindInvalidBracketSize, found["WS"])
	assert.Equal(t, shared.KindSheetUnclassified, found["Notes"])
	assert.NotContains(t, found, "MS")
	assert.Equal(t, diagnostics, notified)
}

func TestParse_Idempotent(t *testing.T) {
	opts := Options{Registry: testRegistry(t), Logger: quiet()}
	first, _, err := Parse(testWorkbook(), opts)
	require.NoError(t, err)
	second, _, err := Parse(testWorkbook(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse_SheetFilter(t *testing.T) {
	record, diagnostics, err := Parse(testWorkbook(), Options{Registry: testRegistry(t), SheetFilter: "rr",
		Logger: quiet()})
	require.NoError(t, err)

	require.Len(t, record.Draws, 1)
	assert.Equal(t, "RR A", record.Draws[0].SheetName)
	// filtered draw sheets are not reconstructed, classification still covers every sheet
	assert.Equal(t, map[string]shared.ErrorKind{"Notes": shared.KindSheetUnclassified}, kinds(diagnostics))
}

func TestParse_SheetFilterKeepsTournamentInfo(t *testing.T) {
	unfiltered, _, err := Parse(testWorkbook(), Options{Registry: testRegistry(t), Logger: quiet()})
	require.NoError(t, err)
	filtered, _, err := Parse(testWorkbook(), Options{Registry: testRegistry(t), SheetFilter: "MS", Logger: quiet()})
	require.NoError(t, err)

	assert.Equal(t, "Tavaszi Kupa", filtered.TournamentName)
	assert.Equal(t, "Budapest", filtered.City)
	assert.Equal(t, unfiltered.Dates, filtered.Dates)
	assert.Equal(t, unfiltered.TournamentID, filtered.TournamentID)
	require.Len(t, filtered.Draws, 1)
	assert.Equal(t, "MS", filtered.Draws[0].SheetName)
}

func TestParse_SheetFilterKeepsInfoFromDrawSheets(t *testing.T) {
	cells := knockoutSheet()
	cells["A12"] = "Tournament"
	cells["B12"] = "Őszi Kupa"
	wb := shared.Workbook{SheetNames: []string{"MS"}, Sheets: map[string]shared.Sheet{"MS": cells}}

	record, _, err := Parse(wb, Options{Registry: testRegistry(t), SheetFilter: "ws", Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, "Őszi Kupa", record.TournamentName)
	assert.Empty(t, record.Draws)
}

func TestParse_InfoFromDrawSheets(t *testing.T) {
	cells := knockoutSheet()
	cells["A12"] = "Tournament"
	cells["B12"] = "Őszi Kupa"
	wb := shared.Workbook{SheetNames: []string{"MS"}, Sheets: map[string]shared.Sheet{"MS": cells}}

	record, _, err := Parse(wb, Options{Registry: testRegistry(t), Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, "Őszi Kupa", record.TournamentName)
	assert.Equal(t, map[string]string{"referee": "Kiss Anna"}, record.Info)
	require.Len(t, record.Draws, 1)
}

func TestParse_WorkbookUnidentified(t *testing.T) {
	wb := shared.Workbook{SheetNames: []string{"Sheet1"}, Sheets: map[string]shared.Sheet{"Sheet1": {}}}
	record, diagnostics, err := Parse(wb, Options{Registry: testRegistry(t), Logger: quiet()})

	assert.ErrorIs(t, err, shared.ErrWorkbookUnidentified)
	assert.Empty(t, record.Draws)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, shared.SeverityError, diagnostics[0].Severity)
}

func TestParse_MissingProfile(t *testing.T) {
	// the later registration wins and has no profile
	registry := testRegistry(t, profile.WorkbookType{Organization: "TP", MustContainSheetNames: []string{"WS"}})
	_, diagnostics, err := Parse(testWorkbook(), Options{Registry: registry, Logger: quiet()})

	assert.ErrorIs(t, err, shared.ErrMissingProfile)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, shared.KindMissingProfile, diagnostics[0].Kind)
}

func TestParse_NoRegistry(t *testing.T) {
	_, _, err := Parse(testWorkbook(), Options{})
	assert.Error(t, err)
}

// endregion
