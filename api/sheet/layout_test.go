/* layout_test.go
 * Contains unit tests for sheet classification, column discovery, gaps and info extraction
 * Authors: Zachary Bower
 */

package sheet

import (
	"testing"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		ColumnsMap: map[string]string{
			profile.ColPosition: "A",
			profile.ColRounds:   "E",
			profile.ColClub:     "",
		},
		KnockOutRounds: []string{"Final"},
		RowDefinitions: []profile.RowDefinition{
			{Type: profile.Header, ID: "knockoutParticipants", Elements: []string{"Rang", "Név", "Egyesület", "Döntő"}, Rows: 1, MinimumElements: 3},
			{Type: profile.Footer, ID: "drawFooter", Elements: []string{"Rangsor", "Kiemeltek", "Sorsolás ideje"}, Rows: 3, MinimumElements: 2},
			{Type: profile.Header, ID: "empty", Elements: nil, Rows: 1, MinimumElements: 0},
		},
		SheetDefinitions: []profile.SheetDefinition{
			{Type: shared.Information, RowIDs: []string{"tournamentInfo"}},
			{Type: shared.Knockout, RowIDs: []string{"knockoutParticipants", "drawFooter"}},
			{Type: shared.Participants, RowIDs: []string{"empty"}},
		},
		HeaderColumns: []profile.HeaderColumn{
			{Attr: profile.ColPlayers, Header: "Név"},
			{Attr: profile.ColClub, Header: "Egyesület:"},
		},
	}
}

func knockoutGrid() *Grid {
	return NewGrid("FS", shared.Sheet{
		"A3":  "Rang",
		"C3":  "név",
		"D3":  "EGYESÜLET",
		"E3":  "2. forduló",
		"F3":  "Döntő",
		"G3":  "Final",
		"A4":  "1",
		"C4":  "Smith, John",
		"A5":  "2",
		"C5":  "Jones, Tom",
		"A12": "Rangsor",
		"C12": "Kiemeltek",
	})
}

// region Classify tests

func TestFindRows(t *testing.T) {
	g := knockoutGrid()
	p := testProfile()

	assert.Equal(t, []int{3}, FindRows(g, p.RowDefinitions[0]))
	assert.Equal(t, []int{12}, FindRows(g, p.RowDefinitions[1]))
	assert.Empty(t, FindRows(g, p.RowDefinitions[2]))
}

func TestClassify_Knockout(t *testing.T) {
	layout, ok := Classify(knockoutGrid(), testProfile())
	require.True(t, ok)

	assert.Equal(t, shared.Knockout, layout.Definition.Type)
	assert.Equal(t, 3, layout.HeaderRow)
	assert.Equal(t, 12, layout.FooterRow)
	assert.True(t, layout.AvoidRows[3])
	assert.True(t, layout.AvoidRows[14])
	assert.False(t, layout.AvoidRows[15])
	assert.Equal(t, "C", layout.Column(profile.ColPlayers))
	assert.Equal(t, "D", layout.Column(profile.ColClub))
	assert.Equal(t, "A", layout.Column(profile.ColPosition))
}

func TestClassify_Unclassified(t *testing.T) {
	g := NewGrid("Notes", shared.Sheet{"A1": "Rang", "B1": "Név"})
	_, ok := Classify(g, testProfile())
	assert.False(t, ok)
}

func TestRoundColumns(t *testing.T) {
	g := knockoutGrid()
	p := testProfile()
	layout, ok := Classify(g, p)
	require.True(t, ok)

	assert.Equal(t, []string{"E", "F", "G"}, RoundColumns(g, p, layout))

	// no rounds column: only cells naming a round
	delete(p.ColumnsMap, profile.ColRounds)
	layout.Columns = HeaderColumns(g, p, layout.HeaderRow)
	assert.Equal(t, []string{"G"}, RoundColumns(g, p, layout))
}

// endregion

// region Gap tests

func TestFindGaps(t *testing.T) {
	g := NewGrid("MS", shared.Sheet{
		"B1":  "Round 1",
		"B2":  "Round 1",
		"B10": "Round 1",
		"B20": "Round 1 Q",
		"B22": "round 1",
	})

	// runs: [0,2] [10,10] [20,20] [22,22]
	assert.Equal(t, [][2]int{{2, 10}, {10, 20}}, FindGaps(g, "Round 1", 3))
	assert.Equal(t, [][2]int{{10, 20}}, FindGaps(g, "Round 1", 8))
	assert.Empty(t, FindGaps(g, "Missing", 3))
}

// endregion

// region Info tests

func TestExtractInfo(t *testing.T) {
	g := NewGrid("Altalanos", shared.Sheet{
		"A1": "A verseny neve",
		"A2": "Budapest Open",
		"B1": "A verseny dátuma (éééé.hh.nn)",
		"B2": "2021.05.01-03",
		"C1": "Versenyszám 1",
		"C2": "FS",
		"D2": "LS",
		"F2": "FP",
		"A5": "Versenyszám:",
		"F5": "FS",
	})
	rules := []profile.InfoRule{
		{Attribute: "tournamentName", SearchText: "A verseny neve", RowOffset: 1},
		{Attribute: "dates", SearchText: "A verseny dátuma (éééé.hh.nn)", RowOffset: 1, PostProcessor: "dateParser"},
		{Attribute: "categories", SearchText: "Versenyszám 1", RowOffset: 1, ColumnOffsets: []int{0, 1, 2, 3}},
		{Attribute: "event", SearchText: "Versenyszám", ColumnOffset: 5},
		{Attribute: "event", SearchText: "Versenyszám", ColumnOffset: 4},
		{Attribute: "gender", SearchText: "Versenyszám", ColumnOffset: 5, PostProcessor: "genderParser"},
		{Attribute: "city", SearchText: "Város", RowOffset: 1},
	}

	info, err := ExtractInfo(g, rules)
	require.NoError(t, err)

	assert.Equal(t, "Budapest Open", info.Values["tournamentName"])
	assert.Equal(t, "2021-05-01", info.Values["startDate"])
	assert.Equal(t, "2021-05-03", info.Values["endDate"])
	assert.Equal(t, []string{"FS", "LS", "FP"}, info.Lists["categories"])
	assert.Equal(t, "FS", info.Values["event"])
	assert.Equal(t, "M", info.Values["gender"])
	assert.NotContains(t, info.Values, "city")
}

func TestInfo_Merge(t *testing.T) {
	a := NewInfo()
	a.Values["city"] = "Pécs"
	b := NewInfo()
	b.Values["city"] = "Győr"
	b.Values["referee"] = "Kiss"
	b.Lists["categories"] = []string{"FS"}

	a.Merge(b)

	assert.Equal(t, "Pécs", a.Values["city"])
	assert.Equal(t, "Kiss", a.Values["referee"])
	assert.Equal(t, []string{"FS"}, a.Lists["categories"])
}

// endregion
