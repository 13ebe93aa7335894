/* record_test.go
 * Contains unit tests for draw assembly and the tournament record builder
 * Authors: Zachary Bower
 */

package record

import (
	"testing"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func player(dp, seed, rank int, name, id string) shared.Participant {
	return shared.Participant{DrawPosition: dp, Seed: seed, Rank: rank, FullName: name, Hash: id, ParticipantID: id + "-P"}
}

func testDraw() DrawInput {
	smith := player(1, 1, 10, "Smith, John", "smith")
	jones := player(2, 0, 40, "Jones, Tom", "jones")
	brown := player(3, 2, 20, "Brown, Bob", "brown")
	green := player(4, 0, 0, "Green, Gary", "green")
	return DrawInput{
		SheetName: "FS",
		Type:      shared.Knockout,
		Format:    shared.Singles,
		Info:      map[string]string{"event": "Férfi egyes", "gender": "M"},
		Draw: shared.Draw{
			Stage: shared.StageMain,
			MatchUps: []shared.MatchUp{
				{DrawPositions: []int{1, 3}, WinningSide: []shared.Participant{smith}, LosingSide: []shared.Participant{brown},
					Result: "6-4 6-4", RoundName: "F", RoundNumber: 2, RoundPosition: 1, FinishingRound: 1},
				{DrawPositions: []int{1, 2}, WinningSide: []shared.Participant{smith}, LosingSide: []shared.Participant{jones},
					Result: "6-3 6-4", RoundName: "SF", RoundNumber: 1, RoundPosition: 1, FinishingRound: 2},
				{DrawPositions: []int{3, 4}, WinningSide: []shared.Participant{green}, LosingSide: []shared.Participant{brown},
					Result: "7-5 6-2", RoundName: "SF", RoundNumber: 1, RoundPosition: 2, FinishingRound: 2},
			},
		},
	}
}

// region Draw tests

func TestAssembleDraw(t *testing.T) {
	assembled := AssembleDraw(testDraw())
	draw := assembled.Draw

	assert.Len(t, assembled.Participants, 4)
	assert.Len(t, assembled.Participantships, 4)
	require.Len(t, draw.Entries, 4)
	assert.Equal(t, shared.Entry{ParticipantID: "brown-P", CategoryRanking: 20}, draw.Entries[0])

	assert.Equal(t, []shared.SeedAssignment{
		{ParticipantID: "smith-P", SeedNumber: 1},
		{ParticipantID: "brown-P", SeedNumber: 2},
	}, draw.Structure.SeedAssignments)

	positions := draw.Structure.PositionAssignments
	require.Len(t, positions, 4)
	for i, pa := range positions {
		assert.Equal(t, i+1, pa.DrawPosition)
	}

	assert.Regexp(t, `^[0-9a-f]{12}$`, draw.DrawID)
	assert.Regexp(t, `^[0-9a-f]{12}-S$`, draw.Structure.StructureID)
	assert.Equal(t, "roundOutcome", draw.Structure.FinishingPosition)
	assert.Equal(t, 1, draw.Structure.StageSequence)
	assert.Equal(t, "Férfi egyes", draw.Event)
	assert.Equal(t, "M", draw.Gender)

	final := draw.Structure.MatchUps[0]
	assert.Equal(t, draw.DrawID+"-F-1.3-M", final.MatchUpID)
	assert.Equal(t, 1, final.WinningSide)
	assert.Equal(t, "6-4 6-4", final.Score)
	assert.Equal(t, 2, draw.Structure.MatchUps[2].WinningSide)
	assert.Equal(t, final.MatchUpID, draw.MatchUps[0].MatchUpID)
	assert.Equal(t, "Férfi egyes", draw.MatchUps[0].Event)
}

func TestAssembleDraw_Idempotent(t *testing.T) {
	first := AssembleDraw(testDraw())
	second := AssembleDraw(testDraw())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("AssembleDraw is not deterministic (-first +second):\n%s", diff)
	}

	// matchUp order does not change the draw id
	reordered := testDraw()
	m := reordered.Draw.MatchUps
	m[0], m[2] = m[2], m[0]
	assert.Equal(t, first.Draw.DrawID, AssembleDraw(reordered).Draw.DrawID)

	// a different sheet does
	renamed := testDraw()
	renamed.SheetName = "NS"
	assert.NotEqual(t, first.Draw.DrawID, AssembleDraw(renamed).Draw.DrawID)
}

func TestAssembleDraw_DoublesAndByes(t *testing.T) {
	a := player(1, 1, 5, "Smith, John", "smith")
	b := player(1, 1, 7, "Jones, Tom", "jones")
	bye := shared.Participant{DrawPosition: 2, FullName: "BYE", Hash: "byebye"}
	in := DrawInput{SheetName: "FD", Format: shared.Doubles, Draw: shared.Draw{MatchUps: []shared.MatchUp{
		{DrawPositions: []int{1, 1}, WinningSide: []shared.Participant{a, b}, LosingSide: []shared.Participant{bye}},
	}}}

	assembled := AssembleDraw(in)
	assert.Len(t, assembled.Participants, 2)
	require.Len(t, assembled.Participantships, 1)
	ps, ok := assembled.Participantships["jones-P|smith-P"]
	require.True(t, ok)
	assert.Equal(t, []string{"jones-P", "smith-P"}, ps.ParticipantIDs)
	assert.Equal(t, 1, ps.SeedNumber)
	assert.Equal(t, 7, assembled.Draw.Entries[0].CategoryRanking)
}

// endregion

// region Record tests

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	info := sheet.NewInfo()
	info.Values["tournamentName"] = "Tavaszi Kupa"
	info.Values["city"] = "Budapest"
	info.Values["startDate"] = "2021-05-01"
	info.Values["endDate"] = "2021-05-03"
	info.Values["referee"] = "Kiss Anna"
	info.Lists["categories"] = []string{"U12", "U14"}
	b.SetInfo(info)

	// later values do not override
	later := sheet.NewInfo()
	later.Values["city"] = "Szeged"
	b.SetInfo(later)

	draw := b.AddDraw(testDraw())
	record := b.Record("HTS-1", "HTS")

	assert.Equal(t, "Tavaszi_Kupa_Budapest_U12U14_2021-05-01", record.TournamentID)
	assert.Equal(t, "Budapest", record.City)
	assert.Equal(t, shared.Dates{StartDate: "2021-05-01", EndDate: "2021-05-03"}, record.Dates)
	assert.Equal(t, map[string]string{"referee": "Kiss Anna"}, record.Info)
	assert.Equal(t, "HTS-1", record.ProviderID)
	assert.Equal(t, "HTS", record.Organization)
	require.Len(t, record.Draws, 1)
	assert.Equal(t, draw.DrawID, record.Draws[0].DrawID)
	assert.Len(t, record.Participants, 4)
	assert.Len(t, record.Participantships, 4)
}

// endregion
