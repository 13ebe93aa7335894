/* roundrobin_test.go
 * Contains unit tests for round robin score handling and matrix reconstruction
 * Authors: Zachary Bower
 */

package roundrobin

import (
	"testing"
	"tournament-importer/api/participants"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupSheet() shared.Sheet {
	return shared.Sheet{
		"A1": "#", "C1": "Name", "F1": "1", "G1": "2", "H1": "3", "I1": "Result",
		"A2": "1", "C2": "Smith, John", "F2": "X", "G2": "6-2 6-1", "H2": "6-0 6-0", "I2": "1",
		"A3": "2", "C3": "Jones, Tom", "F3": "2-6 1-6", "G3": "X", "H3": "6-4 6-4", "I3": "2",
		"A4": "3", "C4": "Brown, Bob", "F4": "0-6 0-6", "G4": "4-6 4-6", "H4": "X", "I4": "3",
	}
}

func input(t *testing.T, name string, cells shared.Sheet) Input {
	t.Helper()
	g := sheet.NewGrid(name, cells)
	p := &profile.Profile{
		PlayerRows:    profile.PlayerRows{PlayerNames: true},
		MatchOutcomes: []string{"jn", "feladta", "w.o."},
	}
	layout := sheet.Layout{
		HeaderRow: 1,
		FooterRow: 20,
		AvoidRows: map[int]bool{1: true, 20: true},
		Columns: map[string]string{
			profile.ColPosition:         "A",
			profile.ColPlayers:          "C",
			profile.ColRounds:           "F",
			profile.ColRoundRobinResult: "I",
		},
	}
	roster := participants.Extract(g, p, layout, participants.FindRows(g, p, layout), "W")
	require.True(t, roster.RoundRobin)
	return Input{Grid: g, Profile: p, Layout: layout, Roster: roster, Gender: "W"}
}

type pairing struct {
	winner, loser int
	result, round string
}

func pairings(matchUps []shared.MatchUp) []pairing {
	var out []pairing
	for _, m := range matchUps {
		out = append(out, pairing{m.WinningDrawPosition(), m.LosingDrawPosition(), m.Result, m.RoundName})
	}
	return out
}

// region Score tests

func TestWinner(t *testing.T) {
	tests := []struct {
		score    string
		expected Side
	}{
		{"6-2 6-1", RowPlayer},
		{"2-6 1-6", Opponent},
		{"6-4 3-6 [10-8]", RowPlayer},
		{"7-6(5) 4-6 6-7(3)", Opponent},
		{"6-4 4-6", Undetermined},
		{"W.O.", Undetermined},
		{"", Undetermined},
	}
	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			assert.Equal(t, tt.expected, Winner(tt.score))
		})
	}
}

func TestReverse(t *testing.T) {
	assert.Equal(t, "6-2 6-1", Reverse("2-6 1-6"))
	assert.Equal(t, "7-6(5) 6-4", Reverse("6-7(5) 4-6"))
	assert.Equal(t, "6-4 3-6 [10-8]", Reverse("4-6 6-3 [8-10]"))
	assert.Equal(t, "6-3 2-1 RET", Reverse("3-6 1-2 RET"))
	assert.Equal(t, "W.O.", Reverse("W.O."))
}

func TestWalkover(t *testing.T) {
	side, ok := walkover("jn")
	assert.True(t, ok)
	assert.Equal(t, RowPlayer, side)

	side, ok = walkover("Megsérült")
	assert.True(t, ok)
	assert.Equal(t, Opponent, side)

	side, ok = walkover("feladta")
	assert.True(t, ok)
	assert.Equal(t, Opponent, side)

	_, ok = walkover("6-3 6-4")
	assert.False(t, ok)
}

// endregion

// region Reconstruct tests

func TestReconstruct_Matrix(t *testing.T) {
	draw, err := Reconstruct(input(t, "RR A", groupSheet()))
	require.NoError(t, err)

	assert.Equal(t, shared.StageMain, draw.Stage)
	assert.Equal(t, []pairing{
		{1, 2, "6-2 6-1", "RR"},
		{1, 3, "6-0 6-0", "RR"},
		{2, 3, "6-4 6-4", "RR"},
	}, pairings(draw.MatchUps))

	require.Len(t, draw.Rounds, 1)
	m := draw.MatchUps[0]
	assert.Equal(t, []int{1, 2}, m.DrawPositions)
	assert.Equal(t, 1, m.GroupNumber)
	assert.Equal(t, "W", m.Gender)
	assert.Equal(t, "Smith, John", m.WinningSide[0].FullName)
}

func TestReconstruct_Symmetry(t *testing.T) {
	// only the winner's row
	fromWinner := groupSheet()
	delete(fromWinner, "F3")
	drawA, err := Reconstruct(input(t, "RR A", fromWinner))
	require.NoError(t, err)

	// only the loser's row, written from the loser's side
	fromLoser := groupSheet()
	delete(fromLoser, "G2")
	drawB, err := Reconstruct(input(t, "RR A", fromLoser))
	require.NoError(t, err)

	assert.ElementsMatch(t, pairings(drawA.MatchUps), pairings(drawB.MatchUps))
	assert.Contains(t, pairings(drawB.MatchUps), pairing{1, 2, "6-2 6-1", "RR"})
}

func TestReconstruct_WalkoverNotes(t *testing.T) {
	cells := groupSheet()
	cells["H3"] = "jn"
	cells["G4"] = "feladta"

	draw, err := Reconstruct(input(t, "RR A", cells))
	require.NoError(t, err)

	assert.Contains(t, pairings(draw.MatchUps), pairing{2, 3, "W.O.", "RR"})
	assert.Len(t, draw.MatchUps, 3)
}

func TestReconstruct_UndeterminedDropped(t *testing.T) {
	cells := groupSheet()
	cells["H3"] = "6-4 4-6"
	cells["G4"] = "4-6 6-4"

	draw, err := Reconstruct(input(t, "RR A", cells))
	require.NoError(t, err)
	assert.Len(t, draw.MatchUps, 2)
}

func TestReconstruct_QualifyingAndPlayoff(t *testing.T) {
	cells := groupSheet()
	cells["J8"] = "Playoff"
	cells["K8"] = "Jones"
	cells["L8"] = "vs."
	cells["M8"] = "Brown"
	cells["N8"] = "3-6 2-6"

	draw, err := Reconstruct(input(t, "RR Q1", cells))
	require.NoError(t, err)

	assert.Equal(t, shared.StageQualifying, draw.Stage)
	require.Len(t, draw.Rounds, 2)
	assert.Len(t, draw.Rounds[1], 1)
	assert.Zero(t, draw.Rounds[1][0].GroupNumber)
	got := pairings(draw.MatchUps)
	assert.Contains(t, got, pairing{1, 2, "6-2 6-1", "RR"})
	assert.Equal(t, pairing{3, 2, "6-3 6-2", "Playoff"}, got[len(got)-1])
}

func TestReconstruct_TwoGroups(t *testing.T) {
	cells := groupSheet()
	cells["B5"] = "Group B"
	for ref, v := range map[string]string{
		"A6": "4", "C6": "Black, Jack", "F6": "X", "G6": "6-1 6-1", "H6": "2-6 2-6", "I6": "2",
		"A7": "5", "C7": "White, Walt", "F7": "1-6 1-6", "G7": "X", "H7": "3-6 3-6", "I7": "3",
		"A8": "6", "C8": "Gray, Greg", "F8": "6-2 6-2", "G8": "6-3 6-3", "H8": "X", "I8": "1",
	} {
		cells[ref] = v
	}

	draw, err := Reconstruct(input(t, "RR", cells))
	require.NoError(t, err)

	require.Len(t, draw.Rounds, 2)
	assert.Equal(t, []pairing{
		{1, 2, "6-2 6-1", "RR"},
		{1, 3, "6-0 6-0", "RR"},
		{2, 3, "6-4 6-4", "RR"},
	}, pairings(draw.Rounds[0]))
	assert.Equal(t, []pairing{
		{4, 5, "6-1 6-1", "RR"},
		{6, 4, "6-2 6-2", "RR"},
		{6, 5, "6-3 6-3", "RR"},
	}, pairings(draw.Rounds[1]))
	for _, m := range draw.Rounds[1] {
		assert.Equal(t, 2, m.GroupNumber)
		for _, dp := range m.DrawPositions {
			assert.GreaterOrEqual(t, dp, 4, "group B matchUp paired with a group A player")
		}
	}
	assert.Len(t, draw.MatchUps, 6)
}

func TestReconstruct_NoResults(t *testing.T) {
	cells := groupSheet()
	for _, ref := range []string{"G2", "H2", "F3", "H3", "F4", "G4"} {
		delete(cells, ref)
	}
	_, err := Reconstruct(input(t, "RR A", cells))
	assert.ErrorIs(t, err, shared.ErrNoRounds)
}

// endregion
