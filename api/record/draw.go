/* draw.go
 * Contains draw assembly: entries, seed and position assignments derived from a draw's matchUps, and the content
 * derived draw, structure and matchUp ids
 * Authors: Zachary Bower
 */

package record

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"
	"tournament-importer/api/normalize"
	"tournament-importer/api/shared"
)

const finishingPosition = "roundOutcome"

// DrawInput is one reconstructed draw with the metadata read from its sheet
type DrawInput struct {
	SheetName string
	Type      shared.SheetType
	Format    shared.MatchType
	Draw      shared.Draw
	// Info holds the draw info attributes (event, gender, category, ...)
	Info map[string]string
}

// Assembled is a draw ready to be added to a tournament record
type Assembled struct {
	Draw             shared.DrawInfo
	Participants     map[string]shared.Participant
	Participantships map[string]shared.Participantship
}

// AssembleDraw derives entries, assignments and ids from a reconstructed draw
// Preconditions: Receives a draw whose matchUps carry their sides
// Postconditions: Returns the assembled draw; every id depends only on the draw's content
func AssembleDraw(in DrawInput) Assembled {
	players := make(map[string]shared.Participant)
	participantships := make(map[string]shared.Participantship)
	for _, m := range in.Draw.MatchUps {
		for _, side := range [][]shared.Participant{m.WinningSide, m.LosingSide} {
			addSide(side, players, participantships)
		}
	}

	ids := slices.Sorted(maps.Keys(participantships))
	entries := make([]shared.Entry, 0, len(ids))
	seeds := make([]shared.SeedAssignment, 0)
	positions := make([]shared.PositionAssignment, 0, len(ids))
	for _, id := range ids {
		ps := participantships[id]
		entry := shared.Entry{ParticipantID: id}
		if p, ok := players[ps.ParticipantIDs[0]]; ok {
			entry.CategoryRanking = p.Rank
		}
		entries = append(entries, entry)
		positions = append(positions, shared.PositionAssignment{ParticipantID: id, DrawPosition: ps.DrawPosition})
		if ps.SeedNumber > 0 {
			seeds = append(seeds, shared.SeedAssignment{ParticipantID: id, SeedNumber: ps.SeedNumber})
		}
	}
	slices.SortStableFunc(seeds, func(a, b shared.SeedAssignment) int { return cmp.Compare(a.SeedNumber, b.SeedNumber) })
	slices.SortStableFunc(positions, func(a, b shared.PositionAssignment) int {
		return cmp.Compare(a.DrawPosition, b.DrawPosition)
	})

	info := shared.DrawInfo{
		SheetName:  in.SheetName,
		DrawType:   in.Type,
		DrawFormat: in.Format,
		Stage:      in.Draw.Stage,
		Event:      in.Info["event"],
		Gender:     in.Info["gender"],
		Category:   in.Info["category"],
		Info:       in.Info,
		Entries:    entries,
		Preround:   in.Draw.Preround,
	}

	fodder := drawFodder(info, len(in.Draw.MatchUps), len(entries), len(positions), len(seeds))
	info.DrawID = normalize.HashID(fodder)

	structureMatchUps := make([]shared.StructureMatchUp, 0, len(in.Draw.MatchUps))
	info.MatchUps = make([]shared.MatchUp, 0, len(in.Draw.MatchUps))
	for _, m := range in.Draw.MatchUps {
		drawPositions := uniqueSorted(m.DrawPositions)
		m.MatchUpID = matchUpID(info.DrawID, m.RoundName, drawPositions)
		m.Event = info.Event
		info.MatchUps = append(info.MatchUps, m)

		winningSide := 2
		if len(drawPositions) > 0 && m.WinningDrawPosition() == drawPositions[0] {
			winningSide = 1
		}
		structureMatchUps = append(structureMatchUps, shared.StructureMatchUp{
			MatchUpID:      m.MatchUpID,
			DrawPositions:  drawPositions,
			Score:          m.Result,
			RoundName:      m.RoundName,
			RoundNumber:    m.RoundNumber,
			RoundPosition:  m.RoundPosition,
			FinishingRound: m.FinishingRound,
			WinningSide:    winningSide,
		})
	}

	info.Structure = shared.Structure{
		StructureID:         normalize.HashID(fodder+info.Stage) + "-S",
		Stage:               info.Stage,
		StageSequence:       1,
		SeedAssignments:     seeds,
		PositionAssignments: positions,
		MatchUps:            structureMatchUps,
		FinishingPosition:   finishingPosition,
	}
	return Assembled{Draw: info, Participants: players, Participantships: participantships}
}

// addSide records the players of one side and the participantship they form. Bye sides are skipped
func addSide(side []shared.Participant, players map[string]shared.Participant,
	participantships map[string]shared.Participantship) {
	var ids []string
	for _, p := range side {
		if p.IsBye() {
			continue
		}
		players[p.ParticipantID] = p
		ids = append(ids, p.ParticipantID)
	}
	if len(ids) == 0 {
		return
	}
	slices.Sort(ids)
	participantships[strings.Join(ids, "|")] = shared.Participantship{
		DrawPosition:   side[0].DrawPosition,
		SeedNumber:     side[0].Seed,
		ParticipantIDs: ids,
	}
}

// drawFodder builds the string a draw id is hashed from: the sizes of the draw's lists and its metadata values,
// sorted so that neither map order nor matchUp order changes it
func drawFodder(info shared.DrawInfo, sizes ...int) string {
	parts := make([]string, 0, len(sizes)+8+len(info.Info))
	for _, size := range sizes {
		parts = append(parts, strconv.Itoa(size))
	}
	for _, v := range []string{info.SheetName, string(info.DrawType), string(info.DrawFormat), info.Stage,
		info.Event, info.Gender, info.Category} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	for _, v := range info.Info {
		if v != "" {
			parts = append(parts, v)
		}
	}
	slices.Sort(parts)
	return strings.Join(parts, "")
}

func matchUpID(drawID, roundName string, drawPositions []int) string {
	positions := make([]string, 0, len(drawPositions))
	for _, dp := range drawPositions {
		positions = append(positions, strconv.Itoa(dp))
	}
	return drawID + "-" + roundName + "-" + strings.Join(positions, ".") + "-M"
}

func uniqueSorted(values []int) []int {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
