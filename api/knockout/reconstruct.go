/* reconstruct.go
 * Contains the knockout reconstructor. Round columns are scanned left to right, then the rounds are reversed so
 * matchUps are built from the final outward: the players eliminated in a round are the leads of the round before it
 * that did not advance
 * Authors: Zachary Bower
 */

package knockout

import (
	"fmt"
	"slices"
	"strconv"
	"tournament-importer/api/normalize"
	"tournament-importer/api/participants"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"
)

// RoundNames are the knockout round names indexed from the final
var RoundNames = []string{"F", "SF", "QF", "R16", "R32", "R64", "R128", "R256"}

const (
	thirdPlaceRound = "PO3"
	qualifyingRound = "Q"
)

// Input is what the reconstructor reads from one knockout sheet
type Input struct {
	Grid     *sheet.Grid
	Profile  *profile.Profile
	Layout   sheet.Layout
	Roster   participants.Roster
	Gender   string
	Notifier shared.Notifier
}

type reconstruction struct {
	Input
	lookup  *participants.Lookup
	scorer  *normalize.ScoreNormalizer
	columns []string
	size    int
}

// Reconstruct rebuilds the matchUps of a knockout draw
// Preconditions: Receives a classified knockout sheet and its roster
// Postconditions: Returns the draw, or a ParseError of kind InvalidBracketSize when the number of draw positions is
// not a power of two, or NoRounds when no round column holds results
func Reconstruct(in Input) (shared.Draw, error) {
	positions := in.Roster.DrawPositions()
	if !validBracket(len(positions)) {
		return shared.Draw{}, &shared.ParseError{
			Kind:    shared.KindInvalidBracketSize,
			Sheet:   in.Grid.Name,
			Message: fmt.Sprintf("%d draw positions", len(positions)),
		}
	}

	r := reconstruction{
		Input:   in,
		lookup:  participants.NewLookup(in.Roster.Players),
		scorer:  normalize.NewScoreNormalizer(in.Profile.MatchOutcomes),
		columns: sheet.RoundColumns(in.Grid, in.Profile, in.Layout),
		size:    len(positions),
	}
	rounds, firstRound := r.rounds()
	if len(rounds) == 0 {
		return shared.Draw{}, &shared.ParseError{Kind: shared.KindNoRounds, Sheet: in.Grid.Name}
	}

	slices.Reverse(rounds)
	rounds = append(rounds, entryRound(rounds, positions, firstRound))

	stage := shared.StageMain
	if !isMain(rounds) {
		stage = shared.StageQualifying
	}
	draw := shared.Draw{Stage: stage}
	draw.Rounds = r.matchUps(rounds, stage)
	for _, round := range draw.Rounds {
		draw.MatchUps = append(draw.MatchUps, round...)
	}
	draw.Preround = r.preround(len(rounds))
	if po3, ok := r.thirdPlace(); ok {
		draw.MatchUps = append(draw.MatchUps, po3)
	}
	return draw, nil
}

func validBracket(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

// rounds scans the round columns. Leading columns without any result list the first round rather than record it
func (r reconstruction) rounds() ([][]Group, []int) {
	data := NonEmpty(RoundData(r.Grid, r.columns, r.Roster.Start, r.Roster.End, r.lookup, r.scorer, r.Notifier))

	var rounds [][]Group
	var firstRound []int
	leading := true
	for _, column := range data {
		scan := ScanColumn(column.Cells, r.lookup, r.scorer)
		for _, c := range scan.Unparsable {
			shared.Report(r.Notifier, shared.KindUnparsableScore, shared.SeverityWarning, r.Grid.Name, c.Ref,
				fmt.Sprintf("score %q kept as written", c.Value))
		}
		if leading && !slices.ContainsFunc(scan.Groups, Group.HasResult) {
			firstRound = nil
			for _, g := range scan.Groups {
				firstRound = append(firstRound, g.Winners...)
			}
			continue
		}
		leading = false
		for _, round := range splitEmbedded(scan, r.Profile.EmbeddedRecurrence(), r.Grid.Name, column.Name, r.Notifier) {
			if len(round) > 0 {
				rounds = append(rounds, round)
			}
		}
	}
	return rounds, firstRound
}

// entryRound synthesizes the first round: every draw position that never advanced enters as its own group
func entryRound(rounds [][]Group, positions, firstRound []int) []Group {
	advanced := make(map[int]bool)
	for _, round := range rounds {
		for _, g := range round {
			for _, dp := range g.Winners {
				advanced[dp] = true
			}
		}
	}
	var entries []Group
	for _, dp := range positions {
		if advanced[dp] || (len(firstRound) > 0 && !slices.Contains(firstRound, dp)) {
			continue
		}
		entries = append(entries, Group{Players: []int{dp}})
	}
	return entries
}

// isMain reports whether the reversed rounds end in a single final. A qualifying draw ends with several qualifiers
func isMain(rounds [][]Group) bool {
	if len(rounds[0]) == 1 {
		return true
	}
	return len(rounds) > 1 && len(rounds[0]) == 2 && len(rounds[1]) == 4
}

func roundName(i, count, size int, stage string) string {
	if stage == shared.StageQualifying {
		if i == 0 {
			return qualifyingRound
		}
		return qualifyingRound + strconv.Itoa(i)
	}
	if (i+2 < count || i < 3) && i < len(RoundNames) {
		return RoundNames[i]
	}
	return "R" + strconv.Itoa(size)
}

// matchUps pairs each round's groups with the players they eliminated. Only groups that closed with a result and
// eliminated a participant become matchUps
func (r reconstruction) matchUps(rounds [][]Group, stage string) [][]shared.MatchUp {
	count := len(rounds)
	var out [][]shared.MatchUp
	for i := 0; i < count-1; i++ {
		advanced := make(map[int]bool)
		for _, g := range rounds[i] {
			for _, dp := range g.Winners {
				advanced[dp] = true
			}
		}
		var eliminated []int
		for _, g := range rounds[i+1] {
			if lead := g.Lead(); lead > 0 && !advanced[lead] {
				eliminated = append(eliminated, lead)
			}
		}

		name := roundName(i, count, r.size, stage)
		var round []shared.MatchUp
		for k, g := range rounds[i] {
			if k >= len(eliminated) || !g.HasResult() {
				continue
			}
			winning := r.lookup.Participants(g.Lead())
			losing := r.lookup.Participants(eliminated[k])
			if len(winning) == 0 || len(losing) == 0 {
				continue
			}
			round = append(round, shared.MatchUp{
				DrawPositions:  sideDrawPositions(winning, losing),
				WinningSide:    winning,
				LosingSide:     losing,
				Result:         g.Result,
				RoundName:      name,
				RoundNumber:    count - 1 - i,
				RoundPosition:  k + 1,
				FinishingRound: i + 1,
				Gender:         r.Gender,
				MatchType:      r.Roster.MatchType(),
			})
		}
		out = append(out, round)
	}
	return out
}

func sideDrawPositions(sides ...[]shared.Participant) []int {
	var positions []int
	for _, side := range sides {
		for _, p := range side {
			positions = append(positions, p.DrawPosition)
		}
	}
	slices.Sort(positions)
	return positions
}

// preround rebuilds the preliminary bracket feeding the first round. Its positions are renumbered from 1 and each
// winner is linked to the main draw position it occupies
func (r reconstruction) preround(mainRounds int) []shared.MatchUp {
	rows := r.Roster.PreroundRows
	if len(rows) == 0 || len(r.columns) == 0 {
		return nil
	}
	lookup := participants.NewLookup(r.Roster.Preround)
	var cells []sheet.Cell
	for _, c := range r.Grid.ColumnBetween(r.columns[0], slices.Min(rows), slices.Max(rows)) {
		if ScoreOrPlayer(c.Value, lookup, r.scorer) {
			cells = append(cells, c)
		}
	}
	scan := ScanColumn(cells, lookup, r.scorer)

	offset := 0
	for i, p := range r.Roster.Preround {
		if i == 0 || p.DrawPosition < offset {
			offset = p.DrawPosition
		}
	}
	offset--

	advanced := make(map[int]bool)
	var winners []Group
	for _, g := range scan.Groups {
		if g.HasResult() && g.Lead() > 0 {
			winners = append(winners, g)
			advanced[g.Lead()] = true
		}
	}
	var eliminated []int
	preround := participants.Roster{Players: r.Roster.Preround}
	for _, dp := range preround.DrawPositions() {
		if !advanced[dp] {
			eliminated = append(eliminated, dp)
		}
	}

	name := ""
	if mainRounds-1 < len(RoundNames) {
		name = RoundNames[mainRounds-1]
	}
	var matchUps []shared.MatchUp
	for k, g := range winners {
		if k >= len(eliminated) {
			break
		}
		winning := renumber(lookup.Participants(g.Lead()), offset)
		losing := renumber(lookup.Participants(eliminated[k]), offset)
		if len(winning) == 0 || len(losing) == 0 {
			continue
		}
		m := shared.MatchUp{
			DrawPositions: sideDrawPositions(winning, losing),
			WinningSide:   winning,
			LosingSide:    losing,
			Result:        g.Result,
			RoundName:     name,
			RoundPosition: k + 1,
			Gender:        r.Gender,
			MatchType:     r.Roster.MatchType(),
		}
		if dp, ok := r.lookup.DrawPosition(winning[0].FullName, 0); ok {
			m.MainDrawPosition = dp
		}
		matchUps = append(matchUps, m)
	}
	return matchUps
}

func renumber(players []shared.Participant, offset int) []shared.Participant {
	out := make([]shared.Participant, 0, len(players))
	for _, p := range players {
		p.DrawPosition -= offset
		out = append(out, p)
	}
	return out
}

// thirdPlace reads the 3rd place playoff written below the draw: the semifinal losers are listed again, with the
// winner and the score in the first round column
func (r reconstruction) thirdPlace() (shared.MatchUp, bool) {
	rows := r.Roster.PlayoffRows
	if len(rows) == 0 || len(r.columns) == 0 {
		return shared.MatchUp{}, false
	}

	var winners []int
	var scores []string
	for _, c := range r.Grid.ColumnBetween(r.columns[0], slices.Min(rows), slices.Max(rows)) {
		if !ScoreOrPlayer(c.Value, r.lookup, r.scorer) {
			continue
		}
		if dp, ok := r.lookup.DrawPosition(c.Value, 0); ok {
			if !slices.Contains(winners, dp) {
				winners = append(winners, dp)
			}
			continue
		}
		if normalize.IsScore(c.Value) || r.scorer.Ended(c.Value) {
			scores = append(scores, c.Value)
		}
	}

	var losers []int
	for _, p := range r.Roster.Playoff {
		dp, ok := r.lookup.DrawPosition(p.FullName, 0)
		if ok && !slices.Contains(winners, dp) && !slices.Contains(losers, dp) {
			losers = append(losers, dp)
		}
	}
	if len(winners) == 0 || len(losers) == 0 || len(scores) != 1 {
		return shared.MatchUp{}, false
	}

	result, err := r.scorer.Normalize(scores[0])
	if err != nil {
		shared.Report(r.Notifier, shared.KindUnparsableScore, shared.SeverityWarning, r.Grid.Name, "",
			fmt.Sprintf("score %q kept as written", scores[0]))
	}
	winning := r.lookup.Participants(winners[0])
	losing := r.lookup.Participants(losers[0])
	if len(winning) == 0 || len(losing) == 0 {
		return shared.MatchUp{}, false
	}
	return shared.MatchUp{
		DrawPositions: sideDrawPositions(winning, losing),
		WinningSide:   winning,
		LosingSide:    losing,
		Result:        result,
		RoundName:     thirdPlaceRound,
		Gender:        r.Gender,
		MatchType:     r.Roster.MatchType(),
	}, true
}
