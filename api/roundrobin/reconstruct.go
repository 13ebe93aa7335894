/* reconstruct.go
 * Contains the round robin reconstructor. Each participant row of the group matrix holds its results against the
 * opponents in column order; every played pair appears twice, so matches are keyed and kept once
 * Authors: Zachary Bower
 */

package roundrobin

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"tournament-importer/api/knockout"
	"tournament-importer/api/normalize"
	"tournament-importer/api/participants"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"
)

const (
	groupRound   = "RR"
	finalRound   = "RRF"
	playoffRound = "Playoff"
	// rows listing a playoff ("Kovács vs. Nagy 6-3 6-4") hold more values than this
	playoffRowValues = 4
)

// Input is what the reconstructor reads from one round robin sheet
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
	lookup     *participants.Lookup
	scorer     *normalize.ScoreNormalizer
	qualifying bool
	seen       map[string]bool
}

// Reconstruct rebuilds the matchUps of a round robin group, its single page final and its playoffs
// Preconditions: Receives a classified sheet whose roster carries round robin results
// Postconditions: Returns the draw; a ParseError of kind NoRounds when the matrix holds no result
func Reconstruct(in Input) (shared.Draw, error) {
	r := reconstruction{
		Input:      in,
		lookup:     participants.NewLookup(in.Roster.Players),
		scorer:     normalize.NewScoreNormalizer(in.Profile.MatchOutcomes),
		qualifying: strings.Contains(in.Grid.Name, "Q"),
		seen:       make(map[string]bool),
	}
	draw := shared.Draw{Stage: shared.StageMain}
	if r.qualifying {
		draw.Stage = shared.StageQualifying
	}

	columns := r.matrixColumns()
	if len(columns) == 0 {
		return draw, &shared.ParseError{Kind: shared.KindNoRounds, Sheet: in.Grid.Name}
	}
	for _, group := range r.groupMatchUps(columns) {
		draw.Rounds = append(draw.Rounds, group)
		draw.MatchUps = append(draw.MatchUps, group...)
	}
	var extra []shared.MatchUp
	if m, ok := r.final(); ok {
		extra = append(extra, m)
	}
	extra = append(extra, r.playoffs()...)
	if len(extra) > 0 {
		draw.Rounds = append(draw.Rounds, extra)
		draw.MatchUps = append(draw.MatchUps, extra...)
	}
	return draw, nil
}

// matrixColumns returns one result column per group member, in draw position order
func (r reconstruction) matrixColumns() []knockout.Column {
	size := 0
	for _, p := range r.Roster.Players {
		if p.RoundRobinResult != nil {
			size++
		}
	}
	roundColumns := sheet.RoundColumns(r.Grid, r.Profile, r.Layout)
	data := knockout.RoundData(r.Grid, roundColumns, r.Roster.Start, r.Roster.End, r.lookup, r.scorer, r.Notifier)
	columns := knockout.Span(data)
	if len(columns) > size {
		columns = columns[:size]
	}
	return columns
}

// groups splits the members of the matrix into the groups written on the sheet. A row between two members that
// holds any value, such as a group label or the opponents header of the next group, starts a new group
func (r reconstruction) groups() [][]shared.Participant {
	var members []shared.Participant
	for _, p := range r.Roster.Players {
		if !p.IsBye() && p.DrawPosition > 0 {
			members = append(members, p)
		}
	}
	slices.SortStableFunc(members, func(a, b shared.Participant) int { return cmp.Compare(a.Row, b.Row) })
	memberRows := make(map[int]bool, len(members))
	for _, p := range members {
		memberRows[p.Row] = true
	}

	var groups [][]shared.Participant
	var current []shared.Participant
	for i, p := range members {
		if i > 0 && len(positions(current)) > 1 && r.separated(members[i-1].Row, p.Row, memberRows) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// separated reports whether a non member row between two member rows holds a value
func (r reconstruction) separated(from, to int, memberRows map[int]bool) bool {
	for row := from + 1; row < to; row++ {
		if !memberRows[row] && len(r.Grid.Row(row)) > 0 {
			return true
		}
	}
	return false
}

// positions returns the distinct draw positions of a group in ascending order
func positions(members []shared.Participant) []int {
	var dps []int
	for _, p := range members {
		dps = append(dps, p.DrawPosition)
	}
	slices.Sort(dps)
	return slices.Compact(dps)
}

// groupMatchUps reads the matrix of every group. The i-th result column holds the results against the group's i-th
// member
func (r reconstruction) groupMatchUps(columns []knockout.Column) [][]shared.MatchUp {
	var rounds [][]shared.MatchUp
	for g, members := range r.groups() {
		opponents := positions(members)
		var matchUps []shared.MatchUp
		for _, player := range members {
			for i, column := range columns {
				if i >= len(opponents) {
					break
				}
				opponent := opponents[i]
				if opponent == player.DrawPosition {
					continue
				}
				for _, c := range column.Cells {
					if c.Row != player.Row {
						continue
					}
					if m, ok := r.matrixMatchUp(player.DrawPosition, opponent, c); ok {
						m.GroupNumber = g + 1
						matchUps = append(matchUps, m)
					}
				}
			}
		}
		if len(matchUps) > 0 {
			rounds = append(rounds, matchUps)
		}
	}
	return rounds
}

// matrixMatchUp reads one matrix cell. Cells whose winner cannot be determined are dropped
func (r reconstruction) matrixMatchUp(rowDP, opponentDP int, c sheet.Cell) (shared.MatchUp, bool) {
	side, result := r.decide(c)
	if side == Undetermined {
		return shared.MatchUp{}, false
	}
	winnerDP, loserDP := rowDP, opponentDP
	if side == Opponent {
		winnerDP, loserDP = opponentDP, rowDP
	}

	key := fmt.Sprintf("%d|%d|%s", winnerDP, loserDP, result)
	if r.seen[key] {
		return shared.MatchUp{}, false
	}
	winning := r.lookup.Participants(winnerDP)
	losing := r.lookup.Participants(loserDP)
	if len(winning) == 0 || len(losing) == 0 {
		return shared.MatchUp{}, false
	}
	r.seen[key] = true
	return r.matchUp(winning, losing, result, groupRound), true
}

// decide returns the winning side of a cell and its winner first result
func (r reconstruction) decide(c sheet.Cell) (Side, string) {
	if side, ok := walkover(c.Value); ok {
		return side, "W.O."
	}
	result, err := r.scorer.Normalize(c.Value)
	if err != nil {
		shared.Report(r.Notifier, shared.KindUnparsableScore, shared.SeverityWarning, r.Grid.Name, c.Ref,
			fmt.Sprintf("score %q kept as written", c.Value))
	}
	side := Winner(result)
	if side == Opponent {
		result = Reverse(result)
	}
	return side, result
}

func (r reconstruction) matchUp(winning, losing []shared.Participant, result, roundName string) shared.MatchUp {
	var positions []int
	for _, p := range append(slices.Clone(winning), losing...) {
		positions = append(positions, p.DrawPosition)
	}
	slices.Sort(positions)
	return shared.MatchUp{
		DrawPositions: positions,
		WinningSide:   winning,
		LosingSide:    losing,
		Result:        result,
		RoundName:     roundName,
		Gender:        r.Gender,
		MatchType:     r.Roster.MatchType(),
	}
}

// final reads a final played on the group's page: the finalists are listed in the final rows and the winner's name
// and the score are written in the column of the winner marker
func (r reconstruction) final() (shared.MatchUp, bool) {
	target := r.Profile.Targets.Winner
	if len(r.Roster.Finals) == 0 || target == "" {
		return shared.MatchUp{}, false
	}
	idx := slices.IndexFunc(r.Grid.Cells(), func(c sheet.Cell) bool { return c.Value == target })
	if idx < 0 {
		return shared.MatchUp{}, false
	}
	marker := r.Grid.Cells()[idx]
	rows := slices.DeleteFunc(slices.Clone(r.Roster.Finals), func(row int) bool { return row == marker.Row })
	if len(rows) == 0 {
		return shared.MatchUp{}, false
	}

	var details []string
	for _, c := range r.Grid.ColumnBetween(marker.Column, slices.Min(rows), slices.Max(rows)) {
		if knockout.ScoreOrPlayer(c.Value, r.lookup, r.scorer) {
			details = append(details, c.Value)
		}
	}
	var finalists []string
	players := r.Layout.Column(profile.ColPlayers)
	for _, row := range r.Roster.Finals {
		if v := r.Grid.Value(players, row); v != "" && knockout.ScoreOrPlayer(v, r.lookup, r.scorer) {
			finalists = append(finalists, v)
		}
	}

	var winner, raw string
	for _, d := range details {
		switch {
		case slices.Contains(finalists, d):
			if winner == "" {
				winner = d
			}
		case raw == "":
			raw = d
		}
	}
	if winner == "" || raw == "" {
		return shared.MatchUp{}, false
	}
	loser := ""
	for _, f := range finalists {
		if f != winner {
			loser = f
			break
		}
	}

	winnerDP, okW := r.lookup.DrawPosition(winner, 0)
	loserDP, okL := r.lookup.DrawPosition(loser, 0)
	if !okW || !okL {
		return shared.MatchUp{}, false
	}
	result, err := r.scorer.Normalize(raw)
	if err != nil {
		shared.Report(r.Notifier, shared.KindUnparsableScore, shared.SeverityWarning, r.Grid.Name, "",
			fmt.Sprintf("score %q kept as written", raw))
	}
	winning := r.lookup.Participants(winnerDP)
	losing := r.lookup.Participants(loserDP)
	if len(winning) == 0 || len(losing) == 0 {
		return shared.MatchUp{}, false
	}
	return r.matchUp(winning, losing, result, finalRound), true
}

// playoffs reads the playoff lines written below the group, e.g. "Kovács | vs. | Nagy | 6-3 6-4"
func (r reconstruction) playoffs() []shared.MatchUp {
	var matchUps []shared.MatchUp
	for row := r.Layout.HeaderRow + 1; row < r.Layout.FooterRow; row++ {
		cells := r.Grid.Row(row)
		if len(cells) <= playoffRowValues {
			continue
		}
		vs := slices.IndexFunc(cells, func(c sheet.Cell) bool {
			return strings.TrimRight(normalize.Fold(c.Value), ".") == "vs"
		})
		if vs < 1 || vs+2 >= len(cells) {
			continue
		}
		left, okL := r.lookup.ByLastName(cells[vs-1].Value)
		right, okR := r.lookup.ByLastName(cells[vs+1].Value)
		if !okL || !okR || left.DrawPosition == right.DrawPosition {
			continue
		}
		side, result := r.decide(cells[vs+2])
		if side == Undetermined {
			continue
		}
		winner, loser := left, right
		if side == Opponent {
			winner, loser = right, left
		}
		winning := r.lookup.Participants(winner.DrawPosition)
		losing := r.lookup.Participants(loser.DrawPosition)
		if len(winning) == 0 || len(losing) == 0 {
			continue
		}
		matchUps = append(matchUps, r.matchUp(winning, losing, result, playoffRound))
	}
	return matchUps
}
