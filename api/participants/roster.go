/* roster.go
 * Contains roster extraction: one Participant per participant row, with doubles partner rows borrowing the draw
 * position of their pair, seeds read from the seed column or a bracketed annotation, and repeated names split off
 * as the 3rd place playoff
 * Authors: Zachary Bower
 */

package participants

import (
	"regexp"
	"slices"
	"strings"
	"tournament-importer/api/normalize"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"
)

var bracketSeed = regexp.MustCompile(`\[(\d+)(/\d+)?\]`)

// Roster is the participant data of one draw
type Roster struct {
	Players []shared.Participant
	Rows    []int
	Start   int
	End     int
	Finals  []int

	// Playoff holds the repeated participants of a 3rd place playoff and the rows they were read from
	Playoff     []shared.Participant
	PlayoffRows []int

	Preround     []shared.Participant
	PreroundRows []int

	Doubles    bool
	RoundRobin bool
}

// MatchType returns the draw format
func (r Roster) MatchType() shared.MatchType {
	if r.Doubles {
		return shared.Doubles
	}
	return shared.Singles
}

// DrawPositions returns the distinct draw positions of the roster in ascending order
func (r Roster) DrawPositions() []int {
	var positions []int
	for _, p := range r.Players {
		if p.DrawPosition > 0 {
			positions = append(positions, p.DrawPosition)
		}
	}
	slices.Sort(positions)
	return slices.Compact(positions)
}

// Extract reads the roster of a draw from its participant rows
// Preconditions: Receives the sheet, its profile and layout, the discovered rows and the draw's gender (may be "")
// Postconditions: Returns the roster; participants with repeated names are moved to the playoff
func Extract(g *sheet.Grid, p *profile.Profile, layout sheet.Layout, rows Rows, gender string) Roster {
	x := extractor{grid: g, profile: p, layout: layout, gender: gender}
	roster := Roster{Finals: rows.Finals}

	seen := make(map[string]bool)
	for _, row := range rows.Rows {
		player := x.player(row, x.drawPosition(row))
		switch {
		case player.IsBye():
			roster.Players = append(roster.Players, player)
			roster.Rows = append(roster.Rows, row)
		case !seen[player.Hash]:
			seen[player.Hash] = true
			roster.Players = append(roster.Players, player)
			roster.Rows = append(roster.Rows, row)
		default:
			roster.Playoff = append(roster.Playoff, player)
			roster.PlayoffRows = append(roster.PlayoffRows, row)
		}
	}
	if len(roster.Rows) > 0 {
		roster.Start = slices.Min(roster.Rows)
		roster.End = slices.Max(roster.Rows)
	}

	positionColumn := layout.Column(profile.ColPosition)
	for _, row := range rows.Preround {
		dp, _ := g.Number(positionColumn, row)
		player := x.player(row, dp)
		if player.Hash != "" {
			roster.Preround = append(roster.Preround, player)
			roster.PreroundRows = append(roster.PreroundRows, row)
		}
	}

	counts := make(map[int]int)
	for _, player := range roster.Players {
		if player.DrawPosition > 0 {
			counts[player.DrawPosition]++
		}
		if player.RoundRobinResult != nil {
			roster.RoundRobin = true
		}
	}
	maxCount := 0
	for _, c := range counts {
		maxCount = max(maxCount, c)
	}
	roster.Doubles = maxCount == 2
	return roster
}

type extractor struct {
	grid    *sheet.Grid
	profile *profile.Profile
	layout  sheet.Layout
	gender  string
}

func (x extractor) value(role string, row int) string {
	column := x.layout.Column(role)
	if column == "" {
		return ""
	}
	return x.grid.Value(column, row)
}

func (x extractor) number(role string, row int) (int, bool) {
	column := x.layout.Column(role)
	if column == "" {
		return 0, false
	}
	return x.grid.Number(column, row)
}

// drawPosition reads the position column, falling back to the paired row of a doubles partner
func (x extractor) drawPosition(row int) int {
	if dp, ok := x.number(profile.ColPosition, row); ok && dp > 0 {
		return dp
	}
	dp, _ := x.number(profile.ColPosition, row+x.profile.Doubles.DrawPosition.RowOffset)
	return dp
}

func (x extractor) player(row, drawPosition int) shared.Participant {
	player := shared.Participant{DrawPosition: drawPosition, Gender: x.gender, Row: row}
	if seed, ok := x.number(profile.ColSeed, row); ok {
		player.Seed = seed
	}

	first := x.value(profile.ColFirstName, row)
	last := x.value(profile.ColLastName, row)
	fullName := x.value(profile.ColPlayers, row)
	if first != "" && last != "" {
		fullName = last + ", " + first
	}
	if m := bracketSeed.FindStringSubmatch(fullName); m != nil {
		if seed, ok := sheet.LeadingInt(m[1]); ok {
			player.Seed = seed
		}
		fullName = strings.TrimSpace(strings.Split(fullName, "[")[0])
	}

	components := strings.Split(fullName, ",")
	if last == "" {
		last = strings.ToLower(strings.TrimSpace(components[0]))
	}
	if first == "" {
		first = strings.ToLower(strings.TrimSpace(components[len(components)-1]))
	}

	player.FullName = fullName
	player.LastFirstI = normalize.LastFirstI(fullName)
	player.LastName = last
	player.FirstName = first
	player.Hash = normalize.NameHash(first + last)
	player.ParticipantID = normalize.HashID(player.Hash) + "-P"

	player.ExternalID = strings.ReplaceAll(x.value(profile.ColID, row), `"`, "")
	player.Club = x.value(profile.ColClub, row)
	player.Entry = x.value(profile.ColEntry, row)
	player.CountryCode = x.value(profile.ColCountry, row)
	if rank, ok := x.number(profile.ColRank, row); ok {
		player.Rank = rank
	}
	if result, ok := x.number(profile.ColRoundRobinResult, row); ok {
		player.RoundRobinResult = &result
	}
	return player
}
