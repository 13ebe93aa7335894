/* rows.go
 * Contains participant row discovery: which rows between a draw's header and footer bands hold participants, and
 * which rows belong to a preliminary bracket or a round robin final
 * Authors: Zachary Bower
 */

package participants

import (
	"regexp"
	"slices"
	"strings"
	"tournament-importer/api/normalize"
	"tournament-importer/api/profile"
	"tournament-importer/api/sheet"
)

var (
	seedValue    = regexp.MustCompile(`^\d+(a)?$`)
	rankingValue = regexp.MustCompile(`^(\d+|MR\d+)$`)
	rrResult     = regexp.MustCompile(`^\d+\.*$`)
)

// Rows are the participant rows of one draw
type Rows struct {
	Rows  []int
	Start int
	End   int
	// Finals are player rows of a round robin sheet lying outside the group, i.e. a final played on the same page
	Finals   []int
	Preround []int
	// GapSpans are the spans of the gaps that bounded the rows
	GapSpans []int
}

// FindRows discovers the participant rows of a draw sheet
// Preconditions: Receives a classified sheet and its profile
// Postconditions: Returns the participant rows within [Start, End], never including header or footer band rows
func FindRows(g *sheet.Grid, p *profile.Profile, layout sheet.Layout) Rows {
	band := bandCells(g, p, layout)
	skipWord := skipWordSet(p)

	textRows := func(role string) []int {
		column := layout.Column(role)
		if column == "" {
			return nil
		}
		var rows []int
		for _, c := range band {
			if c.Column == column && sheet.HasLetters(c.Value) && !skipWord[strings.ToLower(c.Value)] {
				rows = append(rows, c.Row)
			}
		}
		return rows
	}
	matchingRows := func(role string, re *regexp.Regexp) []int {
		column := layout.Column(role)
		if column == "" {
			return nil
		}
		var rows []int
		for _, c := range band {
			if c.Column == column && (re == nil || re.MatchString(c.Value)) {
				rows = append(rows, c.Row)
			}
		}
		return rows
	}

	var playerNames []int
	if p.PlayerRows.PlayerNames {
		playerNames = textRows(profile.ColPlayers)
	}
	firstNames := textRows(profile.ColFirstName)
	lastNames := textRows(profile.ColLastName)
	clubs := textRows(profile.ColClub)
	ids := idRows(band, layout.Column(profile.ColID), skipWord)
	seeds := matchingRows(profile.ColSeed, seedValue)
	drawPositions := matchingRows(profile.ColPosition, nil)
	rankings := matchingRows(profile.ColRank, rankingValue)

	orderedStart := 0
	if len(drawPositions) > 0 && positionsOrdered(g, layout.Column(profile.ColPosition), drawPositions) {
		orderedStart = drawPositions[0]
	}

	var roundRobinResults []int
	rrColumn := layout.Column(profile.ColRoundRobinResult)
	if rrColumn != "" {
		for _, c := range g.Column(rrColumn) {
			if rrResult.MatchString(c.Value) {
				roundRobinResults = append(roundRobinResults, c.Row)
			}
		}
		rankings = slices.DeleteFunc(rankings, func(row int) bool { return !slices.Contains(roundRobinResults, row) })
	}

	sources := [][]int{ids, seeds, firstNames, lastNames, drawPositions, rankings, clubs, roundRobinResults, playerNames}
	allRows := unionRows(sources...)
	if len(allRows) == 0 {
		return Rows{}
	}

	result := Rows{}
	drawRows := allRows
	var finals []int
	if drawGap, ok := p.Gaps[profile.GapDraw]; ok && drawGap.Term != "" {
		gaps := sheet.FindGaps(g, drawGap.Term, p.MinGapSpan())
		if drawGap.Gap >= 0 && drawGap.Gap < len(gaps) {
			gap := gaps[drawGap.Gap]
			result.GapSpans = append(result.GapSpans, gap[1]-gap[0])
			if rrColumn == "" {
				drawRows = within(allRows, gap)
			} else {
				finals = within(playerNames, gap)
			}

			preroundIndex := drawGap.Gap + 1
			if preroundGap, ok := p.Gaps[profile.GapPreround]; ok {
				preroundIndex = preroundGap.Gap
			}
			if len(gaps) > 1 && preroundIndex >= 0 && preroundIndex < len(gaps) && preroundIndex != drawGap.Gap {
				gap := gaps[preroundIndex]
				result.GapSpans = append(result.GapSpans, gap[1]-gap[0])
				result.Preround = within(allRows, gap)
			}
		}
	}
	if len(drawRows) == 0 {
		drawRows = allRows
	}

	result.Start = orderedStart
	if result.Start == 0 {
		var startRows []int
		for _, source := range sources {
			if len(source) > 0 {
				startRows = append(startRows, source[0])
			}
		}
		result.Start = mostFrequent(startRows)
	}
	result.End = drawRows[len(drawRows)-1]

	for _, row := range allRows {
		if row >= result.Start && row <= result.End && !layout.AvoidRows[row] {
			result.Rows = append(result.Rows, row)
		}
	}
	for _, row := range finals {
		if !slices.Contains(drawRows, row) {
			result.Finals = append(result.Finals, row)
		}
	}
	return result
}

// bandCells returns the cells strictly between the header and footer rows that are not excluded by skip rules
func bandCells(g *sheet.Grid, p *profile.Profile, layout sheet.Layout) []sheet.Cell {
	var skipContains []string
	for _, term := range p.SkipContains {
		if folded := normalize.Fold(term); folded != "" {
			skipContains = append(skipContains, folded)
		}
	}

	var cells []sheet.Cell
	for _, c := range g.Cells() {
		if c.Row <= layout.HeaderRow || c.Row >= layout.FooterRow {
			continue
		}
		if slices.ContainsFunc(p.SkipPatterns(), func(re *regexp.Regexp) bool { return re.MatchString(c.Value) }) {
			continue
		}
		folded := normalize.Fold(c.Value)
		if slices.ContainsFunc(skipContains, func(term string) bool { return strings.Contains(folded, term) }) {
			continue
		}
		cells = append(cells, c)
	}
	return cells
}

func skipWordSet(p *profile.Profile) map[string]bool {
	words := make(map[string]bool, len(p.SkipWords))
	for _, w := range p.SkipWords {
		words[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return words
}

func idRows(band []sheet.Cell, column string, skipWord map[string]bool) []int {
	if column == "" {
		return nil
	}
	var rows []int
	for _, c := range band {
		if c.Column == column && !skipWord[strings.ToLower(c.Value)] {
			rows = append(rows, c.Row)
		}
	}
	return rows
}

// positionsOrdered reports whether the numeric draw positions read top to bottom count up from 1. Rows without a
// number (doubles partner rows) are ignored
func positionsOrdered(g *sheet.Grid, column string, rows []int) bool {
	expected := 1
	for _, row := range rows {
		dp, ok := g.Number(column, row)
		if !ok || dp == 0 {
			continue
		}
		if dp != expected {
			return false
		}
		expected++
	}
	return true
}

func unionRows(sources ...[]int) []int {
	var rows []int
	for _, source := range sources {
		rows = append(rows, source...)
	}
	slices.Sort(rows)
	return slices.Compact(rows)
}

// within returns the rows lying strictly inside a gap
func within(rows []int, gap [2]int) []int {
	var out []int
	for _, row := range rows {
		if row > gap[0] && row < gap[1] {
			out = append(out, row)
		}
	}
	return out
}

// mostFrequent returns the most frequent value, the smallest one on ties
func mostFrequent(values []int) int {
	counts := make(map[int]int)
	best, bestCount := 0, 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount || (counts[v] == bestCount && v < best) {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
