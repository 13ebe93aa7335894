/* scan.go
 * Contains the column scan of the knockout reconstructor: round cells are classified as participants, scores or
 * noise, then folded top to bottom into closed match groups
 * Authors: Zachary Bower
 */

package knockout

import (
	"fmt"
	"regexp"
	"tournament-importer/api/normalize"
	"tournament-importer/api/participants"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"
	"unicode/utf8"
)

// pure numbers below this are bracket annotations (line numbers, match numbers), never scores
const maxAnnotation = 16

// shorter text (a diagonal "X", a "W" marker) is dropped without a diagnostic
const minNoiseLength = 2

var digits = regexp.MustCompile(`^\d+$`)

// Column is the round data of one spreadsheet column
type Column struct {
	Name  string
	Cells []sheet.Cell
}

// Group is one closed match group: the participants advancing from it and the result that closed it
type Group struct {
	Winners []int
	Result  string
	// Bye is set when the winners advanced without a recorded match
	Bye bool
	// Players is set on synthesized entry groups
	Players []int
	Row     int
	// closedBy is the last draw position seen before the group closed
	closedBy int
}

// Lead returns the draw position representing the group in the next round
func (g Group) Lead() int {
	if len(g.Winners) > 0 {
		return g.Winners[0]
	}
	if len(g.Players) > 0 {
		return g.Players[0]
	}
	return 0
}

// HasResult reports whether a score or outcome closed the group
func (g Group) HasResult() bool {
	return g.Result != ""
}

// Scan is the outcome of folding one column
type Scan struct {
	Groups []Group
	// Occurrences maps each draw position to the indices of the groups it closed
	Occurrences map[int][]int
	Unparsable  []sheet.Cell
}

// ScoreOrPlayer reports whether a round cell carries a participant, a score or an outcome
func ScoreOrPlayer(value string, lookup *participants.Lookup, scorer *normalize.ScoreNormalizer) bool {
	if normalize.Fold(value) == normalize.NotRecorded {
		return true
	}
	if _, ok := lookup.DrawPosition(value, 0); ok {
		return true
	}
	return normalize.IsScore(value) || scorer.Ended(value)
}

// RoundData collects, for each round column, the cells within [start, end] that carry a participant, a score or an
// outcome. Text cells that resolve to nothing are reported and dropped
// Preconditions: Receives the round columns in sheet order and the participant row range
// Postconditions: Returns one Column per round column, in order, possibly with no cells
func RoundData(g *sheet.Grid, columns []string, start, end int, lookup *participants.Lookup,
	scorer *normalize.ScoreNormalizer, n shared.Notifier) []Column {
	data := make([]Column, 0, len(columns))
	for _, name := range columns {
		column := Column{Name: name}
		for _, c := range g.ColumnBetween(name, start, end) {
			if digits.MatchString(c.Value) {
				if v, _ := sheet.LeadingInt(c.Value); v < maxAnnotation {
					continue
				}
			}
			if ScoreOrPlayer(c.Value, lookup, scorer) {
				column.Cells = append(column.Cells, c)
				continue
			}
			if sheet.HasLetters(c.Value) && utf8.RuneCountInString(c.Value) > minNoiseLength {
				shared.Report(n, shared.KindAmbiguousParticipantMatch, shared.SeverityWarning, g.Name, c.Ref,
					fmt.Sprintf("%q does not resolve to a participant", c.Value))
			}
		}
		data = append(data, column)
	}
	return data
}

// NonEmpty drops the columns without cells
func NonEmpty(columns []Column) []Column {
	var kept []Column
	for _, c := range columns {
		if len(c.Cells) > 0 {
			kept = append(kept, c)
		}
	}
	return kept
}

// Span returns the columns from the first to the last column holding cells, inclusive
func Span(columns []Column) []Column {
	first, last := -1, -1
	for i, c := range columns {
		if len(c.Cells) == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return nil
	}
	return columns[first : last+1]
}

// ScanColumn folds the cells of one column into match groups. A group closes on a score or outcome cell, on a bye
// marker, or on a row discontinuity; winners left open at the end of the column advanced on a bye
// Preconditions: Receives the column's cells top to bottom
// Postconditions: Returns the closed groups in column order with the draw positions that closed them
func ScanColumn(cells []sheet.Cell, lookup *participants.Lookup, scorer *normalize.ScoreNormalizer) Scan {
	indices := occurrenceIndices(cells)
	state := scanState{}
	for i, c := range cells {
		state = state.step(c, indices[i], lookup, scorer)
	}
	return state.finish()
}

// occurrenceIndices numbers each cell by the count of earlier cells holding the same text
func occurrenceIndices(cells []sheet.Cell) []int {
	counts := make(map[string]int)
	indices := make([]int, len(cells))
	for i, c := range cells {
		key := normalize.Fold(c.Value)
		indices[i] = counts[key]
		counts[key]++
	}
	return indices
}

type scanState struct {
	groups     []Group
	winners    []int
	row        int // first row of the open group
	lastRow    int
	lastDP     int
	unparsable []sheet.Cell
}

func (s scanState) step(c sheet.Cell, idx int, lookup *participants.Lookup,
	scorer *normalize.ScoreNormalizer) scanState {
	if len(s.winners) > 0 && c.Row-s.lastRow > 1 {
		s = s.close("", false)
	}
	s.lastRow = c.Row

	if canonical, ok := scorer.Outcome(c.Value); ok && canonical == "BYE" {
		if len(s.winners) == 0 {
			return s
		}
		return s.close("", true)
	}
	if dp, ok := lookup.DrawPosition(c.Value, idx); ok {
		if len(s.winners) == 0 {
			s.row = c.Row
		}
		s.winners = append(s.winners, dp)
		s.lastDP = dp
		return s
	}

	if len(s.winners) == 0 {
		return s
	}
	result, err := scorer.Normalize(c.Value)
	if err != nil {
		s.unparsable = append(s.unparsable, c)
	}
	return s.close(result, false)
}

func (s scanState) close(result string, bye bool) scanState {
	s.groups = append(s.groups, Group{Winners: s.winners, Result: result, Bye: bye, Row: s.row, closedBy: s.lastDP})
	s.winners = nil
	return s
}

func (s scanState) finish() Scan {
	if len(s.winners) > 0 {
		s = s.close("", true)
	}
	occurrences := make(map[int][]int)
	for i, g := range s.groups {
		occurrences[g.closedBy] = append(occurrences[g.closedBy], i)
	}
	return Scan{Groups: s.groups, Occurrences: occurrences, Unparsable: s.unparsable}
}
