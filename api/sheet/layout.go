/* layout.go
 * Contains sheet classification and layout discovery: which row definitions a sheet matches, the sheet type that
 * follows, the header and footer bands of a draw, and the columns each role lives in
 * Authors: Zachary Bower
 */

package sheet

import (
	"slices"
	"strings"
	"tournament-importer/api/normalize"
	"tournament-importer/api/profile"
)

// Layout is the classified structure of one sheet
type Layout struct {
	Definition profile.SheetDefinition
	HeaderRow  int
	FooterRow  int
	// AvoidRows are the rows covered by the header and footer bands
	AvoidRows map[int]bool
	Columns   map[string]string
}

// Column returns the column of a role, "" when the sheet has none
func (l Layout) Column(role string) string {
	return l.Columns[role]
}

// FindRows returns the rows holding at least the definition's minimum number of its elements
// Preconditions: Receives a grid and a row definition
// Postconditions: Returns matching rows in ascending order, empty when the definition has no elements
func FindRows(g *Grid, def profile.RowDefinition) []int {
	elements := make(map[string]bool, len(def.Elements))
	for _, e := range def.Elements {
		if k := normalize.Keyword(e); k != "" {
			elements[k] = true
		}
	}
	if len(elements) == 0 {
		return nil
	}

	counts := make(map[int]int)
	for _, c := range g.cells {
		if elements[normalize.Keyword(c.Value)] {
			counts[c.Row]++
		}
	}
	var rows []int
	for row, count := range counts {
		if count > 0 && count >= def.MinimumElements {
			rows = append(rows, row)
		}
	}
	slices.Sort(rows)
	return rows
}

// Classify finds the first sheet definition whose row definitions all match the sheet
// Preconditions: Receives a grid and a profile
// Postconditions: Returns the sheet layout and true, or false when no sheet definition matches
func Classify(g *Grid, p *profile.Profile) (Layout, bool) {
	matches := make(map[string][]int)
	defs := make(map[string]profile.RowDefinition)
	for _, def := range p.RowDefinitions {
		defs[def.ID] = def
		if rows := FindRows(g, def); len(rows) > 0 {
			matches[def.ID] = rows
		}
	}

	for _, sheetDef := range p.SheetDefinitions {
		if len(sheetDef.RowIDs) == 0 {
			continue
		}
		complete := true
		for _, id := range sheetDef.RowIDs {
			if len(matches[id]) == 0 {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		layout := Layout{Definition: sheetDef, AvoidRows: make(map[int]bool), FooterRow: g.MaxRow() + 1}
		header, hasHeader := p.RowDefinition(sheetDef.RowIDs, profile.Header)
		footer, hasFooter := p.RowDefinition(sheetDef.RowIDs, profile.Footer)
		if hasHeader {
			layout.HeaderRow = matches[header.ID][0]
		}
		if hasFooter {
			rows := matches[footer.ID]
			layout.FooterRow = rows[len(rows)-1]
		}
		for _, id := range sheetDef.RowIDs {
			span := max(defs[id].Rows, 1)
			for _, row := range matches[id] {
				for r := row; r < row+span; r++ {
					layout.AvoidRows[r] = true
				}
			}
		}
		layout.Columns = HeaderColumns(g, p, layout.HeaderRow)
		return layout, true
	}
	return Layout{}, false
}

// HeaderColumns resolves the column of each role: the profile's fixed columns, overridden by the header cells
// matching the profile's header columns. When several headers match a role the rightmost one wins
func HeaderColumns(g *Grid, p *profile.Profile, headerRow int) map[string]string {
	columns := make(map[string]string)
	for role, column := range p.ColumnsMap {
		if column != "" {
			columns[role] = strings.ToUpper(column)
		}
	}
	for _, c := range g.Row(headerRow) {
		key := normalize.Keyword(c.Value)
		for _, hc := range p.HeaderColumns {
			if normalize.Keyword(hc.Header) == key {
				columns[hc.Attr] = c.Column
			}
		}
	}
	return columns
}

// RoundColumns returns the columns holding round results: header cells at or right of the rounds column and header
// cells naming a knockout round, in column order
func RoundColumns(g *Grid, p *profile.Profile, layout Layout) []string {
	roundNames := make(map[string]bool)
	for _, name := range p.KnockOutRounds {
		roundNames[normalize.Keyword(name)] = true
	}
	first := ColumnNumber(layout.Column(profile.ColRounds))

	seen := make(map[int]bool)
	var cols []int
	for _, c := range g.Row(layout.HeaderRow) {
		inRounds := first > 0 && c.Col >= first
		if !inRounds && !roundNames[normalize.Keyword(c.Value)] {
			continue
		}
		if !seen[c.Col] {
			seen[c.Col] = true
			cols = append(cols, c.Col)
		}
	}
	if first > 0 && !seen[first] {
		cols = append(cols, first)
	}
	slices.Sort(cols)

	columns := make([]string, 0, len(cols))
	for _, col := range cols {
		if name, ok := OffsetColumn("A", col-1); ok {
			columns = append(columns, name)
		}
	}
	return columns
}

// CellsContaining returns the cells whose folded value contains the folded term
func CellsContaining(g *Grid, term string) []Cell {
	folded := normalize.Fold(term)
	if folded == "" {
		return nil
	}
	var cells []Cell
	for _, c := range g.cells {
		if strings.Contains(normalize.Fold(c.Value), folded) {
			cells = append(cells, c)
		}
	}
	return cells
}

// FindGaps returns the row ranges lying between runs of consecutive rows that contain term. Row 0 opens the first
// run, so the rows above the first occurrence form a gap. Only gaps spanning more than minSpan rows are kept
func FindGaps(g *Grid, term string, minSpan int) [][2]int {
	rows := []int{0}
	for _, c := range CellsContaining(g, term) {
		if !slices.Contains(rows, c.Row) {
			rows = append(rows, c.Row)
		}
	}
	slices.Sort(rows)

	// group into runs of consecutive rows
	var runs [][2]int
	for _, row := range rows {
		if n := len(runs); n > 0 && runs[n-1][1]+1 == row {
			runs[n-1][1] = row
			continue
		}
		runs = append(runs, [2]int{row, row})
	}

	var gaps [][2]int
	for i := 0; i+1 < len(runs); i++ {
		gap := [2]int{runs[i][1], runs[i+1][0]}
		if gap[1]-gap[0] > minSpan {
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// MaxRow returns the last row holding a value
func (g *Grid) MaxRow() int {
	if len(g.cells) == 0 {
		return 0
	}
	return g.cells[len(g.cells)-1].Row
}
