/* grid.go
 * Contains the Grid, an indexed read only view over one sheet's sparse cells. Cell references are parsed once with
 * excelize so multi letter columns ("AA12") order correctly, and values are cleaned the same way everywhere
 * Authors: Zachary Bower
 */

package sheet

import (
	"slices"
	"strconv"
	"strings"
	"tournament-importer/api/shared"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Cell is one non-empty cell of a sheet
type Cell struct {
	Ref    string
	Column string
	Col    int // 1-based column number
	Row    int
	Value  string // cleaned value
}

// Grid indexes the cells of one sheet
type Grid struct {
	Name  string
	cells []Cell // row major order
	byRef map[string]int
	rows  map[int][]int
}

// NewGrid parses and indexes a sheet. Keys that are not cell references (metadata such as "!ref") are ignored
// Preconditions: Receives the sheet name and its sparse cell mapping
// Postconditions: Returns a grid whose cells are sorted by row, then column
func NewGrid(name string, s shared.Sheet) *Grid {
	g := &Grid{Name: name, byRef: make(map[string]int), rows: make(map[int][]int)}
	for ref, raw := range s {
		column, row, err := excelize.SplitCellName(ref)
		if err != nil {
			continue
		}
		col, err := excelize.ColumnNameToNumber(column)
		if err != nil {
			continue
		}
		value := CleanValue(raw)
		if value == "" {
			continue
		}
		column = strings.ToUpper(column)
		g.cells = append(g.cells, Cell{Ref: column + strconv.Itoa(row), Column: column, Col: col, Row: row, Value: value})
	}
	slices.SortFunc(g.cells, func(a, b Cell) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	for i, c := range g.cells {
		g.byRef[c.Ref] = i
		g.rows[c.Row] = append(g.rows[c.Row], i)
	}
	return g
}

// CleanValue trims a raw cell and normalizes comma separated lists: "a,,b" becomes "a, b", "Smith,John" "Smith, John"
func CleanValue(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.Replace(value, ",,", ",", 1)
	if !strings.Contains(value, ",") {
		return value
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

// LeadingInt parses the integer prefix of s, so "12a" is 12 and "3." is 3
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Ref builds a cell reference from a column name and a row
func Ref(column string, row int) string {
	return strings.ToUpper(column) + strconv.Itoa(row)
}

// OffsetColumn returns the column offset columns to the right (or left for a negative offset)
func OffsetColumn(column string, offset int) (string, bool) {
	col, err := excelize.ColumnNameToNumber(column)
	if err != nil || col+offset < 1 {
		return "", false
	}
	name, err := excelize.ColumnNumberToName(col + offset)
	if err != nil {
		return "", false
	}
	return name, true
}

// ColumnNumber returns the 1-based number of a column name, 0 when invalid
func ColumnNumber(column string) int {
	col, err := excelize.ColumnNameToNumber(column)
	if err != nil {
		return 0
	}
	return col
}

// Cells returns every cell in row major order
func (g *Grid) Cells() []Cell {
	return g.cells
}

// Len returns the number of non-empty cells
func (g *Grid) Len() int {
	return len(g.cells)
}

// Value returns the cleaned value at column and row, "" when empty
func (g *Grid) Value(column string, row int) string {
	return g.ValueAt(Ref(column, row))
}

// ValueAt returns the cleaned value at a cell reference, "" when empty
func (g *Grid) ValueAt(ref string) string {
	if i, ok := g.byRef[strings.ToUpper(ref)]; ok {
		return g.cells[i].Value
	}
	return ""
}

// Number returns the integer prefix of the value at column and row
func (g *Grid) Number(column string, row int) (int, bool) {
	return LeadingInt(g.Value(column, row))
}

// Row returns the cells of a row in column order
func (g *Grid) Row(row int) []Cell {
	idx := g.rows[row]
	cells := make([]Cell, 0, len(idx))
	for _, i := range idx {
		cells = append(cells, g.cells[i])
	}
	return cells
}

// Column returns the cells of a column in row order
func (g *Grid) Column(column string) []Cell {
	column = strings.ToUpper(column)
	var cells []Cell
	for _, c := range g.cells {
		if c.Column == column {
			cells = append(cells, c)
		}
	}
	return cells
}

// ColumnBetween returns the cells of a column whose rows lie within [from, to]
func (g *Grid) ColumnBetween(column string, from, to int) []Cell {
	var cells []Cell
	for _, c := range g.Column(column) {
		if c.Row >= from && c.Row <= to {
			cells = append(cells, c)
		}
	}
	return cells
}

// HasLetters reports whether s contains a letter
func HasLetters(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLetter)
}
