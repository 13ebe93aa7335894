/* workbook.go
 * Contains the spreadsheet decoder: reads an xlsx file into the sparse cell mapping the parser works on
 * Authors: Zachary Bower
 */

package workbook

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"tournament-importer/api/shared"

	"github.com/xuri/excelize/v2"
)

// ErrNotWorkbook is returned when the data is not an xlsx file
var ErrNotWorkbook = errors.New("not an xlsx workbook")

// Decode reads an xlsx workbook. Empty cells are omitted and sheet order is kept
// Preconditions: Receives a reader positioned at the start of an xlsx file
// Postconditions: Returns the decoded workbook, or an error wrapping ErrNotWorkbook when the data cannot be opened
func Decode(r io.Reader) (shared.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return shared.Workbook{}, fmt.Errorf("%w: %w", ErrNotWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	if len(names) == 0 {
		return shared.Workbook{}, fmt.Errorf("%w: no sheets", ErrNotWorkbook)
	}

	wb := shared.Workbook{SheetNames: names, Sheets: make(map[string]shared.Sheet, len(names))}
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return shared.Workbook{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		cells := make(shared.Sheet)
		for i, row := range rows {
			for j, value := range row {
				if strings.TrimSpace(value) == "" {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(j+1, i+1)
				if err != nil {
					return shared.Workbook{}, fmt.Errorf("sheet %q: %w", name, err)
				}
				cells[ref] = value
			}
		}
		wb.Sheets[name] = cells
	}
	return wb, nil
}

// DecodeBytes decodes an xlsx workbook held in memory
func DecodeBytes(data []byte) (shared.Workbook, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes a workbook to xlsx. Sheets are created in workbook order and cells in row then column order, so the
// same workbook always encodes to the same bytes
func Encode(wb shared.Workbook) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, name := range wb.SheetNames {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		cells := wb.Sheets[name]
		for _, ref := range sortedRefs(cells) {
			if err := f.SetCellStr(name, ref, cells[ref]); err != nil {
				return nil, fmt.Errorf("sheet %q cell %s: %w", name, ref, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sortedRefs returns the cell references of a sheet in row then column order. References that do not parse sort
// after the others, by text
func sortedRefs(cells shared.Sheet) []string {
	type key struct {
		ref      string
		col, row int
		ok       bool
	}
	keys := make([]key, 0, len(cells))
	for ref := range cells {
		col, row, err := excelize.CellNameToCoordinates(ref)
		keys = append(keys, key{ref: ref, col: col, row: row, ok: err == nil})
	}
	slices.SortFunc(keys, func(a, b key) int {
		switch {
		case a.ok != b.ok:
			if a.ok {
				return -1
			}
			return 1
		case !a.ok:
			return strings.Compare(a.ref, b.ref)
		}
		return cmp.Or(cmp.Compare(a.row, b.row), cmp.Compare(a.col, b.col))
	})
	refs := make([]string, len(keys))
	for i, k := range keys {
		refs[i] = k.ref
	}
	return refs
}
