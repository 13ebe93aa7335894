/* info.go
 * Contains info extraction: values found at fixed offsets from label cells, e.g. the tournament name one row below
 * "A verseny neve"
 * Authors: Zachary Bower
 */

package sheet

import (
	"tournament-importer/api/normalize"
	"tournament-importer/api/profile"
)

// Info holds the attributes extracted from a sheet. Rules with several column offsets produce lists
type Info struct {
	Values map[string]string
	Lists  map[string][]string
}

// Merge copies attributes of other that are not yet set
func (i Info) Merge(other Info) {
	for k, v := range other.Values {
		if _, ok := i.Values[k]; !ok {
			i.Values[k] = v
		}
	}
	for k, v := range other.Lists {
		if _, ok := i.Lists[k]; !ok {
			i.Lists[k] = v
		}
	}
}

// NewInfo returns an empty Info
func NewInfo() Info {
	return Info{Values: make(map[string]string), Lists: make(map[string][]string)}
}

// ExtractInfo applies info rules to a sheet. The first rule yielding a non-empty value sets an attribute
// Preconditions: Receives a grid and the rules to apply
// Postconditions: Returns the extracted attributes; post processor output is merged into the values
func ExtractInfo(g *Grid, rules []profile.InfoRule) (Info, error) {
	info := NewInfo()
	for _, rule := range rules {
		label := findLabel(g, rule.SearchText)
		if label == nil {
			continue
		}
		row := label.Row + rule.RowOffset

		if len(rule.ColumnOffsets) > 0 {
			if _, ok := info.Lists[rule.Attribute]; ok {
				continue
			}
			var values []string
			for _, offset := range rule.ColumnOffsets {
				column, ok := OffsetColumn(label.Column, offset)
				if !ok {
					continue
				}
				if v := g.Value(column, row); v != "" {
					values = append(values, v)
				}
			}
			if len(values) > 0 {
				info.Lists[rule.Attribute] = values
			}
			continue
		}

		column, ok := OffsetColumn(label.Column, rule.ColumnOffset)
		if !ok {
			continue
		}
		value := g.Value(column, row)
		if value == "" {
			continue
		}
		if rule.PostProcessor == "" {
			if _, ok := info.Values[rule.Attribute]; !ok {
				info.Values[rule.Attribute] = value
			}
			continue
		}
		processed, err := profile.PostProcess(rule.PostProcessor, value)
		if err != nil {
			return info, err
		}
		for k, v := range processed {
			if _, ok := info.Values[k]; !ok && v != "" {
				info.Values[k] = v
			}
		}
	}
	return info, nil
}

func findLabel(g *Grid, searchText string) *Cell {
	key := normalize.Keyword(searchText)
	if key == "" {
		return nil
	}
	for i := range g.cells {
		if normalize.Keyword(g.cells[i].Value) == key {
			return &g.cells[i]
		}
	}
	return nil
}
