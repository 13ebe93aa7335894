/* embedded.go
 * Contains embedded round splitting. Some sheets write the results of several rounds into one column: the later
 * round's match sits between the two matches feeding it, so each later round lies at the midpoints of the column's
 * match sequence
 * Authors: Zachary Bower
 */

package knockout

import (
	"fmt"
	"slices"
	"tournament-importer/api/shared"
)

// Midpoints returns the midpoints of the index range [lo, hi) at the given bisection depth. Depth 1 is the midpoint
// of the whole range, depth 2 the midpoints of the two halves around it, and so on
func Midpoints(lo, hi, depth int) []int {
	if depth < 1 || hi <= lo {
		return nil
	}
	mid := lo + (hi-lo)/2
	if depth == 1 {
		return []int{mid}
	}
	return append(Midpoints(lo, mid, depth-1), Midpoints(mid+1, hi, depth-1)...)
}

// maxRecurrence returns the highest number of times a draw position closed a group beyond its first
func maxRecurrence(scan Scan) int {
	recurrence := 0
	for dp, groups := range scan.Occurrences {
		if dp == 0 {
			continue
		}
		recurrence = max(recurrence, len(groups)-1)
	}
	return recurrence
}

// splitEmbedded splits a column's groups into logical rounds when draw positions recur often enough. The deepest
// midpoints form the round after the column's own round, the single central group the last one
// Preconditions: Receives a column scan and the recurrence threshold
// Postconditions: Returns the rounds in play order, or the column's groups as one round when it holds no embedded
// rounds
func splitEmbedded(scan Scan, threshold int, sheetName, column string, n shared.Notifier) [][]Group {
	recurrence := maxRecurrence(scan)
	if recurrence < threshold || recurrence == 0 {
		return [][]Group{scan.Groups}
	}
	count := len(scan.Groups)
	if count%2 == 0 {
		shared.Report(n, shared.KindHeuristicDependent, shared.SeverityWarning, sheetName, column,
			fmt.Sprintf("column %s repeats draw positions but holds an even number of matches (%d); not split", column, count))
		return [][]Group{scan.Groups}
	}
	shared.Report(n, shared.KindHeuristicDependent, shared.SeverityInfo, sheetName, column,
		fmt.Sprintf("column %s split into %d rounds (recurrence %d, threshold %d)", column, recurrence+1, recurrence, threshold))

	taken := make(map[int]bool)
	var later [][]Group
	for depth := recurrence; depth >= 1; depth-- {
		var round []Group
		for _, i := range Midpoints(0, count, depth) {
			if !taken[i] {
				taken[i] = true
				round = append(round, scan.Groups[i])
			}
		}
		if len(round) > 0 {
			later = append(later, round)
		}
	}

	var first []Group
	for i, g := range scan.Groups {
		if !taken[i] {
			first = append(first, g)
		}
	}
	return slices.Insert(later, 0, first)
}
