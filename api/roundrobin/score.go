/* score.go
 * Contains the score helpers of the round robin reconstructor. Matrix cells are written from the row player's
 * perspective: the winner is found by tallying sets, and scores won by the opponent are reversed so every stored
 * score is winner first
 * Authors: Zachary Bower
 */

package roundrobin

import (
	"regexp"
	"strconv"
	"strings"
	"tournament-importer/api/normalize"
)

// Side of a matrix cell that won the match
type Side int

const (
	Undetermined Side = iota
	RowPlayer
	Opponent
)

var (
	setToken = regexp.MustCompile(`\d+[()\-/]*`)
	number   = regexp.MustCompile(`\d+`)
)

// Winner tallies the sets of a score written from the row player's perspective. Equal set counts are undetermined
func Winner(score string) Side {
	var row, opponent int
	for _, token := range strings.Fields(score) {
		if !setToken.MatchString(token) {
			continue
		}
		set, _, _ := strings.Cut(strings.Trim(token, "[]"), "(")
		a, b, ok := strings.Cut(set, "-")
		if !ok {
			continue
		}
		x, errA := strconv.Atoi(number.FindString(a))
		y, errB := strconv.Atoi(number.FindString(b))
		if errA != nil || errB != nil {
			continue
		}
		switch {
		case x > y:
			row++
		case y > x:
			opponent++
		}
	}
	switch {
	case row > opponent:
		return RowPlayer
	case opponent > row:
		return Opponent
	default:
		return Undetermined
	}
}

// Reverse rewrites a score from the other side's perspective. Tiebreak points stay as written and outcome tokens
// are kept
func Reverse(score string) string {
	tokens := strings.Fields(score)
	for i, token := range tokens {
		bracketed := strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]")
		set, tiebreak, hasTiebreak := strings.Cut(strings.Trim(token, "[]"), "(")
		a, b, ok := strings.Cut(set, "-")
		if !ok || !number.MatchString(a) || !number.MatchString(b) {
			continue
		}
		reversed := b + "-" + a
		if hasTiebreak {
			reversed += "(" + tiebreak
		}
		if bracketed {
			reversed = "[" + reversed + "]"
		}
		tokens[i] = reversed
	}
	return strings.Join(tokens, " ")
}

// walkover recognises the localized walkover notes of a matrix cell. "jn" (nem jelent meg) marks the opponent as
// absent, "megsérült" and "feladta" mark the row player as injured or retired
func walkover(value string) (Side, bool) {
	folded := normalize.Fold(value)
	switch {
	case strings.HasPrefix(folded, "jn") || strings.HasPrefix(folded, "j.n"):
		return RowPlayer, true
	case strings.Contains(folded, "megserult") || strings.Contains(folded, "feladta"):
		return Opponent, true
	}
	return Undetermined, false
}
