/* lookup.go
 * Contains draw position lookup: resolving the text of a round cell to the draw position of a roster participant
 * Authors: Zachary Bower
 */

package participants

import (
	"strings"
	"tournament-importer/api/normalize"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// minFuzzyLength is the shortest cell text tried against the roster with fuzzy matching
const minFuzzyLength = 4

// Lookup resolves cell text to draw positions
type Lookup struct {
	byName     map[string][]int // folded full name -> draw positions in roster order
	byLastInit map[string]int
	names      []string // folded full names, for fuzzy matching
	nameDP     map[string]map[int]bool
	players    []shared.Participant
}

// NewLookup indexes a roster
func NewLookup(players []shared.Participant) *Lookup {
	l := &Lookup{
		byName:     make(map[string][]int),
		byLastInit: make(map[string]int),
		nameDP:     make(map[string]map[int]bool),
		players:    players,
	}
	for _, p := range players {
		if p.FullName == "" {
			continue
		}
		key := normalize.Fold(p.FullName)
		if _, ok := l.byName[key]; !ok {
			l.names = append(l.names, key)
			l.nameDP[key] = make(map[int]bool)
		}
		l.byName[key] = append(l.byName[key], p.DrawPosition)
		l.nameDP[key][p.DrawPosition] = true
		if lastInit := normalize.LastFirstI(key); lastInit != "" {
			if _, ok := l.byLastInit[lastInit]; !ok {
				l.byLastInit[lastInit] = p.DrawPosition
			}
		}
	}
	return l
}

// Players returns the indexed roster
func (l *Lookup) Players() []shared.Participant {
	return l.players
}

// DrawPosition resolves cell text to a draw position. idx selects among participants sharing the same name, so
// repeated placeholders such as "BYE" each resolve to their own draw position
// Preconditions: Receives cleaned cell text and the number of earlier cells of the column holding the same text
// Postconditions: Returns the draw position and true, or false when the text does not resolve
func (l *Lookup) DrawPosition(value string, idx int) (int, bool) {
	key := normalize.Fold(value)
	if key == "" {
		return 0, false
	}
	if positions := l.byName[key]; idx < len(positions) {
		return positions[idx], true
	}
	if dp, ok := l.byLastInit[normalize.LastFirstI(key)]; ok {
		return dp, true
	}
	if dp, ok := l.byLastInit[surnameFirst(key)]; ok {
		return dp, true
	}
	return l.fuzzy(value, key)
}

// surnameFirst returns the "last, f" key of a name written surname first without a comma, e.g. "Kovács P."
func surnameFirst(key string) string {
	words := strings.Fields(key)
	if len(words) < 2 || strings.Contains(key, ",") {
		return ""
	}
	first := []rune(words[1])
	return words[0] + ", " + string(first[0])
}

// fuzzy resolves text that is an unambiguous abbreviation of one participant's name
func (l *Lookup) fuzzy(value, key string) (int, bool) {
	if !sheet.HasLetters(value) || utf8.RuneCountInString(key) < minFuzzyLength || normalize.IsScore(value) {
		return 0, false
	}
	ranks := fuzzy.RankFindNormalizedFold(key, l.names)
	dp, found := 0, false
	for _, rank := range ranks {
		for candidate := range l.nameDP[rank.Target] {
			if found && candidate != dp {
				return 0, false
			}
			dp, found = candidate, true
		}
	}
	return dp, found
}

// ByLastName returns the first participant whose last name matches the first word of value
func (l *Lookup) ByLastName(value string) (shared.Participant, bool) {
	words := strings.Fields(normalize.Fold(value))
	if len(words) == 0 {
		return shared.Participant{}, false
	}
	last := words[0]
	for _, p := range l.players {
		if normalize.Fold(p.LastName) == last {
			return p, true
		}
	}
	return shared.Participant{}, false
}

// Participants returns the roster participants at a draw position
func (l *Lookup) Participants(drawPosition int) []shared.Participant {
	var found []shared.Participant
	for _, p := range l.players {
		if p.DrawPosition == drawPosition && !p.IsBye() {
			found = append(found, p)
		}
	}
	return found
}
