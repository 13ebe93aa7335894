/* score.go
 * Contains the score normalizer: raw score cells become space separated set scores ("6-3 7-6(5)") or a canonical
 * outcome token ("W.O.", "RET", ...). Normalizing a normalized score returns it unchanged
 * Authors: Zachary Bower
 */

package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"tournament-importer/api/shared"

	"github.com/go-andiamo/splitter"
)

// NotRecorded marks a match that was played but whose score was not written down
const NotRecorded = "not recorded"

var (
	scorePattern    = regexp.MustCompile(`^[\d(]+[\d.()\[\]\\ :\-,/O]+(Ret)?(ret)?(RET)?\.*$`)
	delimiterSpaces = regexp.MustCompile(`\s*[-:/]\s*`)
	tiebreakSpaces  = regexp.MustCompile(`\s+\(`)
	whitespace      = regexp.MustCompile(`\s+`)
	setPattern      = regexp.MustCompile(`^\d{1,2}-\d{1,2}(\(\d{1,2}(-\d{1,2})?\))?$`)
	superTiebreak   = regexp.MustCompile(`^\[\d{1,2}-\d{1,2}\]$`)
)

// canonical outcome tokens keyed by their folded spelling without trailing punctuation
var canonicalOutcomes = map[string]string{
	"w.o":         "W.O.",
	"wo":          "W.O.",
	"w/o":         "W.O.",
	"ret":         "RET",
	"def":         "DEF",
	"abandoned":   "ABN",
	"abn":         "ABN",
	"bye":         "BYE",
	"jn":          "W.O.",
	"j n":         "W.O.",
	"j.n":         "W.O.",
	"jn beteg":    "W.O.",
	"jn betegseg": "W.O.",
	"jn serules":  "W.O.",
	"feladta":     "W.O.",
	"megserult":   "W.O.",
	"fa":          "RET",
}

func outcomeKey(s string) string {
	return strings.TrimRight(Fold(s), ".,")
}

type outcome struct {
	key       string
	canonical string
}

// ScoreNormalizer normalizes scores against one profile's outcome vocabulary
type ScoreNormalizer struct {
	outcomes []outcome // longest key first
	byKey    map[string]string
	tokens   []string // folded profile tokens, for containment checks
	splitter splitter.Splitter
}

// NewScoreNormalizer builds a normalizer for a profile's match outcome tokens
// Preconditions: Receives the profile's matchOutcomes (may be empty)
// Postconditions: Returns a normalizer that also always recognises the canonical tokens it produces
func NewScoreNormalizer(matchOutcomes []string) *ScoreNormalizer {
	n := &ScoreNormalizer{byKey: make(map[string]string)}
	add := func(key, canonical string) {
		if key == "" {
			return
		}
		if _, ok := n.byKey[key]; ok {
			return
		}
		n.byKey[key] = canonical
		n.outcomes = append(n.outcomes, outcome{key: key, canonical: canonical})
	}
	for _, token := range matchOutcomes {
		key := outcomeKey(token)
		canonical, ok := canonicalOutcomes[key]
		if !ok {
			canonical = strings.TrimSpace(token)
		}
		add(key, canonical)
		if folded := Fold(token); folded != "" {
			n.tokens = append(n.tokens, folded)
		}
	}
	for _, canonical := range canonicalOutcomes {
		add(outcomeKey(canonical), canonical)
	}
	sort.SliceStable(n.outcomes, func(i, j int) bool {
		return len(n.outcomes[i].key) > len(n.outcomes[j].key)
	})
	n.splitter, _ = splitter.NewSplitter(' ', splitter.Parenthesis, splitter.SquareBrackets)
	return n
}

// Outcome returns the canonical outcome token for s when s is an outcome token
func (n *ScoreNormalizer) Outcome(s string) (string, bool) {
	canonical, ok := n.byKey[outcomeKey(s)]
	return canonical, ok
}

// Ended reports whether s contains one of the profile's outcome tokens (case and accent insensitive)
func (n *ScoreNormalizer) Ended(s string) bool {
	folded := Fold(s)
	for _, token := range n.tokens {
		if strings.Contains(folded, token) {
			return true
		}
	}
	return false
}

// IsScore reports whether the whole of s has the shape of a score
func IsScore(s string) bool {
	return scorePattern.MatchString(s)
}

// Normalize returns the canonical form of a raw score
// Preconditions: Receives the cleaned text of a score cell
// Postconditions: Returns the canonical score, or the trimmed input and an error wrapping ErrUnparsableScore
func (n *ScoreNormalizer) Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty score: %w", shared.ErrUnparsableScore)
	}
	if strings.EqualFold(s, NotRecorded) {
		return NotRecorded, nil
	}
	if canonical, ok := n.Outcome(s); ok {
		return canonical, nil
	}
	if sets, ok := n.parseSets(s); ok {
		return strings.Join(sets, " "), nil
	}

	// sets followed by an outcome, e.g. "6-3 2-1 ret."
	folded := strings.TrimRight(Fold(s), ".,")
	for _, o := range n.outcomes {
		if !strings.HasSuffix(folded, o.key) {
			continue
		}
		// folding can change the length of s, so the sets are read from the folded text
		prefix := strings.TrimSpace(strings.TrimSuffix(folded, o.key))
		if sets, ok := n.parseSets(prefix); ok {
			return strings.Join(append(sets, o.canonical), " "), nil
		}
	}
	return s, fmt.Errorf("%q: %w", s, shared.ErrUnparsableScore)
}

func (n *ScoreNormalizer) parseSets(s string) ([]string, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), ".*,;")
	s = strings.NewReplacer(",", " ", ";", " ").Replace(s)
	s = delimiterSpaces.ReplaceAllString(s, "-")
	s = tiebreakSpaces.ReplaceAllString(s, "(")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if s == "" {
		return nil, false
	}
	tokens, err := n.splitter.Split(s)
	if err != nil {
		return nil, false
	}
	var sets []string
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !setPattern.MatchString(token) && !superTiebreak.MatchString(token) {
			return nil, false
		}
		sets = append(sets, token)
	}
	return sets, len(sets) > 0
}
