/* text.go
 * Contains text folding used wherever spreadsheet text is compared: names, header keywords and outcome tokens
 * Authors: Zachary Bower
 */

package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose into a base letter and a combining mark
var foldLetters = map[rune]string{
	'đ': "d", 'Đ': "D",
	'ł': "l", 'Ł': "L",
	'ø': "o", 'Ø': "O",
	'ß': "ss",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ı': "i",
}

// Diacritics removes accents and other combining marks, keeping case
// Preconditions: Receives any string
// Postconditions: Returns the string with combining marks removed and special letters spelled in ASCII
func Diacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	if !strings.ContainsFunc(folded, func(r rune) bool { _, ok := foldLetters[r]; return ok }) {
		return folded
	}
	var b strings.Builder
	for _, r := range folded {
		if repl, ok := foldLetters[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Fold returns the comparison key of a string: diacritics removed, case folded and surrounding space trimmed
func Fold(s string) string {
	return strings.TrimSpace(cases.Fold().String(Diacritics(s)))
}

// Keyword returns the comparison key of header and label text. Trailing colons are ignored so
// "Versenybíró:" and "versenybíró" compare equal
func Keyword(s string) string {
	return strings.TrimSpace(strings.TrimRight(Fold(s), ":"))
}
