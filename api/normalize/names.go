/* names.go
 * Contains the name keys used to match participants across cells and the content derived ids of records
 * Authors: Zachary Bower
 */

package normalize

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// idSpace scopes every content derived id of the importer
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tournament-importer"))

// NameHash returns the comparison key of a participant name: folded, with everything but letters and digits removed
func NameHash(name string) string {
	folded := Fold(name)
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HashID returns a short stable id derived only from the content of s
func HashID(s string) string {
	id := uuid.NewSHA1(idSpace, []byte(s))
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}

// LastFirstI returns the "last, f" key of a name, used to find participants in draws that drop the first name
// after the first round. "Smith, John" and "John Smith" both give "smith, j"
func LastFirstI(name string) string {
	lower := strings.ToLower(name)
	if strings.Contains(lower, ",") {
		components := strings.Split(lower, ",")
		last := strings.TrimSpace(components[0])
		first := strings.TrimSpace(components[1])
		if first == "" {
			return ""
		}
		r := []rune(first)
		return last + ", " + string(r[0])
	}
	components := strings.Fields(strings.Split(lower, "[")[0])
	if len(components) == 0 {
		return ""
	}
	first := []rune(components[0])
	return components[len(components)-1] + ", " + string(first[0])
}
