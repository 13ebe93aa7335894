/* postprocess.go
 * Contains the named post processors an info rule may apply to the text it extracted
 * Authors: Zachary Bower
 */

package profile

import (
	"fmt"
	"regexp"
	"strings"
)

// PostProcessor turns an extracted value into one or more attributes
type PostProcessor func(value string) map[string]string

var postProcessors = map[string]PostProcessor{
	"dateParser":   ParseDates,
	"genderParser": ParseGender,
}

var (
	malePrefix   = regexp.MustCompile(`^F`)
	femalePrefix = regexp.MustCompile(`^L`)
)

// HasPostProcessor reports whether a post processor with the given name exists
func HasPostProcessor(name string) bool {
	_, ok := postProcessors[name]
	return ok
}

// PostProcess applies the named post processor to value
func PostProcess(name, value string) (map[string]string, error) {
	fx, ok := postProcessors[name]
	if !ok {
		return nil, fmt.Errorf("unknown post processor %q", name)
	}
	return fx(value), nil
}

// ParseDates splits a dotted date range into ISO start and end dates. The end date may omit the leading
// components it shares with the start date: "2021.05.01-03" ends on 2021-05-03, "2021.05.30-06.02" on 2021-06-02
// Preconditions: Receives the text of a date cell
// Postconditions: Returns startDate, and endDate when the value is a range
func ParseDates(value string) map[string]string {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
	startComponents := nonEmpty(strings.Split(strings.TrimSpace(parts[0]), "."))
	result := map[string]string{"startDate": strings.Join(startComponents, "-")}
	if len(parts) < 2 {
		return result
	}
	endComponents := nonEmpty(strings.Split(strings.TrimSpace(parts[1]), "."))
	if len(endComponents) == 0 {
		return result
	}
	shared := len(startComponents) - len(endComponents)
	if shared < 0 {
		shared = 0
	}
	result["endDate"] = strings.Join(append(append([]string{}, startComponents[:shared]...), endComponents...), "-")
	return result
}

// ParseGender maps an event label to a gender: labels starting with F are men's events, with L women's events
func ParseGender(value string) map[string]string {
	value = strings.TrimSpace(value)
	switch {
	case malePrefix.MatchString(value):
		return map[string]string{"gender": "M"}
	case femalePrefix.MatchString(value):
		return map[string]string{"gender": "W"}
	default:
		return map[string]string{"gender": "X"}
	}
}

func nonEmpty(components []string) []string {
	out := components[:0:0]
	for _, c := range components {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
