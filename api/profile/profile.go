/* profile.go
 * Contains the organization profile: the data describing how one federation lays out its draw sheets. Profiles are
 * plain data (YAML serializable); the only behaviour they reference is a named post processor
 * Authors: Zachary Bower
 */

package profile

import (
	"fmt"
	"regexp"

	"tournament-importer/api/shared"
)

// Column roles used as keys of a profile's columnsMap and headerColumns
const (
	ColPosition         = "position"
	ColRank             = "rank"
	ColID               = "id"
	ColSeed             = "seed"
	ColLastName         = "lastName"
	ColFirstName        = "firstName"
	ColPlayers          = "players"
	ColClub             = "club"
	ColRounds           = "rounds"
	ColCountry          = "country"
	ColEntry            = "entry"
	ColRoundRobinResult = "roundRobinResult"
)

// Gap keys
const (
	GapDraw     = "draw"
	GapPreround = "preround"
)

const (
	DefaultMinGapSpan         = 3
	DefaultEmbeddedRecurrence = 1
)

// RowType tells whether a row definition describes a header or a footer band
type RowType string

const (
	Header RowType = "header"
	Footer RowType = "footer"
)

// RowDefinition is a keyword signature of a header or footer row
type RowDefinition struct {
	Type            RowType  `yaml:"type"`
	ID              string   `yaml:"id"`
	Elements        []string `yaml:"elements"`
	Rows            int      `yaml:"rows"`
	MinimumElements int      `yaml:"minimumElements"`
}

// SheetDefinition assigns a sheet type when every listed row definition matched
type SheetDefinition struct {
	Type   shared.SheetType `yaml:"type"`
	RowIDs []string         `yaml:"rowIds"`
}

// Gap names the term whose contiguous occurrences bound a region of the sheet, and which region to use
type Gap struct {
	Term string `yaml:"term"`
	Gap  int    `yaml:"gap"`
}

// HeaderColumn overrides a column role with the column whose header text matches
type HeaderColumn struct {
	Attr   string `yaml:"attr"`
	Header string `yaml:"header"`
}

// InfoRule extracts a value found at an offset from a label cell
type InfoRule struct {
	Attribute     string `yaml:"attribute"`
	SearchText    string `yaml:"searchText"`
	RowOffset     int    `yaml:"rowOffset"`
	ColumnOffset  int    `yaml:"columnOffset"`
	ColumnOffsets []int  `yaml:"columnOffsets"`
	PostProcessor string `yaml:"postProcessor"`
}

// DrawPositionConfig holds the row offset from a doubles partner row to the row carrying the shared draw position
type DrawPositionConfig struct {
	RowOffset int `yaml:"rowOffset"`
}

// DoublesConfig describes doubles layouts
type DoublesConfig struct {
	DrawPosition DrawPositionConfig `yaml:"drawPosition"`
}

// PlayerRows tells which name columns carry player rows
type PlayerRows struct {
	PlayerNames bool `yaml:"playerNames"`
	LastName    bool `yaml:"lastName"`
	FirstName   bool `yaml:"firstName"`
}

// Targets are marker texts located in a sheet
type Targets struct {
	Winner string `yaml:"winner"`
}

// Heuristics are empirically tuned constants of the reconstruction
type Heuristics struct {
	// MinGapSpan: a gap is accepted only when its end row minus its start row exceeds this value
	MinGapSpan int `yaml:"minGapSpan"`
	// EmbeddedRecurrence: a column holds embedded rounds when a draw position recurs more than this many times
	EmbeddedRecurrence int `yaml:"embeddedRecurrence"`
}

// Profile describes one organization's sheet layout and vocabulary
type Profile struct {
	ProviderID       string            `yaml:"providerId"`
	SkipWords        []string          `yaml:"skipWords"`
	SkipContains     []string          `yaml:"skipContains"`
	SkipExpressions  []string          `yaml:"skipExpressions"`
	MatchOutcomes    []string          `yaml:"matchOutcomes"`
	Doubles          DoublesConfig     `yaml:"doubles"`
	ColumnsMap       map[string]string `yaml:"columnsMap"`
	KnockOutRounds   []string          `yaml:"knockOutRounds"`
	RowDefinitions   []RowDefinition   `yaml:"rowDefinitions"`
	SheetDefinitions []SheetDefinition `yaml:"sheetDefinitions"`
	Gaps             map[string]Gap    `yaml:"gaps"`
	HeaderColumns    []HeaderColumn    `yaml:"headerColumns"`
	PlayerRows       PlayerRows        `yaml:"playerRows"`
	TournamentInfo   []InfoRule        `yaml:"tournamentInfo"`
	DrawInfo         []InfoRule        `yaml:"drawInfo"`
	Targets          Targets           `yaml:"targets"`
	Heuristics       Heuristics        `yaml:"heuristics"`

	skipPatterns []*regexp.Regexp
}

// MinGapSpan returns the configured minimum gap span or its default
func (p *Profile) MinGapSpan() int {
	if p.Heuristics.MinGapSpan > 0 {
		return p.Heuristics.MinGapSpan
	}
	return DefaultMinGapSpan
}

// EmbeddedRecurrence returns the configured embedded round threshold or its default
func (p *Profile) EmbeddedRecurrence() int {
	if p.Heuristics.EmbeddedRecurrence > 0 {
		return p.Heuristics.EmbeddedRecurrence
	}
	return DefaultEmbeddedRecurrence
}

// SkipPatterns returns the compiled skip expressions
func (p *Profile) SkipPatterns() []*regexp.Regexp {
	return p.skipPatterns
}

// RowDefinition finds the definition of the given type among the listed ids
func (p *Profile) RowDefinition(rowIDs []string, rowType RowType) (RowDefinition, bool) {
	for _, def := range p.RowDefinitions {
		if def.Type != rowType {
			continue
		}
		for _, id := range rowIDs {
			if def.ID == id {
				return def, true
			}
		}
	}
	return RowDefinition{}, false
}

// prepare validates the profile and compiles its expressions
func (p *Profile) prepare() error {
	p.skipPatterns = p.skipPatterns[:0]
	for _, expr := range p.SkipExpressions {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid skip expression %q: %w", expr, err)
		}
		p.skipPatterns = append(p.skipPatterns, re)
	}
	for _, def := range p.RowDefinitions {
		if def.Type != Header && def.Type != Footer {
			return fmt.Errorf("row definition %q has invalid type %q", def.ID, def.Type)
		}
	}
	for _, def := range p.SheetDefinitions {
		switch def.Type {
		case shared.Knockout, shared.RoundRobin, shared.Participants, shared.Information:
		default:
			return fmt.Errorf("sheet definition has invalid type %q", def.Type)
		}
	}
	for _, rules := range [][]InfoRule{p.TournamentInfo, p.DrawInfo} {
		for _, rule := range rules {
			if rule.PostProcessor != "" && !HasPostProcessor(rule.PostProcessor) {
				return fmt.Errorf("info rule %q references unknown post processor %q", rule.Attribute, rule.PostProcessor)
			}
		}
	}
	return nil
}
