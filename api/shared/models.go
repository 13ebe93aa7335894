/* models.go
 * This file contains the structs shared between the sub packages: the decoded workbook handed to the parser, the
 * participants and matchUps produced by the reconstructors, and the tournament record produced by the assembler
 * Authors: Zachary Bower
 */

package shared

// Sheet is the sparse cell mapping of one worksheet: cell reference (e.g. "F12") to its raw text
type Sheet map[string]string

// Workbook is a decoded spreadsheet. SheetNames keeps workbook order
type Workbook struct {
	SheetNames []string
	Sheets     map[string]Sheet
}

// SheetType is the classification assigned to a sheet by a profile's sheet definitions
type SheetType string

const (
	Knockout     SheetType = "KNOCKOUT"
	RoundRobin   SheetType = "ROUND_ROBIN"
	Participants SheetType = "PARTICIPANTS"
	Information  SheetType = "INFORMATION"
)

// MatchType of a draw or matchUp
type MatchType string

const (
	Singles MatchType = "SINGLES"
	Doubles MatchType = "DOUBLES"
)

const (
	StageMain       = "MAIN"
	StageQualifying = "QUALIFYING"
)

// Participant is one roster row of a draw. Participants are created once per draw and referenced by draw position
type Participant struct {
	DrawPosition     int    `json:"drawPosition" bson:"drawPosition"`
	FullName         string `json:"fullName" bson:"fullName"`
	LastName         string `json:"lastName" bson:"lastName"`
	FirstName        string `json:"firstName" bson:"firstName"`
	LastFirstI       string `json:"-" bson:"-"`
	Seed             int    `json:"seed,omitempty" bson:"seed,omitempty"`
	Rank             int    `json:"rank,omitempty" bson:"rank,omitempty"`
	Club             string `json:"club,omitempty" bson:"club,omitempty"`
	CountryCode      string `json:"countryCode,omitempty" bson:"countryCode,omitempty"`
	Entry            string `json:"entry,omitempty" bson:"entry,omitempty"`
	ExternalID       string `json:"externalId,omitempty" bson:"externalId,omitempty"`
	Gender           string `json:"gender,omitempty" bson:"gender,omitempty"`
	RoundRobinResult *int   `json:"roundRobinResult,omitempty" bson:"roundRobinResult,omitempty"`
	Hash             string `json:"hash" bson:"hash"`
	ParticipantID    string `json:"participantId" bson:"participantId"`
	Row              int    `json:"-" bson:"-"`
}

// IsBye reports whether the participant is a bye placeholder
func (p Participant) IsBye() bool {
	return p.Hash == "" || p.Hash == "bye" || p.Hash == "byebye"
}

// MatchUp is a reconstructed match. Sides hold the participants of each side (two per side for doubles)
type MatchUp struct {
	MatchUpID      string        `json:"matchUpId,omitempty" bson:"matchUpId,omitempty"`
	DrawPositions  []int         `json:"drawPositions" bson:"drawPositions"`
	WinningSide    []Participant `json:"winningSide" bson:"winningSide"`
	LosingSide     []Participant `json:"losingSide" bson:"losingSide"`
	Result         string        `json:"result" bson:"result"`
	RoundName      string        `json:"roundName" bson:"roundName"`
	RoundNumber    int           `json:"roundNumber,omitempty" bson:"roundNumber,omitempty"`
	RoundPosition  int           `json:"roundPosition,omitempty" bson:"roundPosition,omitempty"`
	FinishingRound int           `json:"finishingRound,omitempty" bson:"finishingRound,omitempty"`
	GroupNumber    int           `json:"groupNumber,omitempty" bson:"groupNumber,omitempty"`
	Gender         string        `json:"gender,omitempty" bson:"gender,omitempty"`
	MatchType      MatchType     `json:"matchType" bson:"matchType"`
	Event          string        `json:"event,omitempty" bson:"event,omitempty"`
	// MainDrawPosition is set on preround matchUps: the main draw position the preround winner occupies
	MainDrawPosition int `json:"mainDrawPosition,omitempty" bson:"mainDrawPosition,omitempty"`
}

// WinningDrawPosition returns the draw position of the winning side, or 0 when unknown
func (m MatchUp) WinningDrawPosition() int {
	if len(m.WinningSide) == 0 {
		return 0
	}
	return m.WinningSide[0].DrawPosition
}

// LosingDrawPosition returns the draw position of the losing side, or 0 when unknown
func (m MatchUp) LosingDrawPosition() int {
	if len(m.LosingSide) == 0 {
		return 0
	}
	return m.LosingSide[0].DrawPosition
}

// Draw is the reconstruction output for one sheet before assembly
type Draw struct {
	Rounds   [][]MatchUp
	MatchUps []MatchUp
	Preround []MatchUp
	Stage    string
}

// Entry is one participant entered into a draw
type Entry struct {
	ParticipantID   string `json:"participantId" bson:"participantId"`
	CategoryRanking int    `json:"categoryRanking,omitempty" bson:"categoryRanking,omitempty"`
}

// SeedAssignment links a participant to its seed number
type SeedAssignment struct {
	ParticipantID string `json:"participantId" bson:"participantId"`
	SeedNumber    int    `json:"seedNumber" bson:"seedNumber"`
}

// PositionAssignment links a participant to its draw position
type PositionAssignment struct {
	ParticipantID string `json:"participantId" bson:"participantId"`
	DrawPosition  int    `json:"drawPosition" bson:"drawPosition"`
}

// Participantship is a side of a draw: one player for singles, a pair for doubles
type Participantship struct {
	DrawPosition   int      `json:"drawPosition" bson:"drawPosition"`
	SeedNumber     int      `json:"seedNumber,omitempty" bson:"seedNumber,omitempty"`
	ParticipantIDs []string `json:"participantIds" bson:"participantIds"`
}

// StructureMatchUp is the compact, id-bearing view of a matchUp inside a structure
type StructureMatchUp struct {
	MatchUpID      string `json:"matchUpId" bson:"matchUpId"`
	DrawPositions  []int  `json:"drawPositions" bson:"drawPositions"`
	Score          string `json:"score" bson:"score"`
	RoundName      string `json:"roundName" bson:"roundName"`
	RoundNumber    int    `json:"roundNumber,omitempty" bson:"roundNumber,omitempty"`
	RoundPosition  int    `json:"roundPosition,omitempty" bson:"roundPosition,omitempty"`
	FinishingRound int    `json:"finishingRound,omitempty" bson:"finishingRound,omitempty"`
	WinningSide    int    `json:"winningSide" bson:"winningSide"`
}

// Structure is a stage of a draw
type Structure struct {
	StructureID         string               `json:"structureId" bson:"structureId"`
	Stage               string               `json:"stage" bson:"stage"`
	StageSequence       int                  `json:"stageSequence" bson:"stageSequence"`
	SeedAssignments     []SeedAssignment     `json:"seedAssignments" bson:"seedAssignments"`
	PositionAssignments []PositionAssignment `json:"positionAssignments" bson:"positionAssignments"`
	MatchUps            []StructureMatchUp   `json:"matchUps" bson:"matchUps"`
	FinishingPosition   string               `json:"finishingPosition" bson:"finishingPosition"`
}

// DrawInfo is one assembled draw of the tournament record
type DrawInfo struct {
	DrawID     string            `json:"drawId" bson:"drawId"`
	SheetName  string            `json:"sheetName" bson:"sheetName"`
	DrawType   SheetType         `json:"drawType" bson:"drawType"`
	DrawFormat MatchType         `json:"drawFormat" bson:"drawFormat"`
	Stage      string            `json:"stage" bson:"stage"`
	Event      string            `json:"event,omitempty" bson:"event,omitempty"`
	Gender     string            `json:"gender,omitempty" bson:"gender,omitempty"`
	Category   string            `json:"category,omitempty" bson:"category,omitempty"`
	Info       map[string]string `json:"info,omitempty" bson:"info,omitempty"`
	Entries    []Entry           `json:"entries" bson:"entries"`
	Structure  Structure         `json:"structure" bson:"structure"`
	MatchUps   []MatchUp         `json:"matchUps" bson:"matchUps"`
	Preround   []MatchUp         `json:"preround,omitempty" bson:"preround,omitempty"`
}

// Dates of a tournament or draw
type Dates struct {
	StartDate string `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty" bson:"endDate,omitempty"`
}

// TournamentRecord is the aggregate of every draw of one workbook
type TournamentRecord struct {
	TournamentID     string                     `json:"tournamentId" bson:"tournamentId"`
	TournamentName   string                     `json:"tournamentName,omitempty" bson:"tournamentName,omitempty"`
	ProviderID       string                     `json:"providerId,omitempty" bson:"providerId,omitempty"`
	Organization     string                     `json:"organization,omitempty" bson:"organization,omitempty"`
	Dates            Dates                      `json:"dates" bson:"dates"`
	City             string                     `json:"city,omitempty" bson:"city,omitempty"`
	Categories       []string                   `json:"categories,omitempty" bson:"categories,omitempty"`
	Info             map[string]string          `json:"info,omitempty" bson:"info,omitempty"`
	Draws            []DrawInfo                 `json:"draws" bson:"draws"`
	Participants     map[string]Participant     `json:"participants" bson:"participants"`
	Participantships map[string]Participantship `json:"participantships" bson:"participantships"`
}
